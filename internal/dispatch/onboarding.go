package dispatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/agentrc/internal/analyzer"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/notify"
)

const (
	// OnboardingFile is the instructions file whose creation triggers
	// config scaffolding.
	OnboardingFile = "AGENTS.md"

	// InitCommand is the shell literal that initializes a project.
	InitCommand = "/init"

	onboardingMarker = "<!-- agentrc: project configuration lives in .agentrc -->"
)

// InitResult describes the outcome of Init.
type InitResult struct {
	Created bool   `json:"created"`
	Path    string `json:"path"`
	Project string `json:"project"`
	Message string `json:"message"`
}

// Init scaffolds a default .agentrc from the project analysis unless a
// primary config already exists.
func (d *Dispatcher) Init(ctx context.Context, sessionID string) (InitResult, error) {
	if d.handle.HasPrimary() {
		return InitResult{
			Path:    d.handle.Path(),
			Project: d.handle.Config().ProjectName(),
			Message: "agentrc is already initialized for this project.",
		}, nil
	}

	root := d.handle.Root()
	name := filepath.Base(root)
	cfg := analyzer.DefaultConfig(analyzer.Analyze(root), name)

	path, err := d.handle.Create(cfg)
	if err != nil {
		return InitResult{}, fmt.Errorf("initializing project: %w", err)
	}

	d.record(sessionID, journal.KindInit, "", path)
	d.notify(ctx, "agentrc initialized", "Created configuration for "+name, notify.SeveritySuccess)
	return InitResult{
		Created: true,
		Path:    path,
		Project: name,
		Message: fmt.Sprintf("Initialized agentrc for project %q (%s).", name, path),
	}, nil
}

// onboardWrite handles a write of the onboarding file: it scaffolds the
// config when missing and tags the written content with the marker.
func (d *Dispatcher) onboardWrite(ctx context.Context, in Input, out *Output) error {
	if _, err := d.Init(ctx, in.SessionID); err != nil {
		return err
	}
	content, _ := out.Args[argContent].(string)
	if !strings.Contains(content, onboardingMarker) {
		out.Args[argContent] = strings.TrimRight(content, "\n") + "\n\n" + onboardingMarker + "\n"
	}
	return nil
}

// shellEcho returns a command that prints text verbatim.
func shellEcho(text string) string {
	return "printf '%s\\n' " + shellQuote(text)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Package dispatch intercepts host tool invocations and applies the
// effective .agentrc configuration to them.
//
// For every tool call the host sends a before and an after callback.
// Before may rewrite the pending arguments or fail the call; After
// decorates the result. Lifecycle events (session start and end, file
// changes) go through Event.
package dispatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/logging"
	"github.com/HendryAvila/agentrc/internal/notify"
)

// Host tool names.
const (
	ToolBash   = "bash"
	ToolRead   = "read"
	ToolWrite  = "write"
	ToolEdit   = "edit"
	ToolMemory = "memory"
)

// Argument keys in Output.Args.
const (
	argCommand  = "command"
	argFilePath = "filePath"
	argContent  = "content"
)

// Event types.
const (
	EventSessionStart = "session.start"
	EventSessionEnd   = "session.end"
	EventFileChanged  = "file.changed"
)

// TitlePrefix marks shell results touched by agentrc.
const TitlePrefix = "[agentrc] "

// Input identifies the tool call.
type Input struct {
	Tool      string `json:"tool"`
	SessionID string `json:"sessionID,omitempty"`
	CallID    string `json:"callID,omitempty"`
}

// Output is the host's mutable view of the call: pending arguments in
// the before phase, the result in the after phase.
type Output struct {
	Args     map[string]any `json:"args,omitempty"`
	Title    string         `json:"title,omitempty"`
	Output   string         `json:"output,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Event is a host lifecycle event.
type Event struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp any            `json:"timestamp,omitempty"`
}

// Notifier receives user-visible notifications. It must not fail.
type Notifier interface {
	Notify(ctx context.Context, title, message string, sev notify.Severity)
}

// Journal records sessions and dispatcher decisions.
type Journal interface {
	StartSession(id, project, directory string) error
	EndSession(id string) error
	Record(sessionID string, kind journal.Kind, tool, detail string) (int64, error)
}

// Dispatcher applies the configuration held by a config.Handle to host
// callbacks.
type Dispatcher struct {
	handle   *config.Handle
	notifier Notifier
	journal  Journal
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithNotifier sets where notifications go.
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithJournal enables decision journaling.
func WithJournal(j Journal) Option {
	return func(d *Dispatcher) { d.journal = j }
}

// New returns a dispatcher over h. h should already be loaded.
func New(h *config.Handle, opts ...Option) *Dispatcher {
	d := &Dispatcher{handle: h}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle returns the config handle the dispatcher reads.
func (d *Dispatcher) Handle() *config.Handle { return d.handle }

// Before runs the interception rules in precedence order; the first rule
// that applies decides the call. A returned error aborts the tool call.
func (d *Dispatcher) Before(ctx context.Context, in Input, out *Output) error {
	if out.Args == nil {
		out.Args = map[string]any{}
	}
	cfg := d.handle.Config()
	command := strings.TrimSpace(stringArg(out.Args, argCommand))
	path := stringArg(out.Args, argFilePath)

	switch {
	case in.Tool == ToolWrite && filepath.Base(path) == OnboardingFile:
		logging.Info("Dispatcher", "Onboarding write of %s", path)
		return d.onboardWrite(ctx, in, out)

	case in.Tool == ToolBash && command == InitCommand:
		res, err := d.Init(ctx, in.SessionID)
		if err != nil {
			return err
		}
		out.Args[argCommand] = shellEcho(res.Message)
		return nil

	case in.Tool == ToolMemory:
		args, err := MemoryArgsFromMap(out.Args)
		if err != nil {
			return err
		}
		text, err := d.Memory(ctx, in.SessionID, args)
		if err != nil {
			return err
		}
		out.Title = "agentrc memory"
		out.Output = text
		return nil

	case in.Tool == ToolBash && strings.HasPrefix(command, MemoryPrefix):
		args, err := ParseMemoryArgs(command)
		if err != nil {
			return err
		}
		text, err := d.Memory(ctx, in.SessionID, args)
		if err != nil {
			return err
		}
		out.Args[argCommand] = shellEcho(text)
		return nil
	}

	if cfg == nil {
		return nil
	}

	switch in.Tool {
	case ToolBash:
		if repl, ok := MapCommand(command, cfg.Commands); ok && repl != command {
			logging.Info("Dispatcher", "Rewrote %q to %q", command, repl)
			out.Args[argCommand] = repl
			d.record(in.SessionID, journal.KindRewrite, in.Tool, command+" -> "+repl)
			d.notify(ctx, "Command mapped", command+" -> "+repl, notify.SeverityInfo)
		}

	case ToolRead:
		if err := CheckRead(path, cfg); err != nil {
			logging.Warn("Dispatcher", "Blocked read of %s", path)
			d.record(in.SessionID, journal.KindDenied, in.Tool, path)
			d.notify(ctx, "Access denied", path, notify.SeverityError)
			return err
		}

	case ToolWrite, ToolEdit:
		if pattern := RestrictedWrite(path, cfg); pattern != "" {
			logging.Warn("Dispatcher", "Write to restricted path %s (%s)", path, pattern)
			d.record(in.SessionID, journal.KindRestricted, in.Tool, path)
			d.notify(ctx, "Restricted path", fmt.Sprintf("%s matches %s", path, pattern), notify.SeverityWarning)
		}
	}
	return nil
}

// After decorates a finished tool call with project information.
func (d *Dispatcher) After(_ context.Context, in Input, out *Output) {
	cfg := d.handle.Config()
	if cfg == nil {
		return
	}

	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	projectType := ""
	if cfg.Project != nil {
		projectType = cfg.Project.Type
	}
	out.Metadata["agentrc"] = map[string]any{
		"name":  cfg.ProjectName(),
		"type":  projectType,
		"rules": len(cfg.Rules),
	}

	switch in.Tool {
	case ToolRead:
		if block := conventionsBlock(cfg); block != "" {
			out.Output += block
		}
	case ToolBash:
		if !strings.HasPrefix(out.Title, TitlePrefix) {
			out.Title = TitlePrefix + out.Title
		}
	}
}

// Event handles a lifecycle event. Failures are logged and notified,
// never returned: the host does not wait on events.
func (d *Dispatcher) Event(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventSessionStart:
		id := dataString(ev.Data, "sessionID", "id")
		if id == "" {
			id = uuid.NewString()
		}
		cfg := d.handle.Config()
		if d.journal != nil {
			if err := d.journal.StartSession(id, cfg.ProjectName(), d.handle.Root()); err != nil {
				logging.Warn("Dispatcher", "journal: %v", err)
			}
		}
		d.notify(ctx, "agentrc", "Session started: "+summary(cfg), notify.SeverityInfo)

	case EventSessionEnd:
		id := dataString(ev.Data, "sessionID", "id")
		if d.journal != nil && id != "" {
			if err := d.journal.EndSession(id); err != nil {
				logging.Warn("Dispatcher", "journal: %v", err)
			}
		}

	case EventFileChanged:
		file := dataString(ev.Data, "file", "path")
		if filepath.Base(file) != config.FileName {
			return
		}
		if err := d.handle.Reload(); err != nil {
			logging.Error("Dispatcher", err, "Reloading after change to %s", file)
			d.notify(ctx, "agentrc", "Config reload failed: "+err.Error(), notify.SeverityError)
			return
		}
		d.record(dataString(ev.Data, "sessionID"), journal.KindReload, "", file)
		d.notify(ctx, "agentrc", "Configuration reloaded: "+summary(d.handle.Config()), notify.SeveritySuccess)

	default:
		logging.Debug("Dispatcher", "Ignoring event %q", ev.Type)
	}
}

func (d *Dispatcher) notify(ctx context.Context, title, message string, sev notify.Severity) {
	if d.notifier != nil {
		d.notifier.Notify(ctx, title, message, sev)
	}
}

func (d *Dispatcher) record(sessionID string, kind journal.Kind, tool, detail string) {
	if d.journal == nil {
		return
	}
	if sessionID == "" {
		sessionID = "unknown"
	}
	if _, err := d.journal.Record(sessionID, kind, tool, detail); err != nil {
		logging.Debug("Dispatcher", "journal record failed: %v", err)
	}
}

// conventionsBlock renders the comment appended to read results.
func conventionsBlock(cfg *config.Config) string {
	var lines []string
	if v, ok := cfg.Conventions["fileNaming"].(string); ok && v != "" {
		lines = append(lines, "// File naming: "+v)
	}
	if v, ok := cfg.Tools["packageManager"].(string); ok && v != "" {
		lines = append(lines, "// Package manager: "+v)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n// agentrc project conventions\n" + strings.Join(lines, "\n") + "\n"
}

// summary is the one-line description used in notifications.
func summary(cfg *config.Config) string {
	if cfg == nil {
		return "no configuration"
	}
	name := cfg.ProjectName()
	if name == "" {
		name = "unnamed project"
	}
	return fmt.Sprintf("%s (%d rules, %d commands)", name, len(cfg.Rules), len(cfg.Commands))
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func dataString(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

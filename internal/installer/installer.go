// Package installer copies the agentrc binary into the host tool's plugin
// directories and optionally scaffolds a starter .agentrc.
package installer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chzyer/readline"

	"github.com/HendryAvila/agentrc/internal/analyzer"
	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/logging"
)

// Scope selects where the plugin is installed.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
	ScopeBoth    Scope = "both"
)

// ErrInvalidScope is returned for a scope argument other than global,
// project or both.
var ErrInvalidScope = errors.New("invalid install scope")

// ErrCancelled is returned when the user cancels the interactive prompt.
var ErrCancelled = errors.New("installation cancelled")

// ParseScope validates a scope argument.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeProject:
		return ScopeProject, nil
	case ScopeBoth:
		return ScopeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q (want global, project or both)", ErrInvalidScope, s)
	}
}

// Options configures Install.
type Options struct {
	Scope Scope
	Root  string // project root
	Home  string // home directory; "" uses os.UserHomeDir

	// Source is the binary to install; "" uses os.Executable.
	Source string

	// Scaffold writes a default .agentrc to Root when none exists and the
	// scope includes the project.
	Scaffold bool
}

// Result lists what Install did.
type Result struct {
	Installed []string
	Config    string // scaffolded config path, "" if none
}

// binaryName is the installed file name.
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "agentrc.exe"
	}
	return "agentrc"
}

// Destinations returns the plugin directories for scope.
func Destinations(scope Scope, root, home string) []string {
	global := filepath.Join(home, ".config", config.HostName, "plugin")
	project := filepath.Join(root, "."+config.HostName, "plugin")
	switch scope {
	case ScopeGlobal:
		return []string{global}
	case ScopeProject:
		return []string{project}
	case ScopeBoth:
		return []string{global, project}
	default:
		return nil
	}
}

// Install copies the binary to every destination for o.Scope.
func Install(o Options) (*Result, error) {
	if _, err := ParseScope(string(o.Scope)); err != nil {
		return nil, err
	}
	if o.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		o.Home = home
	}
	if o.Source == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("finding current executable: %w", err)
		}
		if exe, err = filepath.EvalSymlinks(exe); err != nil {
			return nil, fmt.Errorf("resolving symlinks: %w", err)
		}
		o.Source = exe
	}

	res := &Result{}
	for _, dir := range Destinations(o.Scope, o.Root, o.Home) {
		dst := filepath.Join(dir, binaryName())
		if err := copyAtomic(o.Source, dst); err != nil {
			return res, err
		}
		logging.Info("Installer", "Installed %s", dst)
		res.Installed = append(res.Installed, dst)
	}

	if o.Scaffold && o.Scope != ScopeGlobal {
		path, err := scaffold(o.Root)
		if err != nil {
			return res, err
		}
		res.Config = path
	}
	return res, nil
}

// copyAtomic writes src to dst through a temporary file and a rename so
// a running copy of dst is never seen half-written.
func copyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	tmpPath := dst + ".new"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing new binary: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := dst + ".old"
		_ = os.Remove(oldPath)
		if _, err := os.Stat(dst); err == nil {
			if err := os.Rename(dst, oldPath); err != nil {
				_ = os.Remove(tmpPath)
				return fmt.Errorf("backing up current binary: %w", err)
			}
		}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// scaffold writes a default config unless one exists. It returns the
// path written, or "" when nothing was written.
func scaffold(root string) (string, error) {
	path := config.ProjectPath(root)
	if _, err := os.Stat(path); err == nil {
		logging.Info("Installer", "%s already exists, leaving it alone", path)
		return "", nil
	}
	cfg := analyzer.DefaultConfig(analyzer.Analyze(root), filepath.Base(root))
	if err := config.WriteFile(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// LineReader reads one line of user input.
type LineReader interface {
	Readline() (string, error)
}

// NewPrompt returns a readline-backed LineReader on the terminal.
func NewPrompt() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "Install scope [global/project/both] (empty to cancel): ",
		InterruptPrompt: "^C",
	})
}

// PromptScope asks for a scope until a valid one is entered. An empty
// line, Ctrl-C or EOF cancels with ErrCancelled.
func PromptScope(r LineReader, out io.Writer) (Scope, error) {
	for {
		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", ErrCancelled
		}
		scope, err := ParseScope(line)
		if err == nil {
			return scope, nil
		}
		_, _ = fmt.Fprintf(out, "%v\n", err)
	}
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/HendryAvila/agentrc/internal/logging"
)

const appName = "agentrc"

// Runner runs external programs. It exists so tests can fake them.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	LookPath(name string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}

func (execRunner) LookPath(name string) (string, error) { return exec.LookPath(name) }

// libnotifyPackages maps a system package manager to the package that
// provides notify-send, in detection order.
var libnotifyPackages = []struct {
	manager string
	args    []string
}{
	{"apt-get", []string{"install", "-y", "libnotify-bin"}},
	{"dnf", []string{"install", "-y", "libnotify"}},
	{"yum", []string{"install", "-y", "libnotify"}},
	{"pacman", []string{"-S", "--noconfirm", "libnotify"}},
	{"zypper", []string{"--non-interactive", "install", "libnotify-tools"}},
	{"apk", []string{"add", "libnotify"}},
}

// OSSender shows notifications with the platform's own tooling:
// osascript on macOS, notify-send on Linux, PowerShell on Windows.
type OSSender struct {
	goos   string
	runner Runner

	installTried atomic.Bool // libnotify install is attempted once per sender
}

// NewOSSender returns a sender for the running platform.
func NewOSSender() *OSSender {
	return &OSSender{goos: runtime.GOOS, runner: execRunner{}}
}

// newOSSenderFor is used by tests to pick the platform and runner.
func newOSSenderFor(goos string, r Runner) *OSSender {
	return &OSSender{goos: goos, runner: r}
}

// Send implements Sender.
func (s *OSSender) Send(ctx context.Context, title, message string, sev Severity) error {
	var err error
	switch s.goos {
	case "darwin":
		err = s.sendDarwin(ctx, title, message)
	case "linux", "freebsd", "openbsd", "netbsd":
		err = s.sendLinux(ctx, title, message, sev)
	case "windows":
		err = s.sendWindows(ctx, title, message, sev)
	default:
		err = errors.New("unsupported platform")
	}
	if err != nil {
		return &NotifyError{Platform: s.goos, Err: err}
	}
	return nil
}

func (s *OSSender) sendDarwin(ctx context.Context, title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleQuote(message), appleQuote(title))
	if !isSilent(ctx) {
		script += ` sound name "default"`
	}
	return s.runner.Run(ctx, "osascript", "-e", script)
}

// sendLinux walks the fallback chain: full notify-send call, reduced
// call, then install libnotify and retry once. Each step's failure only
// moves on to the next.
func (s *OSSender) sendLinux(ctx context.Context, title, message string, sev Severity) error {
	full := []string{"-a", appName, "-u", urgency(sev), title, message}
	if isSilent(ctx) {
		full = append([]string{"-h", "boolean:suppress-sound:true"}, full...)
	}
	err := s.runner.Run(ctx, "notify-send", full...)
	if err == nil {
		return nil
	}
	logging.Debug("Notifier", "notify-send failed: %v", err)

	if err = s.runner.Run(ctx, "notify-send", title, message); err == nil {
		return nil
	}
	logging.Debug("Notifier", "reduced notify-send failed: %v", err)

	if !s.installTried.CompareAndSwap(false, true) {
		return err
	}
	if ierr := s.installLibnotify(ctx); ierr != nil {
		logging.Debug("Notifier", "installing libnotify: %v", ierr)
		return err
	}
	return s.runner.Run(ctx, "notify-send", title, message)
}

func (s *OSSender) installLibnotify(ctx context.Context) error {
	for _, p := range libnotifyPackages {
		if _, err := s.runner.LookPath(p.manager); err != nil {
			continue
		}
		args := append([]string{"-n", p.manager}, p.args...)
		return s.runner.Run(ctx, "sudo", args...)
	}
	return errors.New("no supported package manager found")
}

func (s *OSSender) sendWindows(ctx context.Context, title, message string, sev Severity) error {
	icon, tip := "Information", "Info"
	switch sev {
	case SeverityWarning:
		icon, tip = "Warning", "Warning"
	case SeverityError:
		icon, tip = "Error", "Error"
	}
	script := fmt.Sprintf(
		"Add-Type -AssemblyName System.Windows.Forms; "+
			"$n = New-Object System.Windows.Forms.NotifyIcon; "+
			"$n.Icon = [System.Drawing.SystemIcons]::%s; $n.Visible = $true; "+
			"$n.ShowBalloonTip(5000, %s, %s, '%s'); Start-Sleep -Seconds 5; $n.Dispose()",
		icon, psQuote(title), psQuote(message), tip,
	)
	return s.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}

func urgency(sev Severity) string {
	switch sev {
	case SeverityError:
		return "critical"
	case SeverityWarning:
		return "normal"
	default:
		return "low"
	}
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

package notify

import (
	"context"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/logging"
)

// SettingsFunc returns the notifications settings in effect right now.
// It is called on every Notify so that a config reload takes effect
// without rebuilding the logger. A nil result means defaults.
type SettingsFunc func() *config.Notifications

// SmartLogger gates notifications by level and routes them to the OS
// sender, the console log, or both.
type SmartLogger struct {
	sender   Sender
	settings SettingsFunc
}

// NewSmartLogger wraps sender. settings may be nil.
func NewSmartLogger(sender Sender, settings SettingsFunc) *SmartLogger {
	if settings == nil {
		settings = func() *config.Notifications { return nil }
	}
	return &SmartLogger{sender: sender, settings: settings}
}

// Notify delivers a notification according to the current settings. It
// never fails: OS delivery errors are logged and, if the console was not
// already a target, the notification is written to the log instead.
func (l *SmartLogger) Notify(ctx context.Context, title, message string, sev Severity) {
	n := l.settings()
	if !n.IsEnabled() {
		return
	}

	level, mode := config.LevelImportant, config.ModeBoth
	silent := false
	if n != nil {
		if n.Level != "" {
			level = n.Level
		}
		if n.Mode != "" {
			mode = n.Mode
		}
		silent = n.Silent
	}

	if !Allows(level, sev) || mode == config.ModeNone {
		return
	}

	toConsole := mode == config.ModeConsole || mode == config.ModeBoth
	toOS := mode == config.ModeOS || mode == config.ModeBoth

	if toConsole {
		echo(title, message, sev)
	}
	if !toOS || l.sender == nil {
		return
	}
	if err := l.sender.Send(WithSilent(ctx, silent), title, message, sev); err != nil {
		logging.Debug("Notifier", "OS notification failed: %v", err)
		if !toConsole {
			echo(title, message, sev)
		}
	}
}

// Allows reports whether a notification of severity sev passes level.
func Allows(level config.NotifyLevel, sev Severity) bool {
	switch level {
	case config.LevelAll:
		return true
	case config.LevelImportant:
		return sev >= SeveritySuccess
	case config.LevelErrorsOnly:
		return sev == SeverityError
	default:
		return false
	}
}

func echo(title, message string, sev Severity) {
	switch sev {
	case SeverityError:
		logging.Error("Notifier", nil, "%s: %s", title, message)
	case SeverityWarning:
		logging.Warn("Notifier", "%s: %s", title, message)
	default:
		logging.Info("Notifier", "%s: %s", title, message)
	}
}

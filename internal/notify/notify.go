// Package notify sends best-effort desktop notifications.
//
// OSSender talks to the platform's notification tool and reports failures
// as *NotifyError. SmartLogger sits in front of it, applies the
// notifications settings from .agentrc and never returns an error: a
// failed OS notification degrades to a log line.
package notify

import (
	"context"
	"fmt"
)

// Severity ranks a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String makes Severity satisfy fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, title, message string, sev Severity) error
}

// NotifyError describes why a platform notification could not be shown.
type NotifyError struct {
	Platform string
	Err      error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify (%s): %v", e.Platform, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

type silentKey struct{}

// WithSilent marks ctx so that senders suppress sounds.
func WithSilent(ctx context.Context, silent bool) context.Context {
	return context.WithValue(ctx, silentKey{}, silent)
}

func isSilent(ctx context.Context) bool {
	v, _ := ctx.Value(silentKey{}).(bool)
	return v
}

package dispatch

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/agentrc/internal/config"
)

// Sentinel errors returned by the dispatcher. Hook callers receive them
// wrapped with context; check with errors.Is.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoConfig        = config.ErrNoConfig
	ErrNoRules         = errors.New("no rules configured")
	ErrIndexOutOfRange = config.ErrIndexOutOfRange
	ErrSecurityDenied  = errors.New("access denied by security policy")
)

// Code returns the stable error code written to the hook protocol.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArgument):
		return "MissingArgument"
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgument"
	case errors.Is(err, ErrNoConfig):
		return "NoConfig"
	case errors.Is(err, ErrNoRules):
		return "NoRules"
	case errors.Is(err, ErrIndexOutOfRange):
		return "IndexOutOfRange"
	case errors.Is(err, ErrSecurityDenied):
		return "SecurityDenied"
	case errors.Is(err, config.ErrInvalidConfig):
		return "InvalidConfig"
	default:
		return "Internal"
	}
}

// BlockedError marks a before-hook failure that must abort the tool call.
type BlockedError struct {
	Err error
}

func (e *BlockedError) Error() string { return fmt.Sprintf("blocked: %v", e.Err) }

func (e *BlockedError) Unwrap() error { return e.Err }

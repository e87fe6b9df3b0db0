package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Hook phases accepted by ServeHook.
const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
	PhaseEvent  = "event"
)

// ToolPayload is the before/after wire payload.
type ToolPayload struct {
	Input  Input  `json:"input"`
	Output Output `json:"output"`
}

type outputReply struct {
	Output Output `json:"output"`
}

type errorReply struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ServeHook decodes one host callback from r, runs it through d and
// writes the reply to w.
//
// before and after reply {"output": ...}. A before failure replies
// {"error", "code"} and is returned as *BlockedError. event writes
// nothing.
func ServeHook(ctx context.Context, d *Dispatcher, phase string, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	switch phase {
	case PhaseBefore, PhaseAfter:
		var p ToolPayload
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decoding %s payload: %w", phase, err)
		}
		if phase == PhaseAfter {
			d.After(ctx, p.Input, &p.Output)
			return enc.Encode(outputReply{Output: p.Output})
		}
		if err := d.Before(ctx, p.Input, &p.Output); err != nil {
			if werr := enc.Encode(errorReply{Error: err.Error(), Code: Code(err)}); werr != nil {
				return werr
			}
			return &BlockedError{Err: err}
		}
		return enc.Encode(outputReply{Output: p.Output})

	case PhaseEvent:
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			return fmt.Errorf("decoding event payload: %w", err)
		}
		d.Event(ctx, ev)
		return nil

	default:
		return fmt.Errorf("%w: unknown hook phase %q", ErrInvalidArgument, phase)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentrc/internal/dispatch"
	"github.com/HendryAvila/agentrc/internal/logging"
	"github.com/HendryAvila/agentrc/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Run agentrc as an MCP server over stdio. The configuration is loaded
once and reloaded whenever the project's .agentrc changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if !noWatch {
				if err := server.Watch(ctx, rt.Dispatcher, server.DefaultDebounce); err != nil {
					logging.Warn("Serve", "config watch disabled: %v", err)
				}
			}

			session := map[string]any{"sessionID": uuid.NewString()}
			rt.Dispatcher.Event(ctx, dispatch.Event{Type: dispatch.EventSessionStart, Data: session})
			defer rt.Dispatcher.Event(context.Background(), dispatch.Event{Type: dispatch.EventSessionEnd, Data: session})

			s := server.New(rt)
			if err := mcpserver.ServeStdio(s); err != nil && ctx.Err() == nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when .agentrc changes")
	return cmd
}

// commandContext returns cmd's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

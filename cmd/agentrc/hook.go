package main

import (
	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentrc/internal/dispatch"
)

func newHookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hook before|after|event",
		Short: "Handle one host callback (JSON on stdin, reply on stdout)",
		Long: `Handle one callback from the host assistant.

before and after read {"input": {...}, "output": {...}} and write the
possibly modified {"output": {...}}. When before refuses the call it
writes {"error": "...", "code": "..."} and exits with status 2.

event reads {"type": "...", "data": {...}, "timestamp": ...} and writes
nothing.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{dispatch.PhaseBefore, dispatch.PhaseAfter, dispatch.PhaseEvent},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			return dispatch.ServeHook(commandContext(cmd), rt.Dispatcher, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

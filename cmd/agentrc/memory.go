package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentrc/internal/dispatch"
)

// cliSession tags journal entries made from the command line.
const cliSession = "cli"

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default .agentrc for the project",
		Long: `Analyze the project (manifest, lockfiles, marker files) and write a
default .agentrc to the project root. Does nothing if one exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := rt.Dispatcher.Init(commandContext(cmd), cliSession)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "List, add or remove project rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the project's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			cfg := rt.Handle.Config()
			out := cmd.OutOrStdout()
			if cfg == nil || len(cfg.Rules) == 0 {
				fmt.Fprintln(out, text.FgYellow.Sprint("No rules configured"))
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{text.FgHiCyan.Sprint("ID"), text.FgHiCyan.Sprint("RULE")})
			for i, r := range cfg.Rules {
				t.AppendRow(table.Row{i, r})
			}
			t.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <rule>",
		Short: "Append a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.memory(cmd, dispatch.MemoryArgs{Action: dispatch.ActionAdd, Rule: args[0]})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove the rule at a zero-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: rule id %q is not an integer", dispatch.ErrInvalidArgument, args[0])
			}
			return a.memory(cmd, dispatch.MemoryArgs{Action: dispatch.ActionRemove, RuleID: &id})
		},
	})

	return cmd
}

func (a *app) memory(cmd *cobra.Command, args dispatch.MemoryArgs) error {
	rt, cleanup, err := a.runtime()
	if err != nil {
		return err
	}
	defer cleanup()

	msg, err := rt.Dispatcher.Memory(commandContext(cmd), cliSession, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

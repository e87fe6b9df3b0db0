package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		limit   int
		session string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent agentrc decisions",
		Long: `Show the newest journal entries: command rewrites, rule changes,
blocked reads, restricted-path warnings and initializations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(output)
			if err != nil {
				return err
			}
			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.Journal == nil {
				return errors.New("journal is not available")
			}

			entries, err := rt.Journal.Recent(session, limit)
			if err != nil {
				return fmt.Errorf("reading journal: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" || format == "yaml" {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, text.FgYellow.Sprint("No journal entries"))
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{
				text.FgHiCyan.Sprint("TIME"),
				text.FgHiCyan.Sprint("SESSION"),
				text.FgHiCyan.Sprint("KIND"),
				text.FgHiCyan.Sprint("TOOL"),
				text.FgHiCyan.Sprint("DETAIL"),
			})
			for _, e := range entries {
				t.AppendRow(table.Row{e.CreatedAt, e.SessionID, string(e.Kind), e.Tool, e.Detail})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")
	cmd.Flags().StringVar(&session, "session", "", "only show entries from this session")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

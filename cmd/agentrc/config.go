package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/agentrc/internal/analyzer"
	"github.com/HendryAvila/agentrc/internal/server"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(output)
			if err != nil {
				return err
			}
			if format == "table" {
				format = "json"
			}

			rt, cleanup, err := a.runtime()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			cfg := rt.Handle.Config()
			if cfg == nil {
				fmt.Fprintln(out, text.FgYellow.Sprint("No configuration found. Run 'agentrc init' to create one."))
				return nil
			}
			body, err := server.Render(cfg, format)
			if err != nil {
				return err
			}
			source := rt.Handle.Source()
			if source == "" {
				source = "(legacy files only)"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", source)
			fmt.Fprintln(out, body)
			return nil
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.AddCommand(show)
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect the project's language, package manager and frameworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(output)
			if err != nil {
				return err
			}
			res := analyzer.Analyze(a.root)
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(res)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			default:
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleRounded)
				t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
				t.AppendRows([]table.Row{
					{"type", res.Type},
					{"language", res.Language},
					{"packageManager", res.PackageManager},
					{"framework", res.Framework},
					{"testFramework", res.TestFramework},
					{"buildTool", res.BuildTool},
					{"typescript", res.TypeScript},
				})
				t.Render()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

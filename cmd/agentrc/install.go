package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentrc/internal/installer"
	"github.com/HendryAvila/agentrc/internal/server"
)

func newInstallCmd(a *app) *cobra.Command {
	var scaffold bool
	cmd := &cobra.Command{
		Use:   "install [global|project|both]",
		Short: "Install agentrc into the host's plugin directories",
		Long: `Copy this binary into the host's global plugin directory, the
project's plugin directory, or both. Without an argument the scope is
asked for interactively; an empty answer cancels.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var scope installer.Scope
			if len(args) == 1 {
				s, err := installer.ParseScope(args[0])
				if err != nil {
					return err
				}
				scope = s
			} else {
				rl, err := installer.NewPrompt()
				if err != nil {
					return fmt.Errorf("starting prompt: %w", err)
				}
				defer func() { _ = rl.Close() }()

				scope, err = installer.PromptScope(rl, out)
				if errors.Is(err, installer.ErrCancelled) {
					fmt.Fprintln(out, "Installation cancelled.")
					return nil
				}
				if err != nil {
					return err
				}
			}

			res, err := installer.Install(installer.Options{
				Scope:    scope,
				Root:     a.root,
				Scaffold: scaffold,
			})
			if err != nil {
				return err
			}
			for _, p := range res.Installed {
				fmt.Fprintf(out, "Installed %s\n", p)
			}
			if res.Config != "" {
				fmt.Fprintf(out, "Created %s\n", res.Config)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&scaffold, "scaffold", true, "create a starter .agentrc when the project has none")
	return cmd
}

// newVersionCmd creates the command that prints the version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of agentrc",
		Long:  `All software has versions. This is agentrc's.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agentrc version %s\n", server.Version)
		},
	}
}

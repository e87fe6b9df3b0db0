package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentrc/internal/dispatch"
	"github.com/HendryAvila/agentrc/internal/installer"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/logging"
	"github.com/HendryAvila/agentrc/internal/notify"
	"github.com/HendryAvila/agentrc/internal/server"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeBlocked indicates a hook refused the tool call.
	ExitCodeBlocked = 2
)

// logLevelEnv overrides the default log level.
const logLevelEnv = "AGENTRC_LOG_LEVEL"

// app carries the global flags and the pieces tests replace.
type app struct {
	root     string
	logLevel string
	dataDir  string

	sender notify.Sender // nil uses the OS sender
}

// newRootCmd builds the command tree.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "agentrc",
		Short: "Project configuration for AI coding assistants",
		Long: `agentrc applies a project's .agentrc to an AI coding assistant:
it maps generic commands to the project's own, manages the project's
rules, protects sensitive files and sends desktop notifications.`,
		Version:      server.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := a.logLevel
			if level == "" {
				level = os.Getenv(logLevelEnv)
			}
			logging.Init(logging.ParseLevel(level), cmd.ErrOrStderr())
			if a.root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("finding working directory: %w", err)
				}
				a.root = wd
			}
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "agentrc version %s\n" .Version}}`)

	root.PersistentFlags().StringVar(&a.root, "root", "", "project root (default: current directory)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+logLevelEnv+")")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "journal directory (default: ~/.config/agentrc)")

	root.AddCommand(
		newServeCmd(a),
		newHookCmd(a),
		newInitCmd(a),
		newMemoryCmd(a),
		newConfigCmd(a),
		newAnalyzeCmd(a),
		newJournalCmd(a),
		newInstallCmd(a),
		newVersionCmd(),
	)
	return root
}

// runtime builds the shared components for one command invocation.
func (a *app) runtime() (*server.Runtime, func(), error) {
	opts := server.Options{Root: a.root, Sender: a.sender}
	if a.dataDir != "" {
		opts.Journal = journal.Config{DataDir: a.dataDir, MaxEntries: journal.DefaultConfig().MaxEntries}
	}
	return server.NewRuntime(opts)
}

// getExitCode determines the exit code for an error returned by a command.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var blocked *dispatch.BlockedError
	if errors.As(err, &blocked) {
		return ExitCodeBlocked
	}
	if errors.Is(err, installer.ErrCancelled) {
		return ExitCodeSuccess
	}
	return ExitCodeError
}

// outputFormat validates an --output flag value.
func outputFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case "json", "yaml", "table":
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

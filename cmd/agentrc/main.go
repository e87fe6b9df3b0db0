// agentrc: project configuration for AI coding assistants.
//
// agentrc loads a project's .agentrc (falling back to a user-global one
// and to rules found in AGENTS.md, CLAUDE.md and similar files) and
// applies it to the host assistant's tool calls: mapped commands, rule
// management, sensitive-file protection and notifications.
//
// Usage:
//
//	agentrc serve                 # MCP server (stdio transport)
//	agentrc hook before|after     # host tool-call hook, JSON on stdin/stdout
//	agentrc hook event            # host lifecycle event
//	agentrc init                  # scaffold a default .agentrc
//	agentrc memory list|add|remove
//	agentrc config show
//	agentrc install [global|project|both]
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

package dispatch

import (
	"strings"

	"github.com/HendryAvila/agentrc/internal/config"
)

// literalCommands maps host command literals to config command keys.
var literalCommands = []struct {
	literal string
	key     string
}{
	{"npm test", config.CommandTest},
	{"npm run build", config.CommandBuild},
	{"npm run dev", config.CommandDev},
}

// MapCommand returns the configured replacement for cmd. It recognizes
// the exact literals "npm test", "npm run build" and "npm run dev", and
// any command containing "lint". ok is false when cmd is not recognized
// or no replacement is configured, in which case cmd is returned as is.
func MapCommand(cmd string, commands map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(cmd)
	key := ""
	for _, lc := range literalCommands {
		if trimmed == lc.literal {
			key = lc.key
			break
		}
	}
	if key == "" && strings.Contains(trimmed, "lint") {
		key = config.CommandLint
	}
	if key == "" {
		return cmd, false
	}
	repl, ok := commands[key]
	if !ok || repl == "" {
		return cmd, false
	}
	return repl, true
}

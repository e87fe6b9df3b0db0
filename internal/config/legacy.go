package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HendryAvila/agentrc/internal/logging"
)

// LegacyFiles are the instruction files scanned by ExtractLegacy, in order.
var LegacyFiles = []string{
	"AGENTS.md",
	"CLAUDE.md",
	".cursorrules",
	filepath.Join(".github", "copilot-instructions.md"),
}

// FragmentKind tags what ClassifyLine found on a line.
type FragmentKind int

const (
	FragmentRule FragmentKind = iota
	FragmentCommand
)

// Fragment is one piece of configuration recovered from a legacy line.
// Category is set for commands only (test, build or lint).
type Fragment struct {
	Kind     FragmentKind
	Category string
	Text     string
}

var backtickSpan = regexp.MustCompile("`([^`]+)`")

// commandCategories is checked in order; the first substring hit decides.
var commandCategories = []string{CommandTest, CommandBuild, CommandLint}

// ClassifyLine inspects one markdown line. A "- " bullet containing a
// colon is a rule. The first backtick span is a command when it mentions
// test, build or lint. A bullet can yield both. An ignored line yields nil.
func ClassifyLine(line string) []Fragment {
	trimmed := strings.TrimSpace(line)
	var out []Fragment

	if strings.HasPrefix(trimmed, "- ") && strings.Contains(trimmed, ":") {
		out = append(out, Fragment{Kind: FragmentRule, Text: strings.TrimPrefix(trimmed, "- ")})
	}

	if m := backtickSpan.FindStringSubmatch(trimmed); m != nil {
		cmd := m[1]
		lower := strings.ToLower(cmd)
		for _, cat := range commandCategories {
			if strings.Contains(lower, cat) {
				out = append(out, Fragment{Kind: FragmentCommand, Category: cat, Text: cmd})
				break
			}
		}
	}
	return out
}

// ExtractLegacy scans LegacyFiles under root. Only markdown files are
// classified; the first command found per category wins. It returns nil
// when no rule and no command was found.
func ExtractLegacy(root string) *Config {
	var rules []string
	commands := map[string]string{}

	for _, name := range LegacyFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			logging.Debug("Legacy", "Found %s, not a markdown file; skipping", name)
			continue
		}

		before := len(rules) + len(commands)
		for _, line := range strings.Split(string(data), "\n") {
			for _, f := range ClassifyLine(line) {
				switch f.Kind {
				case FragmentRule:
					rules = append(rules, f.Text)
				case FragmentCommand:
					if _, taken := commands[f.Category]; !taken {
						commands[f.Category] = f.Text
					}
				}
			}
		}
		logging.Debug("Legacy", "Extracted %d fragment(s) from %s", len(rules)+len(commands)-before, name)
	}

	if len(rules) == 0 && len(commands) == 0 {
		return nil
	}

	cfg := &Config{Rules: rules}
	if len(commands) > 0 {
		cfg.Commands = commands
	}
	return cfg
}

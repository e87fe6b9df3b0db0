package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/notify"
)

const memoryHelp = `agentrc memory commands:
  memory action=list                 show rules, commands and project
  memory action=add rule="<text>"    append a rule
  memory action=remove ruleId=<n>    remove the rule at index n`

// Memory runs one memory action against the current configuration and
// returns the text shown to the user.
func (d *Dispatcher) Memory(ctx context.Context, sessionID string, args MemoryArgs) (string, error) {
	switch args.Action {
	case ActionList:
		return Snapshot(d.handle.Config()), nil

	case ActionAdd:
		if args.Rule == "" {
			return "", fmt.Errorf("%w: rule", ErrMissingArgument)
		}
		err := d.handle.Update(func(c *config.Config) error {
			c.Rules = append(c.Rules, args.Rule)
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("adding rule: %w", err)
		}
		d.record(sessionID, journal.KindMemory, "memory", "add: "+args.Rule)
		d.notify(ctx, "Rule added", args.Rule, notify.SeveritySuccess)
		return fmt.Sprintf("Added rule: %s", args.Rule), nil

	case ActionRemove:
		if args.RuleID == nil {
			return "", fmt.Errorf("%w: ruleId", ErrMissingArgument)
		}
		if cfg := d.handle.Config(); cfg == nil || cfg.Rules == nil {
			return "", ErrNoRules
		}
		idx := *args.RuleID
		removed, err := d.handle.RemoveRule(idx)
		if err != nil {
			return "", fmt.Errorf("removing rule: %w", err)
		}
		d.record(sessionID, journal.KindMemory, "memory", "remove: "+removed)
		d.notify(ctx, "Rule removed", removed, notify.SeveritySuccess)
		return fmt.Sprintf("Removed rule %d: %s", idx, removed), nil

	default:
		return memoryHelp, nil
	}
}

// Snapshot renders rules, commands and project of cfg. A nil cfg renders
// empty sections.
func Snapshot(cfg *config.Config) string {
	l := list.NewWriter()
	l.SetStyle(list.StyleDefault)

	l.AppendItem("Project: " + orNone(cfg.ProjectName()))

	l.AppendItem("Rules:")
	l.Indent()
	if cfg == nil || len(cfg.Rules) == 0 {
		l.AppendItem("(none)")
	} else {
		for i, r := range cfg.Rules {
			l.AppendItem(fmt.Sprintf("[%d] %s", i, r))
		}
	}
	l.UnIndent()

	l.AppendItem("Commands:")
	l.Indent()
	keys := commandKeys(cfg)
	if len(keys) == 0 {
		l.AppendItem("(none)")
	}
	for _, k := range keys {
		l.AppendItem(fmt.Sprintf("%s: %s", k, cfg.Commands[k]))
	}
	l.UnIndent()

	return l.Render()
}

// commandKeys lists recognized keys first in display order, then the rest
// sorted.
func commandKeys(cfg *config.Config) []string {
	if cfg == nil || len(cfg.Commands) == 0 {
		return nil
	}
	var keys, extra []string
	for _, k := range config.RecognizedCommands {
		if _, ok := cfg.Commands[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range cfg.Commands {
		if !slices.Contains(config.RecognizedCommands, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unnamed)"
	}
	return s
}

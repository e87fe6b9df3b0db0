// Package server wires the agentrc components together and creates the
// MCP server instance.
//
// NewRuntime is the composition root shared by every host-facing entry
// point (MCP server, hook protocol, CLI): it loads the configuration,
// opens the journal and builds the notifier and dispatcher. No business
// logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/dispatch"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/logging"
	"github.com/HendryAvila/agentrc/internal/notify"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options configures NewRuntime.
type Options struct {
	// Root is the project root.
	Root string

	// HandleOptions override config locations (tests use these).
	HandleOptions []config.Option

	// Journal configures the session journal. A zero DataDir uses
	// journal.DefaultConfig.
	Journal journal.Config

	// NoJournal disables the journal entirely.
	NoJournal bool

	// Sender delivers OS notifications. Nil uses notify.NewOSSender.
	Sender notify.Sender
}

// Runtime holds the long-lived components of one agentrc process.
type Runtime struct {
	Handle     *config.Handle
	Dispatcher *dispatch.Dispatcher
	Journal    *journal.Journal // nil when disabled or unavailable
	Notifier   *notify.SmartLogger
}

// NewRuntime loads the configuration and builds the dispatcher.
//
// An invalid primary config is a hard error. The journal is optional: if
// it cannot be opened the runtime works without it. The returned cleanup
// function is always non-nil and closes the journal.
func NewRuntime(o Options) (*Runtime, func(), error) {
	h := config.NewHandle(o.Root, o.HandleOptions...)
	if err := h.Load(); err != nil {
		return nil, noop, fmt.Errorf("loading configuration: %w", err)
	}

	sender := o.Sender
	if sender == nil {
		sender = notify.NewOSSender()
	}
	notifier := notify.NewSmartLogger(sender, func() *config.Notifications {
		return h.Config().NotificationSettings()
	})

	rt := &Runtime{Handle: h, Notifier: notifier}
	opts := []dispatch.Option{dispatch.WithNotifier(notifier)}

	cleanup := noop
	if !o.NoJournal {
		jcfg := o.Journal
		if jcfg.DataDir == "" {
			jcfg = journal.DefaultConfig()
		}
		j, err := journal.New(jcfg)
		if err != nil {
			logging.Warn("Server", "journal disabled: %v", err)
		} else {
			rt.Journal = j
			opts = append(opts, dispatch.WithJournal(j))
			cleanup = func() {
				if err := j.Close(); err != nil {
					logging.Warn("Server", "journal close: %v", err)
				}
			}
		}
	}

	rt.Dispatcher = dispatch.New(h, opts...)
	return rt, cleanup, nil
}

// New creates the MCP server with every tool and resource registered.
func New(rt *Runtime) *server.MCPServer {
	s := server.NewMCPServer(
		"agentrc",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	memoryTool := NewMemoryTool(rt.Dispatcher)
	s.AddTool(memoryTool.Definition(), memoryTool.Handle)

	initTool := NewInitTool(rt.Dispatcher)
	s.AddTool(initTool.Definition(), initTool.Handle)

	configTool := NewConfigTool(rt.Handle)
	s.AddTool(configTool.Definition(), configTool.Handle)

	analyzeTool := NewAnalyzeTool(rt.Handle.Root())
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	// The journal is independent: without it every other tool still works.
	if rt.Journal != nil {
		journalTool := NewJournalTool(rt.Journal)
		s.AddTool(journalTool.Definition(), journalTool.Handle)
	}

	resourceHandler := NewResourceHandler(rt.Handle)
	s.AddResource(resourceHandler.ConfigResource(), resourceHandler.HandleConfig)

	conventions := NewConventionsPrompt(rt.Handle)
	s.AddPrompt(conventions.Definition(), conventions.Handle)

	return s
}

// noop is the default cleanup when there is nothing to release.
func noop() {}

// serverInstructions tells the AI how to use agentrc.
func serverInstructions() string {
	return `You have access to agentrc, which manages the project's .agentrc configuration.

## What .agentrc holds
- project: name, type, language, framework
- commands: the project's build, test, dev, lint, typecheck and start commands
- rules: ordered free-text guidance you MUST follow while working in this project
- security: files you must not read (sensitiveFiles) and paths to avoid modifying (restrictedPaths)

## Tools
- agentrc_config: read the effective configuration. Call it at the start of a task.
- agentrc_memory: list, add or remove rules. Indices shift after a removal, so list
  again before removing a second rule.
- agentrc_init: create a default .agentrc when the project has none.
- agentrc_analyze: detect language, package manager and frameworks.
- agentrc_journal: review recent command rewrites, rule changes and blocked reads.

## Conventions
- Prefer the configured commands over generic ones (for example the configured
  test command instead of "npm test").
- When the user states a lasting preference about how to work in this project,
  offer to save it as a rule with agentrc_memory action=add.`
}

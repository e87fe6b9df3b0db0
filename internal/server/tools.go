package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/agentrc/internal/analyzer"
	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/dispatch"
	"github.com/HendryAvila/agentrc/internal/journal"
)

// sessionID tags journal entries made through MCP tool calls.
const sessionID = "mcp"

// ─── MemoryTool ─────────────────────────────────────────────────────────────

// MemoryTool handles the agentrc_memory MCP tool.
type MemoryTool struct {
	d *dispatch.Dispatcher
}

// NewMemoryTool creates a MemoryTool.
func NewMemoryTool(d *dispatch.Dispatcher) *MemoryTool {
	return &MemoryTool{d: d}
}

// Definition returns the MCP tool definition for agentrc_memory.
func (t *MemoryTool) Definition() mcp.Tool {
	return mcp.NewTool("agentrc_memory",
		mcp.WithDescription(
			"List, add or remove the project rules stored in .agentrc. "+
				"Rules are free-text guidance for AI assistants; they are addressed by their "+
				"zero-based position as shown by action=list. Indices shift after a removal, "+
				"so list again before removing another rule.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: list, add, remove"),
			mcp.Enum(dispatch.ActionList, dispatch.ActionAdd, dispatch.ActionRemove),
		),
		mcp.WithString("rule",
			mcp.Description("Rule text (required for add)"),
		),
		mcp.WithNumber("ruleId",
			mcp.Description("Zero-based rule index (required for remove)"),
		),
	)
}

// Handle processes the agentrc_memory tool call.
func (t *MemoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := dispatch.MemoryArgsFromMap(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := t.d.Memory(ctx, sessionID, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", dispatch.Code(err), err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// ─── InitTool ───────────────────────────────────────────────────────────────

// InitTool handles the agentrc_init MCP tool.
type InitTool struct {
	d *dispatch.Dispatcher
}

// NewInitTool creates an InitTool.
func NewInitTool(d *dispatch.Dispatcher) *InitTool {
	return &InitTool{d: d}
}

// Definition returns the MCP tool definition for agentrc_init.
func (t *InitTool) Definition() mcp.Tool {
	return mcp.NewTool("agentrc_init",
		mcp.WithDescription(
			"Create a default .agentrc for the project by analyzing its manifest and lockfiles. "+
				"Does nothing if the project already has one.",
		),
	)
}

// Handle processes the agentrc_init tool call.
func (t *InitTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.d.Init(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("init failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}

// ─── ConfigTool ─────────────────────────────────────────────────────────────

// ConfigTool handles the agentrc_config MCP tool.
type ConfigTool struct {
	handle *config.Handle
}

// NewConfigTool creates a ConfigTool.
func NewConfigTool(h *config.Handle) *ConfigTool {
	return &ConfigTool{handle: h}
}

// Definition returns the MCP tool definition for agentrc_config.
func (t *ConfigTool) Definition() mcp.Tool {
	return mcp.NewTool("agentrc_config",
		mcp.WithDescription(
			"Show the effective agentrc configuration (primary .agentrc merged with rules and "+
				"commands found in AGENTS.md, CLAUDE.md and similar files) and where it was loaded from.",
		),
		mcp.WithString("format",
			mcp.Description("Output format: json (default) or yaml"),
			mcp.Enum("json", "yaml"),
		),
		mcp.WithBoolean("reload",
			mcp.Description("Reload from disk before showing"),
		),
	)
}

// Handle processes the agentrc_config tool call.
func (t *ConfigTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "reload", false) {
		if err := t.handle.Reload(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	cfg := t.handle.Config()
	if cfg == nil {
		return mcp.NewToolResultText("No configuration found. Use agentrc_init to create one."), nil
	}

	body, err := Render(cfg, req.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source := t.handle.Source()
	if source == "" {
		source = "(legacy files only)"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Source: %s\n\n%s", source, body)), nil
}

// Render encodes cfg as json or yaml.
func Render(cfg *config.Config, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling config: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("marshaling config: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// ─── AnalyzeTool ────────────────────────────────────────────────────────────

// AnalyzeTool handles the agentrc_analyze MCP tool.
type AnalyzeTool struct {
	root string
}

// NewAnalyzeTool creates an AnalyzeTool for the project at root.
func NewAnalyzeTool(root string) *AnalyzeTool {
	return &AnalyzeTool{root: root}
}

// Definition returns the MCP tool definition for agentrc_analyze.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("agentrc_analyze",
		mcp.WithDescription(
			"Detect the project's language, package manager, framework, test framework and build tool.",
		),
	)
}

// Handle processes the agentrc_analyze tool call.
func (t *AnalyzeTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(analyzer.Analyze(t.root), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling analysis: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ─── JournalTool ────────────────────────────────────────────────────────────

// JournalTool handles the agentrc_journal MCP tool.
type JournalTool struct {
	j *journal.Journal
}

// NewJournalTool creates a JournalTool.
func NewJournalTool(j *journal.Journal) *JournalTool {
	return &JournalTool{j: j}
}

// Definition returns the MCP tool definition for agentrc_journal.
func (t *JournalTool) Definition() mcp.Tool {
	return mcp.NewTool("agentrc_journal",
		mcp.WithDescription(
			"Show recent agentrc decisions: command rewrites, rule changes, blocked reads "+
				"and restricted-path warnings, newest first.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return (default 20)"),
		),
		mcp.WithString("session",
			mcp.Description("Only show entries from this session"),
		),
	)
}

// Handle processes the agentrc_journal tool call.
func (t *JournalTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.j.Recent(req.GetString("session", ""), intArg(req, "limit", 20))
	if err != nil {
		if errors.Is(err, journal.ErrClosed) {
			return mcp.NewToolResultError("journal is not available"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("reading journal: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No journal entries yet."), nil
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-10s %-6s %s\n", e.CreatedAt, e.Kind, e.Tool, e.Detail)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

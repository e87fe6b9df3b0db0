package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/dispatch"
)

// ConventionsPrompt handles the agentrc-conventions MCP prompt.
// It hands the AI the project's rules and commands up front.
type ConventionsPrompt struct {
	handle *config.Handle
}

// NewConventionsPrompt creates a ConventionsPrompt.
func NewConventionsPrompt(h *config.Handle) *ConventionsPrompt {
	return &ConventionsPrompt{handle: h}
}

// Definition returns the MCP prompt definition for registration.
func (p *ConventionsPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("agentrc-conventions",
		mcp.WithPromptDescription(
			"Load this project's agentrc rules and commands before starting work.",
		),
	)
}

// Handle processes the agentrc-conventions prompt request.
func (p *ConventionsPrompt) Handle(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	cfg := p.handle.Config()
	if cfg == nil {
		return &mcp.GetPromptResult{
			Description: "agentrc conventions",
			Messages: []mcp.PromptMessage{{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"This project has no .agentrc yet. Run `agentrc_init` to create one, " +
						"then show me what it detected.",
				),
			}},
		}, nil
	}

	return &mcp.GetPromptResult{
		Description: "agentrc conventions",
		Messages: []mcp.PromptMessage{{
			Role: mcp.RoleUser,
			Content: mcp.NewTextContent(
				"Follow this project's configuration for the rest of the session:\n\n" +
					dispatch.Snapshot(cfg) + "\n\n" +
					"1. Use the listed commands instead of generic ones\n" +
					"2. Treat every rule as a requirement\n" +
					"3. When I state a lasting preference, offer to save it with `agentrc_memory`",
			),
		}},
	}, nil
}

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/agentrc/internal/config"
)

// ConfigURI addresses the effective configuration resource.
const ConfigURI = "agentrc://config"

// ResourceHandler serves read-only agentrc resources.
type ResourceHandler struct {
	handle *config.Handle
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(h *config.Handle) *ResourceHandler {
	return &ResourceHandler{handle: h}
}

// ConfigResource returns the MCP resource definition for the effective config.
func (h *ResourceHandler) ConfigResource() mcp.Resource {
	return mcp.NewResource(
		ConfigURI,
		"agentrc effective configuration",
		mcp.WithResourceDescription("The merged .agentrc and legacy configuration in effect for this session"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleConfig returns the effective configuration as JSON. With no
// configuration it returns an empty object.
func (h *ResourceHandler) HandleConfig(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cfg := h.handle.Config()
	if cfg == nil {
		cfg = &config.Config{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

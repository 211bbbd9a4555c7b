package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ServerInfoURI addresses the connection status resource.
const ServerInfoURI = "coverity://server-info"

var serverInfoResourceDef = mcp.NewResource(
	ServerInfoURI,
	"server-info",
	mcp.WithResourceDescription("Coverity server connection info"),
	mcp.WithMIMEType("application/json"),
)

// HandleServerInfo returns the current connection configuration. The auth
// key is never included.
func (h *Handlers) HandleServerInfo(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.cfg.Status(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal server info: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ServerInfoURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

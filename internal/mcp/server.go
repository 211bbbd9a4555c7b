package mcp

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/coverity-mcp/internal/config"
	"github.com/hpungsan/coverity-mcp/internal/registry"
	"github.com/hpungsan/coverity-mcp/internal/web"
)

// ServerName is the name reported to MCP clients.
const ServerName = "coverity-mcp"

// NewServer creates an MCP server and registers every manifest unit not
// listed in cfg.DisabledCapabilities.
func NewServer(client Querier, cfg *config.Config, version string, logger *slog.Logger) (*server.MCPServer, registry.Report) {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(client, cfg, logger)
	report := registry.AutoLoad(s, h.Manifest(), cfg.DisabledCapabilities, h.logger)
	return s, report
}

// Run starts the MCP server on the configured transport and blocks until it stops.
func Run(client Querier, cfg *config.Config, version string, logger *slog.Logger) error {
	s, _ := NewServer(client, cfg, version, logger)

	switch cfg.Transport {
	case config.TransportHTTP:
		srv := web.NewServer(server.NewStreamableHTTPServer(s), fmt.Sprintf(":%d", cfg.HTTPPort), logger)
		return web.Run(srv, logger)
	case config.TransportStdio, "":
		logger.Info("serving over stdio")
		return server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/coverity-mcp/internal/config"
	"github.com/hpungsan/coverity-mcp/internal/coverity"
	"github.com/hpungsan/coverity-mcp/internal/errors"
	"github.com/hpungsan/coverity-mcp/internal/logging"
)

// Querier is the defect data surface the units call. *coverity.Client
// implements it.
type Querier interface {
	ListProjects(ctx context.Context) ([]coverity.Project, error)
	ListStreams(ctx context.Context, projectName string) ([]coverity.Stream, error)
	SearchIssues(ctx context.Context, project string, f coverity.SearchFilter) ([]coverity.Issue, error)
	GetIssueDetails(ctx context.Context, cid int64, streamName string) *coverity.IssueDetail
}

var _ Querier = (*coverity.Client)(nil)

// Handlers holds dependencies for the capability unit handlers.
type Handlers struct {
	client Querier
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance. A nil logger discards output.
func NewHandlers(client Querier, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handlers{client: client, cfg: cfg, logger: logger}
}

// traced wraps a tool handler so every call carries a request id and is
// logged with its duration.
func (h *Handlers) traced(name string, fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.EnsureRequestID(ctx)
		start := time.Now()
		res, err := fn(ctx, req)

		attrs := []any{"tool", name, "request_id", logging.RequestID(ctx), "duration", time.Since(start)}
		switch {
		case err != nil:
			h.logger.Error("tool failed", append(attrs, "error", err)...)
		case res != nil && res.IsError:
			h.logger.Warn("tool rejected request", attrs...)
		default:
			h.logger.Info("tool invoked", attrs...)
		}
		return res, err
	}
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var covErr *errors.CovError
	if stderrors.As(err, &covErr) {
		errorObj := map[string]any{
			"code":    covErr.Code,
			"message": covErr.Message,
			"status":  covErr.Status,
		}
		if covErr.Code != errors.ErrInternal && covErr.Details != nil {
			errorObj["details"] = covErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// textResult wraps a single text block.
func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// prettyResult wraps a pretty-printed JSON text block, optionally preceded by a header.
func prettyResult(header string, data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(header + string(b)), nil
}

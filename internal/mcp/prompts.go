package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/coverity-mcp/internal/errors"
	"github.com/hpungsan/coverity-mcp/internal/logging"
	"github.com/hpungsan/coverity-mcp/internal/report"
)

var triageIssuePromptDef = mcp.NewPrompt("triage_issue",
	mcp.WithPromptDescription(
		"Walk through a Coverity defect: explain the event trace, find the root cause "+
			"and propose a fix.",
	),
	mcp.WithArgument("cid",
		mcp.ArgumentDescription("The Coverity Issue ID (CID)"),
		mcp.RequiredArgument(),
	),
	mcp.WithArgument("stream",
		mcp.ArgumentDescription("The stream name containing the issue"),
		mcp.RequiredArgument(),
	),
)

const triageInstructions = `Review the Coverity defect below.

1. Explain the event trace step by step.
2. Identify the root cause in the source code.
3. Propose a minimal fix and say whether the triage state should change.

`

// HandleTriageIssue handles the triage_issue prompt. The defect report is
// fetched at prompt time and embedded in a single user message.
func (h *Handlers) HandleTriageIssue(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	ctx = logging.EnsureRequestID(ctx)
	args := req.Params.Arguments

	cid, err := strconv.ParseInt(strings.TrimSpace(args["cid"]), 10, 64)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("cid must be an integer, got %q", args["cid"]))
	}
	stream := strings.TrimSpace(args["stream"])
	if stream == "" {
		return nil, errors.NewInvalidRequest("stream is required")
	}

	h.logger.Info("prompt invoked", "prompt", "triage_issue", "cid", cid, "request_id", logging.RequestID(ctx))

	var text string
	if detail := h.client.GetIssueDetails(ctx, cid, stream); detail != nil {
		text = triageInstructions + report.Markdown(detail)
	} else {
		text = notFoundText(cid, stream)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Triage CID %d in stream %s", cid, stream),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

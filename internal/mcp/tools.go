package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/coverity-mcp/internal/coverity"
	"github.com/hpungsan/coverity-mcp/internal/errors"
)

// Tool definitions

var listProjectsToolDef = mcp.NewTool("list_projects",
	mcp.WithDescription("List all Coverity projects the authenticated user can access."),
)

var listStreamsToolDef = mcp.NewTool("list_streams",
	mcp.WithDescription("List Coverity streams, optionally only those of one project."),
	mcp.WithString("project",
		mcp.Description("Project name. Omit to list every stream on the server."),
	),
)

var searchIssuesToolDef = mcp.NewTool("search_issues",
	mcp.WithDescription(
		"Search for static analysis defects in a Coverity project. "+
			"Returns CID, checker, type, impact, status, file and function for each issue.",
	),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("The project name to search in."),
	),
	mcp.WithString("checker", mcp.Description("Filter by checker name (e.g. RESOURCE_LEAK, NULL_RETURNS).")),
	mcp.WithString("impact", mcp.Description("Filter by impact: High, Medium, or Low.")),
	mcp.WithString("status", mcp.Description("Filter by status: New, Triaged, Fixed, Dismissed.")),
	mcp.WithNumber("cid", mcp.Description("Filter by a single CID.")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results (default 25, max 200)."),
		mcp.Min(1),
		mcp.Max(coverity.MaxSearchLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset (default 0)."),
		mcp.Min(0),
	),
)

var getIssueDetailsToolDef = mcp.NewTool("get_issue_details",
	mcp.WithDescription(
		"Get full details for a Coverity defect by CID, including the event trace "+
			"(the code path that leads to the defect), triage information, and file/line details.",
	),
	mcp.WithNumber("cid",
		mcp.Required(),
		mcp.Description("The Coverity Issue ID (CID)."),
	),
	mcp.WithString("streamId",
		mcp.Required(),
		mcp.Description("The stream name containing the issue."),
	),
)

// Request types for each tool

// ListStreamsRequest represents the arguments for list_streams.
type ListStreamsRequest struct {
	Project string `json:"project,omitempty"`
}

// SearchIssuesRequest represents the arguments for search_issues.
// StreamID is accepted as an alias for Project.
type SearchIssuesRequest struct {
	Project  string `json:"project,omitempty"`
	StreamID string `json:"streamId,omitempty"`
	Checker  string `json:"checker,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Status   string `json:"status,omitempty"`
	CID      *int64 `json:"cid,omitempty"`
	Limit    *int   `json:"limit,omitempty"`
	Offset   *int   `json:"offset,omitempty"`
}

// Filter validates the request and returns the project and client filter.
func (r SearchIssuesRequest) Filter() (string, coverity.SearchFilter, error) {
	project := strings.TrimSpace(r.Project)
	if project == "" {
		project = strings.TrimSpace(r.StreamID)
	}
	if project == "" {
		return "", coverity.SearchFilter{}, errors.NewInvalidRequest("project is required")
	}

	f := coverity.SearchFilter{
		Checker: r.Checker,
		Impact:  r.Impact,
		Status:  r.Status,
		Limit:   coverity.DefaultSearchLimit,
	}
	if r.CID != nil {
		if *r.CID <= 0 {
			return "", f, errors.NewInvalidRequest("cid must be positive")
		}
		f.CID = *r.CID
	}
	if r.Limit != nil {
		if *r.Limit < 1 || *r.Limit > coverity.MaxSearchLimit {
			return "", f, errors.NewInvalidRequest(fmt.Sprintf("limit must be between 1 and %d", coverity.MaxSearchLimit))
		}
		f.Limit = *r.Limit
	}
	if r.Offset != nil {
		if *r.Offset < 0 {
			return "", f, errors.NewInvalidRequest("offset must be >= 0")
		}
		f.Offset = *r.Offset
	}
	return project, f, nil
}

// GetIssueDetailsRequest represents the arguments for get_issue_details.
type GetIssueDetailsRequest struct {
	CID      *int64 `json:"cid"`
	StreamID string `json:"streamId"`
}

func (r GetIssueDetailsRequest) validate() error {
	if r.CID == nil {
		return errors.NewInvalidRequest("cid is required")
	}
	if strings.TrimSpace(r.StreamID) == "" {
		return errors.NewInvalidRequest("streamId is required")
	}
	return nil
}

// Handler implementations

// HandleListProjects handles the list_projects tool call.
func (h *Handlers) HandleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := h.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return textResult("No projects found."), nil
	}
	return prettyResult("", ProjectSummaries(projects))
}

// HandleListStreams handles the list_streams tool call.
func (h *Handlers) HandleListStreams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListStreamsRequest](req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}
	project := strings.TrimSpace(input.Project)

	streams, err := h.client.ListStreams(ctx, project)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		if project != "" {
			return textResult(fmt.Sprintf("No streams found for project \"%s\".", project)), nil
		}
		return textResult("No streams found."), nil
	}
	return prettyResult("", StreamSummaries(streams))
}

// HandleSearchIssues handles the search_issues tool call.
func (h *Handlers) HandleSearchIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchIssuesRequest](req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}
	project, filter, err := input.Filter()
	if err != nil {
		return errorResult(err), nil
	}

	issues, err := h.client.SearchIssues(ctx, project, filter)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return textResult(fmt.Sprintf("No issues found in project \"%s\" with the given filters.", project)), nil
	}
	header := fmt.Sprintf("Found %d issue(s) in project \"%s\":\n\n", len(issues), project)
	return prettyResult(header, IssueSummaries(issues))
}

// HandleGetIssueDetails handles the get_issue_details tool call.
func (h *Handlers) HandleGetIssueDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetIssueDetailsRequest](req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}
	if err := input.validate(); err != nil {
		return errorResult(err), nil
	}

	detail := h.client.GetIssueDetails(ctx, *input.CID, input.StreamID)
	if detail == nil {
		return textResult(notFoundText(*input.CID, input.StreamID)), nil
	}
	return prettyResult("", NewDetailView(detail))
}

func notFoundText(cid int64, stream string) string {
	return fmt.Sprintf("No issue found with CID %d in stream \"%s\".", cid, stream)
}

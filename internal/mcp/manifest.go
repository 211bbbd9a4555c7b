package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/coverity-mcp/internal/registry"
)

// toolUnit builds a query unit that registers def with a traced handler.
func (h *Handlers) toolUnit(def mcp.Tool, handler server.ToolHandlerFunc) func() (registry.Unit, error) {
	return func() (registry.Unit, error) {
		return registry.Unit{
			Kind:        registry.KindTool,
			Name:        def.Name,
			Description: def.Description,
			Register: func(host registry.Host) error {
				host.AddTool(def, h.traced(def.Name, handler))
				return nil
			},
		}, nil
	}
}

func (h *Handlers) resourceUnit(name string, def mcp.Resource, handler server.ResourceHandlerFunc) func() (registry.Unit, error) {
	return func() (registry.Unit, error) {
		return registry.Unit{
			Kind:        registry.KindResource,
			Name:        name,
			Description: def.Description,
			Register: func(host registry.Host) error {
				host.AddResource(def, handler)
				return nil
			},
		}, nil
	}
}

func (h *Handlers) promptUnit(def mcp.Prompt, handler server.PromptHandlerFunc) func() (registry.Unit, error) {
	return func() (registry.Unit, error) {
		return registry.Unit{
			Kind:        registry.KindPrompt,
			Name:        def.Name,
			Description: def.Description,
			Register: func(host registry.Host) error {
				host.AddPrompt(def, handler)
				return nil
			},
		}, nil
	}
}

// Manifest lists every capability unit the server offers, by category directory.
func (h *Handlers) Manifest() []registry.Entry {
	return []registry.Entry{
		{Path: "tools/list_projects", Load: h.toolUnit(listProjectsToolDef, h.HandleListProjects)},
		{Path: "tools/list_streams", Load: h.toolUnit(listStreamsToolDef, h.HandleListStreams)},
		{Path: "tools/search_issues", Load: h.toolUnit(searchIssuesToolDef, h.HandleSearchIssues)},
		{Path: "tools/get_issue_details", Load: h.toolUnit(getIssueDetailsToolDef, h.HandleGetIssueDetails)},
		{Path: "resources/server-info", Load: h.resourceUnit("server-info", serverInfoResourceDef, h.HandleServerInfo)},
		{Path: "prompts/triage_issue", Load: h.promptUnit(triageIssuePromptDef, h.HandleTriageIssue)},
	}
}

package mcp

import "github.com/hpungsan/coverity-mcp/internal/coverity"

// ProjectSummary is the list_projects output row.
type ProjectSummary struct {
	Name        string   `json:"name"`
	Key         int64    `json:"key"`
	Description string   `json:"description"`
	Streams     []string `json:"streams"`
}

// StreamSummary is the list_streams output row.
type StreamSummary struct {
	Name        string `json:"name"`
	Language    string `json:"language"`
	Description string `json:"description"`
	Project     string `json:"project"`
}

// IssueSummary is the search_issues output row.
type IssueSummary struct {
	CID      int64  `json:"cid"`
	Checker  string `json:"checker"`
	Type     string `json:"type"`
	Impact   string `json:"impact"`
	Status   string `json:"status"`
	File     string `json:"file"`
	Function string `json:"function"`
}

// DetailView is the get_issue_details output.
type DetailView struct {
	CID             int64           `json:"cid"`
	Checker         string          `json:"checker"`
	Type            string          `json:"type"`
	Impact          string          `json:"impact"`
	Status          string          `json:"status"`
	File            string          `json:"file"`
	Function        string          `json:"function"`
	FirstDetected   string          `json:"firstDetected"`
	LastDetected    string          `json:"lastDetected"`
	OccurrenceCount int             `json:"occurrenceCount"`
	Triage          coverity.Triage `json:"triage"`
	Events          []EventView     `json:"events"`
}

// EventView is one step of DetailView.Events.
type EventView struct {
	Step        int    `json:"step"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	File        string `json:"file"`
	Line        int    `json:"line"`
}

// ProjectSummaries converts projects to their output rows.
func ProjectSummaries(projects []coverity.Project) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		streams := make([]string, 0, len(p.Streams))
		for _, s := range p.Streams {
			streams = append(streams, s.Name)
		}
		out = append(out, ProjectSummary{
			Name:        p.Name,
			Key:         p.ProjectKey,
			Description: p.Description,
			Streams:     streams,
		})
	}
	return out
}

// StreamSummaries converts streams to their output rows. A missing language is "unknown".
func StreamSummaries(streams []coverity.Stream) []StreamSummary {
	out := make([]StreamSummary, 0, len(streams))
	for _, s := range streams {
		lang := s.Language
		if lang == "" {
			lang = "unknown"
		}
		out = append(out, StreamSummary{
			Name:        s.Name,
			Language:    lang,
			Description: s.Description,
			Project:     s.PrimaryProjectName,
		})
	}
	return out
}

// IssueSummaries converts search results to their output rows.
func IssueSummaries(issues []coverity.Issue) []IssueSummary {
	out := make([]IssueSummary, 0, len(issues))
	for _, i := range issues {
		out = append(out, IssueSummary{
			CID:      i.CID,
			Checker:  i.CheckerName,
			Type:     i.DisplayType,
			Impact:   i.DisplayImpact,
			Status:   i.DisplayStatus,
			File:     i.DisplayFile,
			Function: i.DisplayFunction,
		})
	}
	return out
}

// NewDetailView converts an issue detail to its output shape.
func NewDetailView(d *coverity.IssueDetail) DetailView {
	events := make([]EventView, 0, len(d.Events))
	for _, e := range d.Events {
		events = append(events, EventView{
			Step:        e.EventNumber,
			Tag:         e.EventTag,
			Description: e.EventDescription,
			File:        e.FilePathname,
			Line:        e.LineNumber,
		})
	}
	return DetailView{
		CID:             d.CID,
		Checker:         d.CheckerName,
		Type:            d.DisplayType,
		Impact:          d.DisplayImpact,
		Status:          d.DisplayStatus,
		File:            d.DisplayFile,
		Function:        d.DisplayFunction,
		FirstDetected:   d.FirstDetected,
		LastDetected:    d.LastDetected,
		OccurrenceCount: d.OccurrenceCount,
		Triage:          d.Triage,
		Events:          events,
	}
}

package coverity

import (
	"context"
	"strconv"
)

const searchPath = "/api/v2/issues/search"

// issueColumns are the columns requested for every issue search.
var issueColumns = []string{
	"cid",
	"checker",
	"displayType",
	"displayImpact",
	"status",
	"displayFile",
	"displayFunction",
	"firstDetected",
	"lastDetected",
	"occurrenceCount",
}

// SearchIssues returns the issues of project matching f, one page at a time.
// Zero matching rows is an empty slice, not an error.
func (c *Client) SearchIssues(ctx context.Context, project string, f SearchFilter) ([]Issue, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	req := searchRequest{
		Filters: buildSearchFilters(project, f),
		Columns: issueColumns,
	}
	params := map[string]string{
		"rowCount":  strconv.Itoa(limit),
		"offset":    strconv.Itoa(offset),
		"queryType": "byProject",
		"sortOrder": "asc",
	}

	var resp searchResponse
	if err := c.postJSON(ctx, searchPath, req, params, &resp); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		issues = append(issues, issueFromRow(flattenRow(row)))
	}
	return issues, nil
}

// buildSearchFilters returns the mandatory project clause followed by one
// exact-key clause per non-empty filter.
func buildSearchFilters(project string, f SearchFilter) []columnFilter {
	filters := []columnFilter{{
		ColumnKey: "project",
		MatchMode: "oneOrMoreMatch",
		Matchers:  []matcher{{Class: "Project", Name: project, Type: "nameMatcher"}},
	}}

	if f.Checker != "" {
		filters = append(filters, keyFilter("checker", f.Checker))
	}
	if f.Impact != "" {
		filters = append(filters, keyFilter("displayImpact", f.Impact))
	}
	if f.Status != "" {
		filters = append(filters, keyFilter("status", f.Status))
	}
	if f.CID > 0 {
		filters = append(filters, keyFilter("cid", strconv.FormatInt(f.CID, 10)))
	}
	return filters
}

func keyFilter(column, key string) columnFilter {
	return columnFilter{
		ColumnKey: column,
		MatchMode: "oneOrMoreMatch",
		Matchers:  []matcher{{Key: key, Type: "keyMatcher"}},
	}
}

// flattenRow turns a row of key/value cells into a column map.
func flattenRow(row []cell) map[string]string {
	flat := make(map[string]string, len(row))
	for _, c := range row {
		flat[c.Key] = string(c.Value)
	}
	return flat
}

// issueFromRow maps a flattened search row to an Issue. Missing columns
// default to "" or 0.
func issueFromRow(flat map[string]string) Issue {
	cid, _ := strconv.ParseInt(flat["cid"], 10, 64)
	return Issue{
		CID:             cid,
		CheckerName:     flat["checker"],
		DisplayType:     flat["displayType"],
		DisplayImpact:   flat["displayImpact"],
		DisplayStatus:   flat["status"],
		DisplayFile:     flat["displayFile"],
		DisplayFunction: flat["displayFunction"],
		FirstDetected:   flat["firstDetected"],
		LastDetected:    flat["lastDetected"],
		OccurrenceCount: atoi(flat["occurrenceCount"]),
	}
}

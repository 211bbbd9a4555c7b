package coverity

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

// row builds a search response row from alternating key/value pairs.
func row(kv ...string) []map[string]string {
	cells := make([]map[string]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		cells = append(cells, map[string]string{"key": kv[i], "value": kv[i+1]})
	}
	return cells
}

func TestSearchIssues_ImpactScenario(t *testing.T) {
	var gotReq searchRequest

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/issues/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		q := r.URL.Query()
		for key, want := range map[string]string{
			"rowCount": "10", "offset": "0", "queryType": "byProject", "sortOrder": "asc",
		} {
			if got := q.Get(key); got != want {
				t.Errorf("query %s = %q, want %q", key, got, want)
			}
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		writeJSON(t, w, map[string]any{
			"offset":    0,
			"totalRows": 3,
			"rows": [][]map[string]string{
				row("cid", "101", "checker", "NULL_RETURNS", "displayImpact", "High", "occurrenceCount", "2"),
				row("cid", "102", "checker", "RESOURCE_LEAK", "displayImpact", "High"),
				row("cid", "103", "checker", "UNINIT", "displayImpact", "High", "status", "New"),
			},
		})
	})
	client := newTestClient(t, mux)

	issues, err := client.SearchIssues(context.Background(), "proj", SearchFilter{Impact: "High", Limit: 10})
	if err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("len(issues) = %d, want 3", len(issues))
	}
	for i, issue := range issues {
		if issue.DisplayImpact != "High" {
			t.Errorf("issues[%d].DisplayImpact = %q, want High", i, issue.DisplayImpact)
		}
	}
	if issues[0].CID != 101 || issues[0].OccurrenceCount != 2 {
		t.Errorf("issues[0] = %+v", issues[0])
	}
	if issues[2].DisplayStatus != "New" {
		t.Errorf("issues[2].DisplayStatus = %q, want New", issues[2].DisplayStatus)
	}

	if len(gotReq.Filters) != 2 {
		t.Fatalf("filters = %+v, want project + impact", gotReq.Filters)
	}
	if gotReq.Filters[1].ColumnKey != "displayImpact" || gotReq.Filters[1].Matchers[0].Key != "High" {
		t.Errorf("impact filter = %+v", gotReq.Filters[1])
	}
	if len(gotReq.Columns) != len(issueColumns) {
		t.Errorf("columns = %v, want %v", gotReq.Columns, issueColumns)
	}
}

func TestSearchIssues_DefaultPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/issues/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("rowCount"); got != "25" {
			t.Errorf("rowCount = %q, want 25", got)
		}
		if got := r.URL.Query().Get("offset"); got != "0" {
			t.Errorf("offset = %q, want 0", got)
		}
		writeJSON(t, w, map[string]any{"totalRows": 0})
	})
	client := newTestClient(t, mux)

	if _, err := client.SearchIssues(context.Background(), "proj", SearchFilter{Offset: -4}); err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
}

func TestSearchIssues_NoRows(t *testing.T) {
	filters := []SearchFilter{
		{},
		{Checker: "RESOURCE_LEAK"},
		{Impact: "Low", Status: "Fixed"},
		{Checker: "X", Impact: "Medium", Status: "New", CID: 99, Limit: 200, Offset: 400},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/issues/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"offset": 0, "totalRows": 0, "rows": [][]map[string]string{}})
	})
	client := newTestClient(t, mux)

	for _, f := range filters {
		issues, err := client.SearchIssues(context.Background(), "proj", f)
		if err != nil {
			t.Fatalf("SearchIssues(%+v) error = %v", f, err)
		}
		if issues == nil || len(issues) != 0 {
			t.Errorf("SearchIssues(%+v) = %#v, want empty non-nil slice", f, issues)
		}
	}
}

func TestBuildSearchFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  SearchFilter
		columns []string
		keys    []string
	}{
		{
			name:    "project only",
			filter:  SearchFilter{},
			columns: []string{"project"},
			keys:    []string{""},
		},
		{
			name:    "all filters",
			filter:  SearchFilter{Checker: "NULL_RETURNS", Impact: "High", Status: "New", CID: 42},
			columns: []string{"project", "checker", "displayImpact", "status", "cid"},
			keys:    []string{"", "NULL_RETURNS", "High", "New", "42"},
		},
		{
			name:    "status only",
			filter:  SearchFilter{Status: "Dismissed"},
			columns: []string{"project", "status"},
			keys:    []string{"", "Dismissed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchFilters("proj", tt.filter)
			if len(got) != len(tt.columns) {
				t.Fatalf("len(filters) = %d, want %d", len(got), len(tt.columns))
			}

			project := got[0].Matchers[0]
			if project.Type != "nameMatcher" || project.Class != "Project" || project.Name != "proj" {
				t.Errorf("project matcher = %+v", project)
			}

			for i, f := range got {
				if f.ColumnKey != tt.columns[i] {
					t.Errorf("filters[%d].ColumnKey = %q, want %q", i, f.ColumnKey, tt.columns[i])
				}
				if f.MatchMode != "oneOrMoreMatch" {
					t.Errorf("filters[%d].MatchMode = %q", i, f.MatchMode)
				}
				if i > 0 {
					m := f.Matchers[0]
					if m.Type != "keyMatcher" || m.Key != tt.keys[i] {
						t.Errorf("filters[%d] matcher = %+v, want keyMatcher %q", i, m, tt.keys[i])
					}
				}
			}
		})
	}
}

func TestIssueFromRow_Defaults(t *testing.T) {
	issue := issueFromRow(map[string]string{"cid": "7"})

	want := Issue{CID: 7}
	if issue != want {
		t.Errorf("issueFromRow() = %+v, want %+v", issue, want)
	}

	if got := issueFromRow(map[string]string{"cid": "abc", "occurrenceCount": "n/a"}); got.CID != 0 || got.OccurrenceCount != 0 {
		t.Errorf("unparseable numbers should default to 0, got %+v", got)
	}
}

func TestCellDecoding(t *testing.T) {
	var resp searchResponse
	body := `{"totalRows":1,"rows":[[{"key":"cid","value":12},{"key":"displayFile","value":null},{"key":"checker","value":"UNINIT"}]]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	flat := flattenRow(resp.Rows[0])
	if flat["cid"] != "12" {
		t.Errorf("numeric cell = %q, want %q", flat["cid"], "12")
	}
	if v, ok := flat["displayFile"]; !ok || v != "" {
		t.Errorf("null cell = %q (present=%v), want empty and present", v, ok)
	}
	if flat["checker"] != "UNINIT" {
		t.Errorf("string cell = %q", flat["checker"])
	}
}

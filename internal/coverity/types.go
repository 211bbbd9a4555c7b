package coverity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Project is one entry of the projects listing.
type Project struct {
	Name        string   `json:"name"`
	ProjectKey  int64    `json:"projectKey"`
	Description string   `json:"description,omitempty"`
	Streams     []Stream `json:"streams,omitempty"`
}

// Stream is a named defect-collection scope within a project.
type Stream struct {
	Name               string `json:"name"`
	Language           string `json:"language,omitempty"`
	Description        string `json:"description,omitempty"`
	PrimaryProjectName string `json:"primaryProjectName,omitempty"`
	TriageStoreName    string `json:"triageStoreName,omitempty"`
	Outdated           bool   `json:"outdated,omitempty"`
}

// Issue is the summary form of a defect. CID is its stable identity.
type Issue struct {
	CID             int64  `json:"cid"`
	CheckerName     string `json:"checkerName"`
	DisplayType     string `json:"displayType"`
	DisplayImpact   string `json:"displayImpact"`
	DisplayStatus   string `json:"displayStatus"`
	DisplayFile     string `json:"displayFile"`
	DisplayFunction string `json:"displayFunction"`
	FirstDetected   string `json:"firstDetected"`
	LastDetected    string `json:"lastDetected"`
	OccurrenceCount int    `json:"occurrenceCount"`
}

// IssueDetail is the summary plus the event trace of the first occurrence and
// the latest triage state.
type IssueDetail struct {
	Issue
	Events []Event `json:"events"`
	Triage Triage  `json:"triage"`
}

// Event is one step of a defect's code-path narrative.
type Event struct {
	EventNumber      int    `json:"eventNumber"`
	EventTag         string `json:"eventTag"`
	EventDescription string `json:"eventDescription"`
	FilePathname     string `json:"filePathname"`
	LineNumber       int    `json:"lineNumber"`
}

// Triage is the human-assigned disposition of a defect.
type Triage struct {
	Action         string `json:"action"`
	Classification string `json:"classification"`
	Severity       string `json:"severity"`
	Owner          string `json:"owner"`
	Comment        string `json:"comment,omitempty"`
}

// Triage defaults used when no triage history is available.
const (
	ActionUndecided            = "Undecided"
	ClassificationUnclassified = "Unclassified"
	SeverityUnspecified        = "Unspecified"
)

// UndecidedTriage is the triage state reported when the history is empty or unavailable.
var UndecidedTriage = Triage{
	Action:         ActionUndecided,
	Classification: ClassificationUnclassified,
	Severity:       SeverityUnspecified,
	Owner:          "",
}

// Default search paging.
const (
	DefaultSearchLimit = 25
	MaxSearchLimit     = 200
)

// SearchFilter narrows SearchIssues. Empty strings and a zero CID mean "no filter".
type SearchFilter struct {
	Checker string
	Impact  string
	Status  string
	CID     int64
	Limit   int // default 25
	Offset  int // default 0
}

// Wire shapes of the Coverity Connect v2 REST API.

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

type streamsResponse struct {
	Streams []Stream `json:"streams"`
}

type searchRequest struct {
	Filters []columnFilter `json:"filters"`
	Columns []string       `json:"columns"`
}

type columnFilter struct {
	ColumnKey string    `json:"columnKey"`
	MatchMode string    `json:"matchMode"`
	Matchers  []matcher `json:"matchers"`
}

type matcher struct {
	Class string `json:"class,omitempty"`
	Name  string `json:"name,omitempty"`
	Key   string `json:"key,omitempty"`
	Type  string `json:"type"`
}

type searchResponse struct {
	Offset    int      `json:"offset"`
	TotalRows int      `json:"totalRows"`
	Columns   []string `json:"columns"`
	Rows      [][]cell `json:"rows"`
}

type cell struct {
	Key   string    `json:"key"`
	Value textValue `json:"value"`
}

type sourceCodeInfo struct {
	CheckerName           string            `json:"checkerName"`
	Domain                string            `json:"domain"`
	IssueOccurrences      []issueOccurrence `json:"issueOccurrences"`
	IssueOccurrencesCount int               `json:"issueOccurrencesCount"`
}

type issueOccurrence struct {
	ID     textValue   `json:"id"`
	Events []wireEvent `json:"events"`
}

type wireEvent struct {
	EventNumber      looseInt `json:"eventNumber"`
	EventTag         string   `json:"eventTag"`
	EventDescription string   `json:"eventDescription"`
	LineNumber       looseInt `json:"lineNumber"`
	Main             bool     `json:"main"`
	File             struct {
		FilePathname string `json:"filePathname"`
	} `json:"file"`
}

type triageHistoryResponse struct {
	TriageHistories []triageHistory `json:"triageHistories"`
}

type triageHistory struct {
	ID                  looseInt         `json:"id"`
	AttributeValuesList []attributeValue `json:"attributeValuesList"`
}

type attributeValue struct {
	AttributeName  string    `json:"attributeName"`
	AttributeValue textValue `json:"attributeValue"`
}

// textValue accepts a JSON string, number, or bool and keeps its text.
// null decodes to "".
type textValue string

func (v *textValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = textValue(s)
		return nil
	}
	*v = textValue(b)
	return nil
}

// looseInt accepts a JSON number or a numeric string. Anything unparseable is 0.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var t textValue
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = looseInt(atoi(string(t)))
	return nil
}

// atoi parses a base-10 integer, tolerating surrounding space and a fractional
// part. Unparseable input yields 0.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

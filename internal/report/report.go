// Package report renders an issue detail as Markdown or a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/coverity-mcp/internal/coverity"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Markdown returns a Markdown report for d: a field table, the triage state
// and the event trace.
func Markdown(d *coverity.IssueDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# CID %d: %s\n\n", d.CID, orDash(d.CheckerName))

	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Type", d.DisplayType)
	row(&b, "Impact", d.DisplayImpact)
	row(&b, "Status", d.DisplayStatus)
	row(&b, "File", code(d.DisplayFile))
	row(&b, "Function", code(d.DisplayFunction))
	row(&b, "First detected", d.FirstDetected)
	row(&b, "Last detected", d.LastDetected)
	row(&b, "Occurrences", fmt.Sprint(d.OccurrenceCount))

	b.WriteString("\n## Triage\n\n")
	fmt.Fprintf(&b, "- **Action**: %s\n", d.Triage.Action)
	fmt.Fprintf(&b, "- **Classification**: %s\n", d.Triage.Classification)
	fmt.Fprintf(&b, "- **Severity**: %s\n", d.Triage.Severity)
	fmt.Fprintf(&b, "- **Owner**: %s\n", orDash(d.Triage.Owner))
	if d.Triage.Comment != "" {
		fmt.Fprintf(&b, "- **Comment**: %s\n", d.Triage.Comment)
	}

	b.WriteString("\n## Events\n\n")
	if len(d.Events) == 0 {
		b.WriteString("No events recorded.\n")
		return b.String()
	}
	for _, e := range d.Events {
		fmt.Fprintf(&b, "%d. **%s** `%s:%d`: %s\n", e.EventNumber, e.EventTag, e.FilePathname, e.LineNumber, e.EventDescription)
	}
	return b.String()
}

// HTML renders Markdown(d) into a complete HTML document.
func HTML(d *coverity.IssueDetail) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(d)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{
		Title: fmt.Sprintf("CID %d", d.CID),
		Body:  template.HTML(body.String()), //nolint:gosec
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}

func row(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", field, strings.ReplaceAll(orDash(value), "|", `\|`))
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

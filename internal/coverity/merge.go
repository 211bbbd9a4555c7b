package coverity

// mergeDetail combines the three settled lookups of GetIssueDetails into one
// record. It performs no I/O and depends only on each outcome's status, never
// on arrival order.
//
// Precedence: display-search values first, then the source lookup's own
// checker name and occurrence count. The display file falls back to the file
// of the "main" event, then of the first event, then "".
func mergeDetail(cid int64, src Outcome[sourceCodeInfo], tri Outcome[triageHistoryResponse], disp Outcome[searchResponse]) *IssueDetail {
	if !src.OK() || src.Value.CheckerName == "" {
		return nil
	}
	source := src.Value

	var first *issueOccurrence
	if len(source.IssueOccurrences) > 0 {
		first = &source.IssueOccurrences[0]
	}

	detail := &IssueDetail{
		Issue: Issue{
			CID:             cid,
			CheckerName:     source.CheckerName,
			OccurrenceCount: source.IssueOccurrencesCount,
		},
		Events: eventsOf(first),
		Triage: triageOf(tri),
	}

	if row, ok := displayRow(disp); ok {
		if v := row["checker"]; v != "" {
			detail.CheckerName = v
		}
		detail.DisplayType = row["displayType"]
		detail.DisplayImpact = row["displayImpact"]
		detail.DisplayStatus = row["status"]
		detail.DisplayFile = row["displayFile"]
		detail.DisplayFunction = row["displayFunction"]
		detail.FirstDetected = row["firstDetected"]
		detail.LastDetected = row["lastDetected"]
		if v, ok := row["occurrenceCount"]; ok && v != "" {
			detail.OccurrenceCount = atoi(v)
		}
	}

	if detail.DisplayFile == "" {
		detail.DisplayFile = fallbackFile(first)
	}
	return detail
}

// eventsOf converts the events of one occurrence, preserving server order.
func eventsOf(occ *issueOccurrence) []Event {
	if occ == nil {
		return []Event{}
	}
	events := make([]Event, 0, len(occ.Events))
	for _, e := range occ.Events {
		events = append(events, Event{
			EventNumber:      int(e.EventNumber),
			EventTag:         e.EventTag,
			EventDescription: e.EventDescription,
			FilePathname:     e.File.FilePathname,
			LineNumber:       int(e.LineNumber),
		})
	}
	return events
}

// triageOf reads the most recent history entry (index 0). Missing or empty
// attributes fall back to UndecidedTriage's values.
func triageOf(tri Outcome[triageHistoryResponse]) Triage {
	if !tri.OK() || len(tri.Value.TriageHistories) == 0 {
		return UndecidedTriage
	}

	attrs := make(map[string]string)
	for _, av := range tri.Value.TriageHistories[0].AttributeValuesList {
		attrs[av.AttributeName] = string(av.AttributeValue)
	}

	t := UndecidedTriage
	if v := attrs["action"]; v != "" {
		t.Action = v
	}
	if v := attrs["classification"]; v != "" {
		t.Classification = v
	}
	if v := attrs["severity"]; v != "" {
		t.Severity = v
	}
	t.Owner = attrs["owner"]
	t.Comment = attrs["comment"]
	return t
}

// displayRow returns the first row of a successful display search.
func displayRow(disp Outcome[searchResponse]) (map[string]string, bool) {
	if !disp.OK() || disp.Value.TotalRows <= 0 || len(disp.Value.Rows) == 0 {
		return nil, false
	}
	return flattenRow(disp.Value.Rows[0]), true
}

func fallbackFile(occ *issueOccurrence) string {
	if occ == nil || len(occ.Events) == 0 {
		return ""
	}
	for _, e := range occ.Events {
		if e.Main {
			return e.File.FilePathname
		}
	}
	return occ.Events[0].File.FilePathname
}

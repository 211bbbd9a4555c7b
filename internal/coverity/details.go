package coverity

import (
	"context"
	"strconv"
	"sync"
)

const (
	sourceCodeInfoPath = "/api/v2/issues/sourceCodeInfo"
	triageHistoryPath  = "/api/v2/issues/triageHistory"
)

// GetIssueDetails assembles the detail record for cid in streamName from three
// concurrent lookups: source/event trace, triage history and display columns.
//
// It returns nil when the issue cannot be found. Failures of the source lookup
// are reported as not found; failures of the other two degrade to defaults.
// No error is ever returned to the caller.
func (c *Client) GetIssueDetails(ctx context.Context, cid int64, streamName string) *IssueDetail {
	var (
		wg   sync.WaitGroup
		src  Outcome[sourceCodeInfo]
		tri  Outcome[triageHistoryResponse]
		disp Outcome[searchResponse]
	)
	cidText := strconv.FormatInt(cid, 10)

	wg.Add(3)
	go func() {
		defer wg.Done()
		src = settle(func() (sourceCodeInfo, error) {
			var out sourceCodeInfo
			err := c.getJSON(ctx, sourceCodeInfoPath, map[string]string{
				"cid":                               cidText,
				"streamName":                        streamName,
				"includeTotalIssueOccurrencesCount": "true",
			}, &out)
			return out, err
		})
	}()
	go func() {
		defer wg.Done()
		tri = settle(func() (triageHistoryResponse, error) {
			var out triageHistoryResponse
			err := c.getJSON(ctx, triageHistoryPath, map[string]string{
				"cid":              cidText,
				"triageStoreNames": c.triageStore,
			}, &out)
			return out, err
		})
	}()
	go func() {
		defer wg.Done()
		disp = settle(func() (searchResponse, error) {
			var out searchResponse
			req := searchRequest{
				Filters: []columnFilter{keyFilter("cid", cidText)},
				Columns: issueColumns,
			}
			err := c.postJSON(ctx, searchPath, req, map[string]string{
				"rowCount":  "1",
				"queryType": "byProject",
			}, &out)
			return out, err
		})
	}()
	wg.Wait()

	if !tri.OK() {
		c.logger.Warn("triage history unavailable, using undecided triage", "cid", cid, "error", tri.Err)
	}
	if !disp.OK() {
		c.logger.Warn("display columns unavailable, using source fallbacks", "cid", cid, "error", disp.Err)
	}
	if !src.OK() {
		c.logger.Warn("source lookup failed, reporting not found", "cid", cid, "stream", streamName, "error", src.Err)
	}

	return mergeDetail(cid, src, tri, disp)
}

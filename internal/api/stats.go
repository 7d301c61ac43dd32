package api

import (
	"context"
	"net/http"
	"net/url"
)

// Stats fetches the dashboard aggregate.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyNagaStats fetches the per-MyNaga-status case breakdown.
func (c *Client) MyNagaStats(ctx context.Context) (*MyNagaStatusBreakdown, error) {
	var out MyNagaStatusBreakdown
	if err := c.do(ctx, http.MethodGet, "/mynaga-stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportLink resolves a control number to a deep link into the MyNaga mobile
// app. A result with Success=false and no link means the report is unknown to
// the app; callers treat that as a normal outcome.
func (c *Client) ReportLink(ctx context.Context, controlNo string) (*ReportLinkResult, error) {
	var out ReportLinkResult
	path := "/mynaga/report-link/" + url.PathEscape(controlNo)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

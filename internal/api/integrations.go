package api

import (
	"context"
	"net/http"
	"net/url"
)

// MyNaga integration endpoints. The sync engine itself runs server-side; the
// client only configures it and reads its status.

// ConfigureMyNaga stores the auth token and starts the backend's sync
// scheduler at the requested interval.
func (c *Client) ConfigureMyNaga(ctx context.Context, cfg MyNagaConfig) (*ConfigureResult, error) {
	var out ConfigureResult
	if err := c.do(ctx, http.MethodPost, "/mynaga/config", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestMyNagaConnection validates an auth token against the MyNaga API. The
// token travels as a query parameter, matching the backend's contract.
func (c *Client) TestMyNagaConnection(ctx context.Context, authToken string) (*TestResult, error) {
	q := url.Values{}
	q.Set("auth_token", authToken)
	var out TestResult
	if err := c.do(ctx, http.MethodPost, "/mynaga/test-connection", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyNagaSyncStatus reads the sync scheduler's current state.
func (c *Client) MyNagaSyncStatus(ctx context.Context) (*MyNagaSyncStatus, error) {
	var out MyNagaSyncStatus
	if err := c.do(ctx, http.MethodGet, "/mynaga/sync/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerMyNagaSync runs one sync pass immediately and reports its stats.
func (c *Client) TriggerMyNagaSync(ctx context.Context, authToken string) (*SyncRunResult, error) {
	q := url.Values{}
	q.Set("auth_token", authToken)
	var out SyncRunResult
	if err := c.do(ctx, http.MethodPost, "/mynaga/sync/manual", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopMyNagaSync halts the backend's MyNaga sync scheduler.
func (c *Client) StopMyNagaSync(ctx context.Context) (*AckResult, error) {
	var out AckResult
	if err := c.do(ctx, http.MethodPost, "/mynaga/sync/stop", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Google Sheets integration endpoints.

// SheetsStatus reads the Google Sheets sync state.
func (c *Client) SheetsStatus(ctx context.Context) (*SheetsSyncStatus, error) {
	var out SheetsSyncStatus
	if err := c.do(ctx, http.MethodGet, "/google-sheets/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestSheetsConnection verifies the sheet is reachable with the given
// credentials (or as a published CSV when none are supplied).
func (c *Client) TestSheetsConnection(ctx context.Context, cfg SheetsConfig) (*TestResult, error) {
	var out TestResult
	if err := c.do(ctx, http.MethodPost, "/google-sheets/test-connection", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncSheets runs one sheet-to-database sync pass.
func (c *Client) SyncSheets(ctx context.Context, cfg SheetsConfig) (*SyncRunResult, error) {
	var out SyncRunResult
	if err := c.do(ctx, http.MethodPost, "/google-sheets/sync", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSheetsAutoSync enables periodic sheet syncing server-side.
func (c *Client) StartSheetsAutoSync(ctx context.Context, cfg SheetsConfig) (*AckResult, error) {
	var out AckResult
	if err := c.do(ctx, http.MethodPost, "/google-sheets/auto-sync/start", nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopSheetsAutoSync disables periodic sheet syncing.
func (c *Client) StopSheetsAutoSync(ctx context.Context) (*AckResult, error) {
	var out AckResult
	if err := c.do(ctx, http.MethodPost, "/google-sheets/auto-sync/stop", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// ImportExcel uploads an Excel workbook for server-side row import. Rows that
// fail are reported in the result alongside the count of rows that imported;
// nothing is rolled back.
func (c *Client) ImportExcel(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, fmt.Errorf("file must be an Excel file (.xlsx or .xls): %s", filename)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/import/excel", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out ImportResult
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportExcel asks the server to write all cases to an Excel file and returns
// where it put the result.
func (c *Client) ExportExcel(ctx context.Context) (*ExportResult, error) {
	var out ExportResult
	if err := c.do(ctx, http.MethodGet, "/export/excel", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListCasesOptions narrows a case listing. Zero-valued filters are omitted
// from the request entirely so the server query is not over-constrained.
type ListCasesOptions struct {
	Skip     int
	Limit    int
	Status   string
	Category string
	Barangay string
	Search   string
}

func (o ListCasesOptions) query() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(o.Skip))
	limit := o.Limit
	if limit <= 0 {
		limit = 10000
	}
	q.Set("limit", strconv.Itoa(limit))
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Barangay != "" {
		q.Set("barangay", o.Barangay)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// ListCases fetches cases newest-first with optional filtering.
func (c *Client) ListCases(ctx context.Context, opts ListCasesOptions) ([]Case, error) {
	var cases []Case
	if err := c.do(ctx, http.MethodGet, "/cases", opts.query(), nil, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// GetCase fetches a single case by its database identity.
func (c *Client) GetCase(ctx context.Context, id int64) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cases/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCase creates a new case. ControlNo and Category are mandatory; the
// server assigns the identity and returns the full representation.
func (c *Client) CreateCase(ctx context.Context, newCase Case) (*Case, error) {
	if newCase.ControlNo == "" {
		return nil, fmt.Errorf("control_no is required")
	}
	if newCase.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	var out Case
	if err := c.do(ctx, http.MethodPost, "/cases", nil, newCase, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCase applies a partial update to an existing case and returns the
// server's (possibly partial) representation after the change.
func (c *Client) UpdateCase(ctx context.Context, id int64, patch CasePatch) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cases/%d", id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCase removes a case.
func (c *Client) DeleteCase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cases/%d", id), nil, nil, nil)
}

// AddStatusUpdate posts a progress note; a StatusAfterUpdate also moves the
// case's internal status server-side.
func (c *Client) AddStatusUpdate(ctx context.Context, caseID int64, update StatusUpdate) (*StatusUpdate, error) {
	var out StatusUpdate
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cases/%d/updates", caseID), nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignOffice links a catalog office to a case.
func (c *Client) AssignOffice(ctx context.Context, caseID, officeID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/cases/%d/offices/%d", caseID, officeID), nil, nil, nil)
}

// AssignCluster links a cluster to a case.
func (c *Client) AssignCluster(ctx context.Context, caseID, clusterID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/cases/%d/clusters/%d", caseID, clusterID), nil, nil, nil)
}

// AddTag attaches a tag to a case.
func (c *Client) AddTag(ctx context.Context, caseID int64, tagName string) (*Tag, error) {
	var out Tag
	body := Tag{TagName: tagName}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cases/%d/tags", caseID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes a tag by its own identity.
func (c *Client) DeleteTag(ctx context.Context, tagID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tags/%d", tagID), nil, nil, nil)
}

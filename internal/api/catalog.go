package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListOffices fetches the server-owned office catalog. This is the single
// source of truth for office codes; the client keeps no copy of its own.
func (c *Client) ListOffices(ctx context.Context) ([]Office, error) {
	var offices []Office
	if err := c.do(ctx, http.MethodGet, "/offices", nil, nil, &offices); err != nil {
		return nil, err
	}
	return offices, nil
}

// CreateOffice adds an office to the catalog.
func (c *Client) CreateOffice(ctx context.Context, office Office) (*Office, error) {
	var out Office
	if err := c.do(ctx, http.MethodPost, "/offices", nil, office, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClusters fetches all clusters.
func (c *Client) ListClusters(ctx context.Context) ([]Cluster, error) {
	var clusters []Cluster
	if err := c.do(ctx, http.MethodGet, "/clusters", nil, nil, &clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// CreateCluster adds a cluster.
func (c *Client) CreateCluster(ctx context.Context, cluster Cluster) (*Cluster, error) {
	var out Cluster
	if err := c.do(ctx, http.MethodPost, "/clusters", nil, cluster, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCluster modifies an existing cluster.
func (c *Client) UpdateCluster(ctx context.Context, id int64, cluster Cluster) (*Cluster, error) {
	var out Cluster
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/clusters/%d", id), nil, cluster, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

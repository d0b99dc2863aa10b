package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// GetLocations lists every location.
func (c *Client) GetLocations(ctx context.Context) ([]model.Location, error) {
	var out []model.Location
	err := c.do(ctx, call{op: "GET /v1/locations", method: "GET", path: "/v1/locations", out: &out})
	return out, err
}

// GetLocation returns one location with its parent and children.
func (c *Client) GetLocation(ctx context.Context, id string) (model.Location, error) {
	var out model.Location
	err := c.do(ctx, call{op: "GET /v1/locations/{id}", method: "GET", path: idPath("/v1/locations", id), out: &out})
	return out, err
}

// GetLocationsTree returns the location hierarchy, optionally with items as
// leaves. A null body is returned as an empty tree.
func (c *Client) GetLocationsTree(ctx context.Context, withItems bool) ([]model.TreeNode, error) {
	var out []model.TreeNode
	q := url.Values{"withItems": {strconv.FormatBool(withItems)}}
	if err := c.do(ctx, call{op: "GET /v1/locations/tree", method: "GET", path: "/v1/locations/tree", query: q, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.TreeNode{}
	}
	return out, nil
}

// CreateLocation creates a location; a nil ParentID makes it a root.
func (c *Client) CreateLocation(ctx context.Context, in model.LocationCreate) (model.LocationSummary, error) {
	const op = "POST /v1/locations"
	var out model.LocationSummary
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "POST", path: "/v1/locations", body: in, out: &out})
	return out, err
}

// UpdateLocation replaces a location's name, description and parent.
func (c *Client) UpdateLocation(ctx context.Context, id string, in model.LocationCreate) (model.Location, error) {
	const op = "PUT /v1/locations/{id}"
	var out model.Location
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "PUT", path: idPath("/v1/locations", id), body: in, out: &out})
	return out, err
}

// DeleteLocation removes a location.
func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "DELETE /v1/locations/{id}", method: "DELETE", path: idPath("/v1/locations", id)})
}

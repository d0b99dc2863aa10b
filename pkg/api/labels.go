package api

import (
	"context"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// GetLabels lists every label.
func (c *Client) GetLabels(ctx context.Context) ([]model.Label, error) {
	var out []model.Label
	err := c.do(ctx, call{op: "GET /v1/labels", method: "GET", path: "/v1/labels", out: &out})
	return out, err
}

// GetLabel returns one label.
func (c *Client) GetLabel(ctx context.Context, id string) (model.Label, error) {
	var out model.Label
	err := c.do(ctx, call{op: "GET /v1/labels/{id}", method: "GET", path: idPath("/v1/labels", id), out: &out})
	return out, err
}

// CreateLabel creates a label.
func (c *Client) CreateLabel(ctx context.Context, in model.LabelCreate) (model.Label, error) {
	const op = "POST /v1/labels"
	var out model.Label
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "POST", path: "/v1/labels", body: in, out: &out})
	return out, err
}

// UpdateLabel replaces a label.
func (c *Client) UpdateLabel(ctx context.Context, id string, in model.LabelCreate) (model.Label, error) {
	const op = "PUT /v1/labels/{id}"
	var out model.Label
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "PUT", path: idPath("/v1/labels", id), body: in, out: &out})
	return out, err
}

// DeleteLabel removes a label.
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "DELETE /v1/labels/{id}", method: "DELETE", path: idPath("/v1/labels", id)})
}

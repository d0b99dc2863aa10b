package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// itemsPageSize is the page size used when walking every page of a listing.
const itemsPageSize = 100

func itemValues(q model.ItemQuery) url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Q); s != "" {
		v.Set("q", s)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	for _, id := range q.Labels {
		v.Add("labels", id)
	}
	for _, id := range q.Locations {
		v.Add("locations", id)
	}
	return v
}

// GetItems returns one page of items.
func (c *Client) GetItems(ctx context.Context, q model.ItemQuery) (model.PaginationResult[model.ItemSummary], error) {
	var page model.PaginationResult[model.ItemSummary]
	err := c.do(ctx, call{op: "GET /v1/items", method: "GET", path: "/v1/items", query: itemValues(q), out: &page})
	return page, err
}

// AllItems walks every page of q and returns the concatenated items.
// q.Page and q.PageSize are ignored.
func (c *Client) AllItems(ctx context.Context, q model.ItemQuery) ([]model.ItemSummary, error) {
	var all []model.ItemSummary
	q.PageSize = itemsPageSize
	for q.Page = 1; ; q.Page++ {
		page, err := c.GetItems(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || len(all) >= page.Total || q.Page >= page.TotalPages(itemsPageSize) {
			return all, nil
		}
	}
}

// GetItem returns one item.
func (c *Client) GetItem(ctx context.Context, id string) (model.Item, error) {
	var item model.Item
	err := c.do(ctx, call{op: "GET /v1/items/{id}", method: "GET", path: idPath("/v1/items", id), out: &item})
	return item, err
}

// CreateItem creates an item.
func (c *Client) CreateItem(ctx context.Context, in model.ItemCreate) (model.ItemSummary, error) {
	const op = "POST /v1/items"
	var out model.ItemSummary
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "POST", path: "/v1/items", body: in, out: &out})
	return out, err
}

// UpdateItem replaces an item.
func (c *Client) UpdateItem(ctx context.Context, id string, in model.ItemUpdate) (model.Item, error) {
	const op = "PUT /v1/items/{id}"
	var out model.Item
	if in.ID == "" {
		in.ID = id
	}
	if err := in.Validate(); err != nil {
		return out, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "PUT", path: idPath("/v1/items", id), body: in, out: &out})
	return out, err
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, call{op: "DELETE /v1/items/{id}", method: "DELETE", path: idPath("/v1/items", id)})
}

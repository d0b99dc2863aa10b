// Package model defines the inventory types exchanged with the backend.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRequired is returned by Validate when a mandatory field is blank.
var ErrRequired = errors.New("required field is empty")

// Label is a free-form tag attached to items.
type Label struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LabelCreate is the payload for creating or updating a label.
type LabelCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Validate checks required fields before submission.
func (l LabelCreate) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("label name: %w", ErrRequired)
	}
	return nil
}

// LocationSummary is the short form of a location embedded in other payloads.
type LocationSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Location is a storage place. Locations nest through Parent/Children.
type Location struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Parent      *LocationSummary  `json:"parent,omitempty"`
	Children    []LocationSummary `json:"children,omitempty"`
}

// LocationCreate is the payload for creating or updating a location.
// A nil ParentID creates a root location.
type LocationCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ParentID    *string `json:"parentId"`
}

// Validate checks required fields before submission.
func (l LocationCreate) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("location name: %w", ErrRequired)
	}
	return nil
}

// ItemSummary is the row shape returned by the item listing.
type ItemSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Quantity      int              `json:"quantity"`
	AssetID       string           `json:"assetId"`
	PurchasePrice float64          `json:"purchasePrice"`
	Location      *LocationSummary `json:"location,omitempty"`
	Labels        []Label          `json:"labels"`
	ImageID       string           `json:"imageId,omitempty"`
	ThumbnailID   string           `json:"thumbnailId,omitempty"`
	Archived      bool             `json:"archived"`
	Insured       bool             `json:"insured"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Item is the full item record.
type Item struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Quantity        int              `json:"quantity"`
	AssetID         string           `json:"assetId"`
	PurchasePrice   float64          `json:"purchasePrice"`
	PurchaseTime    *time.Time       `json:"purchaseTime,omitempty"`
	Location        *Location        `json:"location,omitempty"`
	Labels          []Label          `json:"labels"`
	ImageID         string           `json:"imageId,omitempty"`
	ThumbnailID     string           `json:"thumbnailId,omitempty"`
	Archived        bool             `json:"archived"`
	Insured         bool             `json:"insured"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Manufacturer    string           `json:"manufacturer,omitempty"`
	ModelNumber     string           `json:"modelNumber,omitempty"`
	SerialNumber    string           `json:"serialNumber,omitempty"`
	WarrantyExpires *time.Time       `json:"warrantyExpires,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Fields          []ItemField      `json:"fields,omitempty"`
	Attachments     []ItemAttachment `json:"attachments,omitempty"`
}

// ItemAttachment references a file stored alongside an item.
type ItemAttachment struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldType is the value type of a custom item field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldTime    FieldType = "time"
)

// ItemField is a user-defined key/value on an item.
type ItemField struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	TextValue    string    `json:"textValue,omitempty"`
	NumberValue  float64   `json:"numberValue,omitempty"`
	BooleanValue bool      `json:"booleanValue,omitempty"`
}

// ItemCreate is the payload for creating an item.
type ItemCreate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    int      `json:"quantity,omitempty"`
	LocationID  string   `json:"locationId,omitempty"`
	LabelIDs    []string `json:"labelIds,omitempty"`
	ParentID    *string  `json:"parentId,omitempty"`
}

// Validate checks required fields before submission.
func (c ItemCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("item name: %w", ErrRequired)
	}
	if c.Quantity < 0 {
		return fmt.Errorf("item quantity %d: must not be negative", c.Quantity)
	}
	return nil
}

// ItemUpdate is the full-replace payload for PUT /v1/items/{id}.
type ItemUpdate struct {
	ItemCreate
	ID               string      `json:"id"`
	AssetID          string      `json:"assetId,omitempty"`
	PurchasePrice    float64     `json:"purchasePrice,omitempty"`
	PurchaseTime     *time.Time  `json:"purchaseTime,omitempty"`
	PurchaseFrom     string      `json:"purchaseFrom,omitempty"`
	Manufacturer     string      `json:"manufacturer,omitempty"`
	ModelNumber      string      `json:"modelNumber,omitempty"`
	SerialNumber     string      `json:"serialNumber,omitempty"`
	Insured          bool        `json:"insured,omitempty"`
	LifetimeWarranty bool        `json:"lifetimeWarranty,omitempty"`
	WarrantyExpires  *time.Time  `json:"warrantyExpires,omitempty"`
	WarrantyDetails  string      `json:"warrantyDetails,omitempty"`
	SoldTime         *time.Time  `json:"soldTime,omitempty"`
	SoldPrice        float64     `json:"soldPrice,omitempty"`
	SoldTo           string      `json:"soldTo,omitempty"`
	SoldNotes        string      `json:"soldNotes,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Archived         bool        `json:"archived,omitempty"`
	Fields           []ItemField `json:"fields,omitempty"`
}

// Validate checks required fields before submission.
func (u ItemUpdate) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("item id: %w", ErrRequired)
	}
	return u.ItemCreate.Validate()
}

// ItemQuery holds the listing parameters for GET /v1/items.
type ItemQuery struct {
	Q         string
	Page      int
	PageSize  int
	Labels    []string
	Locations []string
}

// Key returns a stable cache key for the query.
func (q ItemQuery) Key() string {
	return fmt.Sprintf("items?q=%s&page=%d&size=%d&labels=%s&locations=%s",
		strings.TrimSpace(q.Q), q.Page, q.PageSize,
		strings.Join(q.Labels, ","), strings.Join(q.Locations, ","))
}

// PaginationResult wraps one page of a listing.
type PaginationResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// TotalPages returns the number of pages for the given page size (minimum 1).
func (p PaginationResult[T]) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		pageSize = p.PageSize
	}
	if pageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + pageSize - 1) / pageSize
}

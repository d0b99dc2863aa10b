package export

import (
	"time"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// Snapshot is everything a snapshot file holds: the location tree (with
// items as leaves), the flat location and item listings, and the labels.
type Snapshot struct {
	Tree      []model.TreeNode
	Locations []model.Location
	Items     []model.ItemSummary
	Labels    []model.Label
	TakenAt   time.Time
	Source    string // backend URL the snapshot was taken from
}

// ExportMeta describes a written snapshot. It is stored as key/value rows
// in the export_meta table.
type ExportMeta struct {
	SchemaVersion int       `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Source        string    `json:"source,omitempty"`
	LocationCount int       `json:"location_count"`
	ItemCount     int       `json:"item_count"`
	LabelCount    int       `json:"label_count"`
	TreeNodes     int       `json:"tree_nodes"`
	Title         string    `json:"title,omitempty"`
}

// SQLiteExportConfig configures the SQLite export process.
type SQLiteExportConfig struct {
	// Title is stored in export_meta when set.
	Title string

	// PageSize is the SQLite page size applied before VACUUM.
	PageSize int

	// FullText builds the items_fts index. Exports still succeed when the
	// SQLite build lacks FTS5.
	FullText bool
}

// DefaultSQLiteExportConfig returns the defaults used by `stk export`.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{
		PageSize: 4096,
		FullText: true,
	}
}

// LocationOverview is one row of location_overview_mv.
type LocationOverview struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ParentID   string  `json:"parent_id,omitempty"`
	Depth      int     `json:"depth"`
	ItemCount  int     `json:"item_count"`
	TotalValue float64 `json:"total_value"`
}

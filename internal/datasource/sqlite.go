package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/stockpile/pkg/export"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// SQLiteReader provides read access to a snapshot file
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a snapshot for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSnapshot {
		return nil, fmt.Errorf("source is not a snapshot: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Fail early on files that are not SQLite at all.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	_, _ = db.Exec("PRAGMA temp_store = MEMORY")

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CountNodes returns the number of rows in tree_nodes. It fails when the
// file is not a snapshot.
func (r *SQLiteReader) CountNodes() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tree_nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("not a snapshot: %w", err)
	}
	return n, nil
}

// Meta returns the snapshot metadata.
func (r *SQLiteReader) Meta() (export.ExportMeta, error) {
	return export.ReadMeta(r.db)
}

// Overview returns the per-location item counts and values.
func (r *SQLiteReader) Overview() ([]export.LocationOverview, error) {
	return export.ReadOverview(r.db)
}

// LoadTree rebuilds the location tree. Item leaves are dropped unless
// withItems is set. Children of kept nodes are never nil.
func (r *SQLiteReader) LoadTree(withItems bool) ([]model.TreeNode, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(parent_id, ''), kind, name
		FROM tree_nodes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query tree_nodes: %w", err)
	}
	defer rows.Close()

	type flat struct {
		node   model.TreeNode
		parent string
	}
	var all []flat
	for rows.Next() {
		var f flat
		var kind string
		if err := rows.Scan(&f.node.ID, &f.parent, &kind, &f.node.Name); err != nil {
			return nil, fmt.Errorf("scan tree node: %w", err)
		}
		f.node.Kind = model.NodeKind(kind)
		if f.node.Kind == model.KindItem && !withItems {
			continue
		}
		all = append(all, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive in pre-order, so every parent precedes its children.
	children := make(map[string][]int)
	var roots []int
	for i, f := range all {
		if f.parent == "" {
			roots = append(roots, i)
			continue
		}
		children[f.parent] = append(children[f.parent], i)
	}
	var build func(idx []int) []model.TreeNode
	build = func(idx []int) []model.TreeNode {
		out := make([]model.TreeNode, 0, len(idx))
		for _, i := range idx {
			n := all[i].node
			n.Children = build(children[n.ID])
			out = append(out, n)
		}
		return out
	}
	return build(roots), nil
}

// LoadItems returns the items stored in locationID ("" for all).
func (r *SQLiteReader) LoadItems(locationID string) ([]model.ItemSummary, error) {
	query := `
		SELECT i.id, i.name, COALESCE(i.description, ''), i.quantity, COALESCE(i.asset_id, ''),
			i.purchase_price, COALESCE(i.location_id, ''), COALESCE(l.name, ''), i.archived, i.insured
		FROM items i
		LEFT JOIN locations l ON l.id = i.location_id
	`
	var args []any
	if locationID != "" {
		query += ` WHERE i.location_id = ?`
		args = append(args, locationID)
	}
	query += ` ORDER BY i.name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []model.ItemSummary
	for rows.Next() {
		var it model.ItemSummary
		var locID, locName string
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.AssetID,
			&it.PurchasePrice, &locID, &locName, &it.Archived, &it.Insured); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if locID != "" {
			it.Location = &model.LocationSummary{ID: locID, Name: locName}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

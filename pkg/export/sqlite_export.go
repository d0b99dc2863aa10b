// Package export writes inventory snapshots to SQLite.
//
// A snapshot is a single self-contained file: the location tree, every
// location, item, and label, plus an FTS5 index over items and a per-location
// overview table. `stk tree --snapshot` and the offline datasource read it
// back.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"

	_ "modernc.org/sqlite"
)

// Fetcher is the part of the API client a snapshot needs.
type Fetcher interface {
	GetLocationsTree(ctx context.Context, withItems bool) ([]model.TreeNode, error)
	GetLocations(ctx context.Context) ([]model.Location, error)
	AllItems(ctx context.Context, q model.ItemQuery) ([]model.ItemSummary, error)
	GetLabels(ctx context.Context) ([]model.Label, error)
}

// Collect fetches everything a snapshot needs. The four listings are
// fetched concurrently; the first failure cancels the rest.
func Collect(ctx context.Context, f Fetcher) (Snapshot, error) {
	defer func(start time.Time) { debug.LogTiming("export.Collect", time.Since(start)) }(time.Now())

	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		nodes, err := f.GetLocationsTree(ctx, true)
		if err != nil {
			return fmt.Errorf("fetch tree: %w", err)
		}
		snap.Tree = nodes
		return nil
	})
	g.Go(func() error {
		locs, err := f.GetLocations(ctx)
		if err != nil {
			return fmt.Errorf("fetch locations: %w", err)
		}
		snap.Locations = locs
		return nil
	})
	g.Go(func() error {
		items, err := f.AllItems(ctx, model.ItemQuery{})
		if err != nil {
			return fmt.Errorf("fetch items: %w", err)
		}
		snap.Items = items
		return nil
	})
	g.Go(func() error {
		labels, err := f.GetLabels(ctx)
		if err != nil {
			return fmt.Errorf("fetch labels: %w", err)
		}
		snap.Labels = labels
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.TakenAt = time.Now().UTC()
	return snap, nil
}

// SQLiteExporter writes a Snapshot to a SQLite file.
type SQLiteExporter struct {
	Snapshot Snapshot
	Config   SQLiteExportConfig
}

// NewSQLiteExporter creates an exporter with the default config.
func NewSQLiteExporter(snap Snapshot) *SQLiteExporter {
	return &SQLiteExporter{
		Snapshot: snap,
		Config:   DefaultSQLiteExportConfig(),
	}
}

// Export writes the snapshot to dbPath, replacing any existing file.
func (e *SQLiteExporter) Export(dbPath string) error {
	defer func(start time.Time) { debug.LogTiming("export.Export", time.Since(start)) }(time.Now())

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	parents := e.treeParents()
	if err := e.insertLocations(db, parents); err != nil {
		return fmt.Errorf("insert locations: %w", err)
	}
	if err := e.insertLabels(db); err != nil {
		return fmt.Errorf("insert labels: %w", err)
	}
	if err := e.insertItems(db); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	if err := e.insertTree(db); err != nil {
		return fmt.Errorf("insert tree: %w", err)
	}

	if e.Config.FullText {
		if err := CreateFTSIndex(db); err != nil {
			debug.Log("export: FTS5 not available: %v", err)
		}
	}
	if err := CreateMaterializedViews(db); err != nil {
		return fmt.Errorf("create materialized views: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

// treeParents maps each location id in the tree to its parent location id.
func (e *SQLiteExporter) treeParents() map[string]string {
	parents := make(map[string]string)
	var walk func(ns []model.TreeNode, parent string)
	walk = func(ns []model.TreeNode, parent string) {
		for i := range ns {
			if ns[i].IsLocation() {
				parents[ns[i].ID] = parent
			}
			walk(ns[i].Children, ns[i].ID)
		}
	}
	walk(e.Snapshot.Tree, "")
	return parents
}

func (e *SQLiteExporter) insertLocations(db *sql.DB, parents map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO locations (id, name, description, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, loc := range e.Snapshot.Locations {
		parent, ok := parents[loc.ID]
		if !ok && loc.Parent != nil {
			parent = loc.Parent.ID
		}
		_, err := stmt.Exec(
			loc.ID,
			loc.Name,
			loc.Description,
			nullable(parent),
			loc.CreatedAt.Format(time.RFC3339),
			loc.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert location %s: %w", loc.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertLabels(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO labels (id, name, description, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range e.Snapshot.Labels {
		if _, err := stmt.Exec(l.ID, l.Name, l.Description, l.Color, l.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert label %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertItems(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO items (id, name, description, quantity, asset_id, purchase_price,
			location_id, archived, insured, labels, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	linkStmt, err := tx.Prepare(`INSERT OR IGNORE INTO item_labels (item_id, label_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer linkStmt.Close()

	for _, it := range e.Snapshot.Items {
		names := make([]string, 0, len(it.Labels))
		for _, l := range it.Labels {
			names = append(names, l.Name)
		}
		labelsJSON, err := json.Marshal(names)
		if err != nil {
			return fmt.Errorf("encode labels for %s: %w", it.ID, err)
		}
		var locID string
		if it.Location != nil {
			locID = it.Location.ID
		}
		_, err = stmt.Exec(
			it.ID,
			it.Name,
			it.Description,
			it.Quantity,
			it.AssetID,
			it.PurchasePrice,
			nullable(locID),
			boolInt(it.Archived),
			boolInt(it.Insured),
			string(labelsJSON),
			it.CreatedAt.Format(time.RFC3339),
			it.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
		for _, l := range it.Labels {
			if _, err := linkStmt.Exec(it.ID, l.ID); err != nil {
				return fmt.Errorf("link item %s to label %s: %w", it.ID, l.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertTree(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tree_nodes (id, parent_id, kind, name, depth, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	pos := 0
	var walk func(ns []model.TreeNode, parent string, depth int) error
	walk = func(ns []model.TreeNode, parent string, depth int) error {
		for i := range ns {
			n := &ns[i]
			if _, err := stmt.Exec(n.ID, nullable(parent), string(n.Kind), n.Name, depth, pos); err != nil {
				return fmt.Errorf("insert node %s: %w", n.ID, err)
			}
			pos++
			if err := walk(n.Children, n.ID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(e.Snapshot.Tree, "", 0); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	generated := e.Snapshot.TakenAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"generated_at":   generated.Format(time.RFC3339),
		"location_count": strconv.Itoa(len(e.Snapshot.Locations)),
		"item_count":     strconv.Itoa(len(e.Snapshot.Items)),
		"label_count":    strconv.Itoa(len(e.Snapshot.Labels)),
		"tree_nodes":     strconv.Itoa(countNodes(e.Snapshot.Tree)),
	}
	if e.Snapshot.Source != "" {
		meta["source"] = e.Snapshot.Source
	}
	if e.Config.Title != "" {
		meta["title"] = e.Config.Title
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

// ReadMeta loads the export_meta table of an open snapshot.
func ReadMeta(db *sql.DB) (ExportMeta, error) {
	rows, err := db.Query(`SELECT key, value FROM export_meta`)
	if err != nil {
		return ExportMeta{}, fmt.Errorf("query export_meta: %w", err)
	}
	defer rows.Close()

	var m ExportMeta
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return ExportMeta{}, err
		}
		v := value.String
		switch key {
		case "schema_version":
			m.SchemaVersion, _ = strconv.Atoi(v)
		case "generated_at":
			m.GeneratedAt, _ = time.Parse(time.RFC3339, v)
		case "source":
			m.Source = v
		case "title":
			m.Title = v
		case "location_count":
			m.LocationCount, _ = strconv.Atoi(v)
		case "item_count":
			m.ItemCount, _ = strconv.Atoi(v)
		case "label_count":
			m.LabelCount, _ = strconv.Atoi(v)
		case "tree_nodes":
			m.TreeNodes, _ = strconv.Atoi(v)
		}
	}
	return m, rows.Err()
}

// ReadOverview loads location_overview_mv ordered by depth then name.
func ReadOverview(db *sql.DB) ([]LocationOverview, error) {
	rows, err := db.Query(`
		SELECT id, name, COALESCE(parent_id, ''), depth, item_count, total_value
		FROM location_overview_mv
		ORDER BY depth, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query location_overview_mv: %w", err)
	}
	defer rows.Close()

	var out []LocationOverview
	for rows.Next() {
		var o LocationOverview
		if err := rows.Scan(&o.ID, &o.Name, &o.ParentID, &o.Depth, &o.ItemCount, &o.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func countNodes(ns []model.TreeNode) int {
	n := 0
	for i := range ns {
		n += 1 + countNodes(ns[i].Children)
	}
	return n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

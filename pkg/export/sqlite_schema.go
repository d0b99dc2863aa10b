package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever a table changes shape.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createTreeTable(db); err != nil {
		return fmt.Errorf("create tree table: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

func createCoreTables(db *sql.DB) error {
	tables := []struct {
		name string
		sql  string
	}{
		{"locations", `
			CREATE TABLE IF NOT EXISTS locations (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				parent_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`},
		{"labels", `
			CREATE TABLE IF NOT EXISTS labels (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				color TEXT,
				created_at TEXT NOT NULL
			)`},
		{"items", `
			CREATE TABLE IF NOT EXISTS items (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT,
				quantity INTEGER NOT NULL DEFAULT 0,
				asset_id TEXT,
				purchase_price REAL NOT NULL DEFAULT 0,
				location_id TEXT,
				archived INTEGER NOT NULL DEFAULT 0,
				insured INTEGER NOT NULL DEFAULT 0,
				labels TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				FOREIGN KEY (location_id) REFERENCES locations(id)
			)`},
		{"item_labels", `
			CREATE TABLE IF NOT EXISTS item_labels (
				item_id TEXT NOT NULL,
				label_id TEXT NOT NULL,
				PRIMARY KEY (item_id, label_id),
				FOREIGN KEY (item_id) REFERENCES items(id),
				FOREIGN KEY (label_id) REFERENCES labels(id)
			)`},
	}
	for _, tbl := range tables {
		if _, err := db.Exec(tbl.sql); err != nil {
			return fmt.Errorf("create %s table: %w", tbl.name, err)
		}
	}
	return nil
}

// createTreeTable stores the tree in pre-order: position orders siblings and
// parents before their children, so a single ordered scan rebuilds it.
func createTreeTable(db *sql.DB) error {
	treeSQL := `
		CREATE TABLE IF NOT EXISTS tree_nodes (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			depth INTEGER NOT NULL,
			position INTEGER NOT NULL UNIQUE
		)
	`
	if _, err := db.Exec(treeSQL); err != nil {
		return fmt.Errorf("create tree_nodes table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_locations_parent ON locations(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_location ON items(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_updated ON items(updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_item_labels_label ON item_labels(label_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tree_parent ON tree_nodes(parent_id, position)`,
	}
	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}
	return nil
}

// CreateFTSIndex creates and fills the items_fts virtual table.
// Call it after items are inserted.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			id,
			name,
			description,
			labels,
			content='items',
			content_rowid='rowid',
			tokenize='porter unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO items_fts(items_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}
	return nil
}

// CreateMaterializedViews builds location_overview_mv: per location, the
// number of items stored directly in it and their summed value
// (quantity times purchase price). Call it after all data is inserted.
func CreateMaterializedViews(db *sql.DB) error {
	overviewSQL := `
		CREATE TABLE IF NOT EXISTS location_overview_mv AS
		SELECT
			l.id,
			l.name,
			l.parent_id,
			COALESCE(t.depth, 0) AS depth,
			(SELECT COUNT(*) FROM items i WHERE i.location_id = l.id) AS item_count,
			(SELECT COALESCE(SUM(i.quantity * i.purchase_price), 0) FROM items i WHERE i.location_id = l.id) AS total_value
		FROM locations l
		LEFT JOIN tree_nodes t ON t.id = l.id
	`
	if _, err := db.Exec(overviewSQL); err != nil {
		return fmt.Errorf("create location_overview_mv: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_mv_parent ON location_overview_mv(parent_id)`); err != nil {
		return fmt.Errorf("create mv index: %w", err)
	}
	return nil
}

// OptimizeDatabase compacts the file. Call it as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 4096
	}
	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, sql := range optimizations {
		// Some pragmas fail depending on state; none of them are required.
		_, _ = db.Exec(sql)
	}
	_, _ = db.Exec(`INSERT INTO items_fts(items_fts) VALUES('optimize')`)

	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

package export

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/testutil"

	_ "modernc.org/sqlite"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }
func (s staticToken) Clear() error  { return nil }

// seededClient returns a client for a fake backend holding:
//
//	Garage
//	├── Shelf 1   (Drill x1 @ 120, Saw x2 @ 15.5)
//	└── Tools
func seededClient(t *testing.T) (*api.Client, *testutil.FakeServer) {
	t.Helper()
	srv := testutil.NewFakeServer(t)
	srv.AddUser("ada@example.com", "secret", "Ada")
	tok := srv.IssueToken("ada@example.com")

	power := srv.AddLabel("power")
	garage := srv.AddLocation("Garage", "")
	shelf := srv.AddLocation("Shelf 1", garage.ID)
	srv.AddLocation("Tools", garage.ID)
	srv.AddItem("Drill", shelf.ID, 1, 120, power.ID)
	srv.AddItem("Saw", shelf.ID, 2, 15.5)

	c, err := api.NewClient(srv.URL(), api.WithHTTPClient(srv.Client()), api.WithCredentials(staticToken(tok)))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestCollectFetchesEverything(t *testing.T) {
	c, _ := seededClient(t)
	snap, err := Collect(context.Background(), c)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(snap.Locations) != 3 {
		t.Errorf("locations = %d, want 3", len(snap.Locations))
	}
	if len(snap.Items) != 2 {
		t.Errorf("items = %d, want 2", len(snap.Items))
	}
	if len(snap.Labels) != 1 {
		t.Errorf("labels = %d, want 1", len(snap.Labels))
	}
	if len(snap.Tree) != 1 || snap.Tree[0].Name != "Garage" {
		t.Fatalf("unexpected tree roots: %+v", snap.Tree)
	}
	if snap.TakenAt.IsZero() {
		t.Error("TakenAt not set")
	}
}

func TestCollectFailsFast(t *testing.T) {
	c, srv := seededClient(t)
	srv.FailNext("GET /v1/labels", http.StatusInternalServerError)
	_, err := Collect(context.Background(), c)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, api.ErrServer) {
		t.Errorf("expected server error, got %v", err)
	}
}

func exportSnapshot(t *testing.T, snap Snapshot) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", "inventory.sqlite3")
	exp := NewSQLiteExporter(snap)
	exp.Config.Title = "Home"
	if err := exp.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExportWritesTables(t *testing.T) {
	c, _ := seededClient(t)
	snap, err := Collect(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	snap.Source = c.BaseURL()
	db := exportSnapshot(t, snap)

	counts := map[string]int{
		"locations":   3,
		"items":       2,
		"labels":      1,
		"item_labels": 1,
		"tree_nodes":  5,
	}
	for table, want := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s rows = %d, want %d", table, got, want)
		}
	}

	var parent sql.NullString
	if err := db.QueryRow(`SELECT parent_id FROM locations WHERE name = 'Shelf 1'`).Scan(&parent); err != nil {
		t.Fatal(err)
	}
	var garageID string
	if err := db.QueryRow(`SELECT id FROM locations WHERE name = 'Garage'`).Scan(&garageID); err != nil {
		t.Fatal(err)
	}
	if !parent.Valid || parent.String != garageID {
		t.Errorf("Shelf 1 parent = %v, want %s", parent, garageID)
	}

	meta, err := ReadMeta(db)
	if err != nil {
		t.Fatal(err)
	}
	if meta.SchemaVersion != SchemaVersion || meta.ItemCount != 2 || meta.TreeNodes != 5 {
		t.Errorf("unexpected meta %+v", meta)
	}
	if meta.Title != "Home" || meta.Source != c.BaseURL() {
		t.Errorf("title/source not stored: %+v", meta)
	}
}

func TestExportOverviewTotals(t *testing.T) {
	c, _ := seededClient(t)
	snap, err := Collect(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	db := exportSnapshot(t, snap)

	rows, err := ReadOverview(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("overview rows = %d, want 3", len(rows))
	}
	if rows[0].Name != "Garage" || rows[0].Depth != 0 {
		t.Errorf("first row should be the root: %+v", rows[0])
	}
	for _, r := range rows {
		if r.Name != "Shelf 1" {
			continue
		}
		if r.ItemCount != 2 || r.TotalValue != 151 {
			t.Errorf("Shelf 1 overview = %+v, want 2 items worth 151", r)
		}
	}
}

func TestExportReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.sqlite3")
	first := Snapshot{Tree: testutil.GarageTree(), TakenAt: time.Now()}
	if err := NewSQLiteExporter(first).Export(path); err != nil {
		t.Fatal(err)
	}
	second := Snapshot{Tree: []model.TreeNode{{ID: "x", Name: "Attic", Kind: model.KindLocation}}}
	if err := NewSQLiteExporter(second).Export(path); err != nil {
		t.Fatalf("second export: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tree_nodes`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("tree_nodes = %d, want 1 after overwrite", n)
	}
}

func TestExportTreePositionsArePreOrder(t *testing.T) {
	db := exportSnapshot(t, Snapshot{Tree: testutil.GarageTree()})
	rows, err := db.Query(`SELECT id, depth FROM tree_nodes ORDER BY position`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var id string
		var depth int
		if err := rows.Scan(&id, &depth); err != nil {
			t.Fatal(err)
		}
		got = append(got, id)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %s, want %s", i, got[i], want[i])
		}
	}
}

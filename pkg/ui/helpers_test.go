package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/testutil"
	"github.com/vanderheijden86/stockpile/pkg/tree"
)

func TestTruncateRunesHelper(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "Garage", 10, "Garage"},
		{"exact", "Garage", 6, "Garage"},
		{"cut", "Garage shelf", 8, "Garage …"},
		{"zero", "Garage", 0, ""},
		{"wide runes", "工具箱工具箱", 7, "工具箱…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if runewidth.StringWidth(got) > tt.width {
				t.Errorf("truncate(%q, %d) is %d cells wide", tt.in, tt.width, runewidth.StringWidth(got))
			}
		})
	}
}

func TestFitPadsAndTruncates(t *testing.T) {
	if got := fit("ab", 5); got != "ab   " {
		t.Errorf("fit pad = %q", got)
	}
	if got := fit("abcdefgh", 5); runewidth.StringWidth(got) != 5 {
		t.Errorf("fit truncate width = %d", runewidth.StringWidth(got))
	}
}

func TestFormatPrice(t *testing.T) {
	tests := map[float64]string{
		0:      "$0.00",
		12.5:   "$12.50",
		1999.9: "$1999.90",
	}
	for in, want := range tests {
		if got := FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(nil); got != "—" {
		t.Errorf("FormatDate(nil) = %q", got)
	}
	zero := time.Time{}
	if got := FormatDate(&zero); got != "—" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	d := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	if got := FormatDate(&d); got != "Mar 9, 2024" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "unknown"},
		{now.Add(time.Hour), "now"},
		{now.Add(-10 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-2 * 24 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeRel(tt.at); got != tt.want {
			t.Errorf("FormatTimeRel(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestTotalValue(t *testing.T) {
	items := []model.ItemSummary{
		{Name: "Drill", Quantity: 1, PurchasePrice: 89.99},
		{Name: "Screws", Quantity: 4, PurchasePrice: 2.5},
		{Name: "Tape", Quantity: 0, PurchasePrice: 3}, // counts once
	}
	got := TotalValue(items)
	if got < 102.98 || got > 103.0 {
		t.Errorf("TotalValue = %v, want 102.99", got)
	}
	if TotalValue(nil) != 0 {
		t.Error("TotalValue(nil) should be 0")
	}
}

func outlineFixture() []model.TreeNode {
	return []model.TreeNode{
		{ID: "h", Name: "House", Kind: model.KindLocation, Children: []model.TreeNode{
			{ID: "a", Name: "Garage", Kind: model.KindLocation, Children: []model.TreeNode{
				{ID: "b", Name: "Shelf 1", Kind: model.KindLocation},
				{ID: "c", Name: "Tools", Kind: model.KindLocation},
			}},
			{ID: "k", Name: "Kitchen", Kind: model.KindLocation},
		}},
		{ID: "s", Name: "Shed", Kind: model.KindLocation},
	}
}

func TestGuidesOutline(t *testing.T) {
	nodes := outlineFixture()
	exp := tree.NewExpansion()
	exp.ExpandAll(nodes)
	rows := tree.Rows(nodes, exp, nil)
	guides := tree.Guides(rows)

	var sb strings.Builder
	for i, r := range rows {
		sb.WriteString(guides[i])
		sb.WriteString(r.Node.Name)
		sb.WriteString("\n")
	}
	testutil.NewGoldenFile(t, "testdata/golden", "tree_outline.golden").Assert(sb.String())
}

func TestGuidesCollapsedChild(t *testing.T) {
	nodes := outlineFixture()
	exp := tree.NewExpansion("h")
	rows := tree.Rows(nodes, exp, nil)
	guides := tree.Guides(rows)

	want := []string{"", "├── ", "└── ", ""}
	if len(guides) != len(want) {
		t.Fatalf("got %d rows, want %d", len(guides), len(want))
	}
	for i := range want {
		if guides[i] != want[i] {
			t.Errorf("row %d (%s): guide %q, want %q", i, rows[i].Node.Name, guides[i], want[i])
		}
	}
}

func TestExpandIndicator(t *testing.T) {
	if got := expandIndicator(tree.Row{}); got != "•" {
		t.Errorf("leaf indicator = %q", got)
	}
	if got := expandIndicator(tree.Row{HasChildren: true}); got != "▸" {
		t.Errorf("collapsed indicator = %q", got)
	}
	if got := expandIndicator(tree.Row{HasChildren: true, Expanded: true}); got != "▾" {
		t.Errorf("expanded indicator = %q", got)
	}
}

package tree

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Node.ID
	}
	return ids
}

func TestRowsFollowExpansion(t *testing.T) {
	nodes := garageTree()
	exp := NewExpansion()

	rows := Rows(nodes, exp, nil)
	if len(rows) != 1 || rows[0].Node.ID != "a" {
		t.Fatalf("collapsed tree should show only a, got %v", rowIDs(rows))
	}
	if !rows[0].HasChildren || rows[0].Expanded {
		t.Errorf("a should offer a toggle and be collapsed: %+v", rows[0])
	}

	exp.Toggle("a")
	rows = Rows(nodes, exp, nil)
	if len(rows) != 3 {
		t.Fatalf("expanded tree should show 3 rows, got %v", rowIDs(rows))
	}
	for i, want := range []struct {
		id    string
		depth int
	}{{"a", 0}, {"b", 1}, {"c", 1}} {
		if rows[i].Node.ID != want.id || rows[i].Depth != want.depth {
			t.Errorf("row %d = %s@%d, want %s@%d", i, rows[i].Node.ID, rows[i].Depth, want.id, want.depth)
		}
	}
	if rows[1].HasChildren {
		t.Error("b has an empty children list and must not offer a toggle")
	}
}

func TestRowsIgnoreExpandedLeaves(t *testing.T) {
	nodes := garageTree()
	exp := NewExpansion("a", "b", "ghost")
	if got := len(Rows(nodes, exp, nil)); got != 3 {
		t.Errorf("expanded leaves should add no rows, got %d", got)
	}
}

func TestRowsHideDescendantsOfCollapsedParent(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "a", Children: []model.TreeNode{
			{ID: "b", Children: []model.TreeNode{{ID: "d"}}},
		}},
	}
	exp := NewExpansion("b")
	if got := rowIDs(Rows(nodes, exp, nil)); len(got) != 1 {
		t.Errorf("b is open but a is not, want only a, got %v", got)
	}
}

func TestRowsMarkSelection(t *testing.T) {
	var sel Selection
	sel.Select("c")
	rows := Rows(garageTree(), NewExpansion("a"), &sel)
	for _, r := range rows {
		if r.Selected != (r.Node.ID == "c") {
			t.Errorf("row %s selected=%v", r.Node.ID, r.Selected)
		}
	}
	if rows[0].ChildCount() != 2 {
		t.Errorf("ChildCount() = %d, want 2", rows[0].ChildCount())
	}
}

func TestSelection(t *testing.T) {
	var nilSel *Selection
	if _, ok := nilSel.Selected(); ok || nilSel.IsSelected("a") {
		t.Error("nil selection should be empty")
	}

	var sel Selection
	sel.Select("a")
	if id, ok := sel.Selected(); !ok || id != "a" {
		t.Errorf("Selected() = %q, %v", id, ok)
	}
	sel.Select("b")
	if sel.IsSelected("a") || !sel.IsSelected("b") {
		t.Error("selection should move to b")
	}
	sel.Clear()
	if _, ok := sel.Selected(); ok {
		t.Error("Clear() left a selection")
	}
}

func TestClickSelectsAndToggles(t *testing.T) {
	nodes := garageTree()
	exp := NewExpansion()
	var sel Selection

	res := Click(&nodes[0], exp, &sel)
	if !res.Selected || !res.Toggled || !res.Expanded {
		t.Errorf("click on parent location = %+v", res)
	}
	if !sel.IsSelected("a") || !exp.IsExpanded("a") {
		t.Error("parent should be selected and expanded")
	}

	res = Click(&nodes[0], exp, &sel)
	if !res.Toggled || res.Expanded || !sel.IsSelected("a") {
		t.Errorf("second click should collapse and keep selection: %+v", res)
	}

	res = Click(&nodes[0].Children[0], exp, &sel)
	if !res.Selected || res.Toggled {
		t.Errorf("click on childless location = %+v", res)
	}
	if !sel.IsSelected("b") {
		t.Error("selection should move to b")
	}
}

func TestClickItemLeafChangesNothing(t *testing.T) {
	item := model.TreeNode{ID: "i", Name: "Hammer", Kind: model.KindItem}
	exp := NewExpansion()
	var sel Selection
	sel.Select("a")
	if res := Click(&item, exp, &sel); res != (ClickResult{}) {
		t.Errorf("item click = %+v", res)
	}
	if !sel.IsSelected("a") || exp.Len() != 0 {
		t.Error("item click changed state")
	}
	if res := Click(nil, exp, &sel); res != (ClickResult{}) {
		t.Errorf("nil click = %+v", res)
	}
}

func TestClickWithNilState(t *testing.T) {
	nodes := garageTree()
	var sel Selection
	res := Click(&nodes[0], nil, &sel)
	if !res.Selected || res.Toggled || res.Expanded {
		t.Errorf("click without expansion = %+v", res)
	}
	if !sel.IsSelected("a") {
		t.Error("selection should still move")
	}

	exp := NewExpansion()
	res = Click(&nodes[0], exp, nil)
	if res.Selected || !res.Toggled || !exp.IsExpanded("a") {
		t.Errorf("click without selection = %+v", res)
	}
}

func TestFindAndPath(t *testing.T) {
	nodes := garageTree()
	if n := Find(nodes, "c"); n == nil || n.Name != "Tools" {
		t.Fatalf("Find(c) = %+v", n)
	}
	if Find(nodes, "zz") != nil {
		t.Error("Find should return nil for missing id")
	}
	path := PathTo(nodes, "b")
	if len(path) != 2 || path[0].ID != "a" || path[1].ID != "b" {
		t.Errorf("PathTo(b) = %v", path)
	}
}

func TestCountAndValidate(t *testing.T) {
	nodes := garageTree()
	nodes[0].Children[1].Children = []model.TreeNode{{ID: "h", Name: "Hammer", Kind: model.KindItem}}
	if got := Count(nodes); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	if got := CountKind(nodes, model.KindItem); got != 1 {
		t.Errorf("CountKind(item) = %d, want 1", got)
	}
	if err := Validate(nodes); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	nodes[0].Children[1].Children[0].ID = "b"
	if err := Validate(nodes); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Validate() = %v, want ErrDuplicateID", err)
	}
}

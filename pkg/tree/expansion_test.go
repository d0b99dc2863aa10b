package tree

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/stockpile/pkg/model"
	"pgregory.net/rapid"
)

func TestToggleScenario(t *testing.T) {
	exp := NewExpansion()
	if !exp.Toggle("x") {
		t.Fatal("first toggle should expand")
	}
	if !exp.IsExpanded("x") {
		t.Error("x should be expanded after one toggle")
	}
	if exp.Toggle("x") {
		t.Fatal("second toggle should collapse")
	}
	if exp.IsExpanded("x") {
		t.Error("x should be collapsed after two toggles")
	}
}

func TestToggleUnknownIDIsAllowed(t *testing.T) {
	exp := NewExpansion()
	exp.Toggle("not-in-any-tree")
	if !exp.IsExpanded("not-in-any-tree") || exp.Len() != 1 {
		t.Errorf("expected unknown id to be tracked, got %v", exp.IDs())
	}
}

func TestNilExpansionIsCollapsed(t *testing.T) {
	var exp *Expansion
	if exp.IsExpanded("a") || exp.Len() != 0 || exp.IDs() != nil {
		t.Error("nil expansion should report nothing expanded")
	}
	if exp.Toggle("a") {
		t.Error("Toggle on nil expansion should report collapsed")
	}
	exp.Expand("a")
	exp.Collapse("a")
	exp.ExpandAll(garageTree())
	exp.Reset()
	exp.CollapseAll()
	if exp.IsExpanded("a") {
		t.Error("nil expansion should ignore changes")
	}
}

func TestDefaultsAndReset(t *testing.T) {
	exp := NewExpansion("a", "b")
	if !exp.IsExpanded("a") || !exp.IsExpanded("b") {
		t.Fatalf("defaults not applied: %v", exp.IDs())
	}
	exp.Collapse("a")
	exp.Expand("c")
	exp.Reset()
	if got := exp.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Reset() left %v, want [a b]", got)
	}
}

func TestCollapseAllDropsDefaults(t *testing.T) {
	exp := NewExpansion("a")
	exp.Expand("b")
	exp.CollapseAll()
	if exp.Len() != 0 {
		t.Errorf("expected empty set, got %v", exp.IDs())
	}
}

func TestExpandAllOnlyOpensParents(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "a", Children: []model.TreeNode{
			{ID: "b", Children: []model.TreeNode{{ID: "d"}}},
			{ID: "c", Children: []model.TreeNode{}},
		}},
		{ID: "e"},
	}
	exp := NewExpansion()
	exp.ExpandAll(nodes)
	if got := exp.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ExpandAll opened %v, want [a b]", got)
	}
}

func TestExpandPath(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "a", Children: []model.TreeNode{
			{ID: "b", Children: []model.TreeNode{{ID: "d"}}},
		}},
	}
	exp := NewExpansion()
	if !exp.ExpandPath(nodes, "d") {
		t.Fatal("ExpandPath should find d")
	}
	if got := exp.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ExpandPath opened %v, want [a b]", got)
	}
	if exp.ExpandPath(nodes, "missing") {
		t.Error("ExpandPath should report a missing id")
	}
}

func TestPolicyExpandRoots(t *testing.T) {
	roots := []model.TreeNode{
		{ID: "a", Children: []model.TreeNode{{ID: "b"}}},
		{ID: "c"},
	}
	exp := Policy{ExpandRoots: true, DefaultExpanded: []string{"b"}}.NewExpansion(roots)
	if got := exp.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("policy opened %v, want [a b]", got)
	}

	exp = Policy{}.NewExpansion(roots)
	if exp.Len() != 0 {
		t.Errorf("zero policy should start collapsed, got %v", exp.IDs())
	}
}

func TestPropToggleTwiceRestores(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfN(rapid.StringMatching(`[a-e]`), 0, 6).Draw(t, "open")
		exp := NewExpansion()
		for _, id := range ids {
			exp.Expand(id)
		}
		before := exp.IDs()

		id := rapid.StringMatching(`[a-g]`).Draw(t, "toggle")
		exp.Toggle(id)
		exp.Toggle(id)
		if after := exp.IDs(); !reflect.DeepEqual(before, after) {
			t.Fatalf("toggle(%s) twice changed %v to %v", id, before, after)
		}
	})
}

func TestPropToggleTouchesOnlyItsID(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfN(rapid.StringMatching(`[a-e]`), 0, 6).Draw(t, "open")
		exp := NewExpansion(ids...)
		id := rapid.StringMatching(`[a-g]`).Draw(t, "toggle")
		was := exp.IsExpanded(id)
		others := cloneExpansion(exp)
		others.Collapse(id)

		exp.Toggle(id)
		if exp.IsExpanded(id) == was {
			t.Fatalf("toggle(%s) did not flip", id)
		}
		exp.Collapse(id)
		if !reflect.DeepEqual(exp.IDs(), others.IDs()) {
			t.Fatalf("toggle(%s) touched other ids: %v vs %v", id, exp.IDs(), others.IDs())
		}
	})
}

func cloneExpansion(e *Expansion) *Expansion {
	c := &Expansion{
		defaults: append([]string(nil), e.defaults...),
		open:     make(map[string]struct{}, len(e.open)),
	}
	for id := range e.open {
		c.open[id] = struct{}{}
	}
	return c
}

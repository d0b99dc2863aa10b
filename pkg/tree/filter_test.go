package tree

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/stockpile/pkg/model"
	"pgregory.net/rapid"
)

func garageTree() []model.TreeNode {
	return []model.TreeNode{
		{ID: "a", Name: "Garage", Kind: model.KindLocation, Children: []model.TreeNode{
			{ID: "b", Name: "Shelf 1", Kind: model.KindLocation, Children: []model.TreeNode{}},
			{ID: "c", Name: "Tools", Kind: model.KindLocation, Children: []model.TreeNode{}},
		}},
	}
}

// shape renders nodes as "id(child,child)" for compact comparison.
func shape(nodes []model.TreeNode) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if len(n.Children) == 0 {
			parts = append(parts, n.ID)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", n.ID, shape(n.Children)))
	}
	return strings.Join(parts, ",")
}

func TestFilterScenarios(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"child match keeps ancestor", "tool", "a(c)"},
		{"ancestor match keeps all children", "garage", "a(b,c)"},
		{"case insensitive", "SHELF", "a(b)"},
		{"surrounding whitespace ignored", "  tools  ", "a(c)"},
		{"no match", "xyz", ""},
		{"empty query", "", "a(b,c)"},
		{"whitespace query", "   ", "a(b,c)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(garageTree(), tt.query)
			if s := shape(got); s != tt.want {
				t.Errorf("Filter(%q) = %q, want %q", tt.query, s, tt.want)
			}
		})
	}
}

func TestPruneFiltersBelowMatches(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"garage", "a"},
		{"tool", "a(c)"},
		{"e", "a(b)"},
		{"", "a(b,c)"},
	}
	for _, tt := range tests {
		if s := shape(Prune(garageTree(), tt.query)); s != tt.want {
			t.Errorf("Prune(%q) = %q, want %q", tt.query, s, tt.want)
		}
	}
}

func TestFilterNoMatchIsEmptyNotNil(t *testing.T) {
	got := Filter(garageTree(), "xyz")
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no nodes, got %d", len(got))
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if got := Filter(nil, "tool"); len(got) != 0 {
		t.Errorf("expected empty result for empty input, got %v", got)
	}
}

func TestFilterPrunesNonMatchingParentWithPrunedChildren(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "p", Name: "Pantry", Kind: model.KindLocation, Children: []model.TreeNode{
			{ID: "q", Name: "Cans", Kind: model.KindItem},
		}},
		{ID: "t", Name: "Toolbox", Kind: model.KindLocation},
	}
	got := Filter(nodes, "tool")
	if s := shape(got); s != "t" {
		t.Errorf("expected only toolbox, got %q", s)
	}
}

func TestFilterPreservesSiblingOrder(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "3", Name: "box three"},
		{ID: "1", Name: "box one"},
		{ID: "2", Name: "box two"},
	}
	if s := shape(Filter(nodes, "box")); s != "3,1,2" {
		t.Errorf("order changed: %q", s)
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	nodes := garageTree()
	got := Filter(nodes, "garage")
	got[0].Name = "changed"
	got[0].Children[0].Name = "changed"
	got[0].Children = append(got[0].Children[:0], model.TreeNode{ID: "z"})

	if nodes[0].Name != "Garage" || nodes[0].Children[0].Name != "Shelf 1" {
		t.Errorf("input mutated through result: %+v", nodes)
	}
	if shape(nodes) != "a(b,c)" {
		t.Errorf("input shape changed: %s", shape(nodes))
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	nodes := []model.TreeNode{
		{ID: "1", Name: "STRASSE Keller"},
		{ID: "2", Name: "Ölkanne"},
	}
	if s := shape(Filter(nodes, "ölk")); s != "2" {
		t.Errorf("expected unicode case-insensitive match, got %q", s)
	}
}

func TestMatchIDs(t *testing.T) {
	ids := MatchIDs(garageTree(), "tool")
	if !ids["c"] || ids["a"] || len(ids) != 1 {
		t.Errorf("expected only c to match directly, got %v", ids)
	}
	if len(MatchIDs(garageTree(), " ")) != 0 {
		t.Error("blank query should match nothing directly")
	}
}

// ── properties ──

var (
	propNames   = []string{"Garage", "Shelf 1", "Tools", "tool box", "Attic", "Kitchen", "GARAGE door", "Box", ""}
	propQueries = []string{"", "  ", "tool", "GAR", "box", "xyz", " shelf ", "e"}
)

func genTree(t *rapid.T) []model.TreeNode {
	next := 0
	var gen func(depth int) []model.TreeNode
	gen = func(depth int) []model.TreeNode {
		if depth > 3 {
			return nil
		}
		width := rapid.IntRange(0, 3).Draw(t, "width")
		var nodes []model.TreeNode
		for i := 0; i < width; i++ {
			next++
			n := model.TreeNode{
				ID:   fmt.Sprintf("n%d", next),
				Name: rapid.SampledFrom(propNames).Draw(t, "name"),
				Kind: rapid.SampledFrom([]model.NodeKind{model.KindLocation, model.KindItem}).Draw(t, "kind"),
			}
			n.Children = gen(depth + 1)
			nodes = append(nodes, n)
		}
		return nodes
	}
	return gen(0)
}

func TestPropFilterEmptyQueryIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		if got := Filter(nodes, ""); !reflect.DeepEqual(got, nodes) {
			t.Fatalf("empty query changed tree: %s -> %s", shape(nodes), shape(got))
		}
	})
}

// checkRelevant fails if a node in ns neither matches q, has a kept
// descendant, nor (when inherit is true) sits under a matching ancestor.
func checkRelevant(t *rapid.T, ns []model.TreeNode, q string, inherit bool) {
	var check func(ns []model.TreeNode, underMatch bool) bool
	check = func(ns []model.TreeNode, underMatch bool) bool {
		for _, n := range ns {
			self := Matches(n.Name, q)
			below := check(n.Children, underMatch || (inherit && self))
			if !self && !below && !underMatch {
				t.Fatalf("node %s (%q) kept without a match for %q", n.ID, n.Name, q)
			}
		}
		return len(ns) > 0
	}
	check(ns, false)
}

func TestPropFilterKeepsOnlyMatchesAncestorsAndMatchedSubtrees(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		if strings.TrimSpace(q) == "" {
			return
		}
		checkRelevant(t, Filter(nodes, q), q, true)
	})
}

func TestPropPruneKeepsOnlyMatchesAndTheirAncestors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		if strings.TrimSpace(q) == "" {
			return
		}
		checkRelevant(t, Prune(nodes, q), q, false)
	})
}

func TestPropPruneKeepsEveryDirectMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		got := Prune(nodes, q)
		for id := range MatchIDs(nodes, q) {
			if Find(got, id) == nil {
				t.Fatalf("direct match %s missing from result for %q", id, q)
			}
		}
		if once := Prune(got, q); !reflect.DeepEqual(once, got) {
			t.Fatalf("prune not idempotent for %q: %s vs %s", q, shape(got), shape(once))
		}
	})
}

func TestPropFilterKeepsEveryDirectMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		got := Filter(nodes, q)
		for id := range MatchIDs(nodes, q) {
			if Find(got, id) == nil {
				t.Fatalf("direct match %s missing from result for %q", id, q)
			}
		}
	})
}

func TestPropFilterIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		once := Filter(nodes, q)
		twice := Filter(once, q)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent for %q: %s vs %s", q, shape(once), shape(twice))
		}
	})
}

func TestPropFilterPreservesRelativeOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := genTree(t)
		q := rapid.SampledFrom(propQueries).Draw(t, "query")
		order := make(map[string]int)
		var index func([]model.TreeNode)
		index = func(ns []model.TreeNode) {
			for _, n := range ns {
				order[n.ID] = len(order)
				index(n.Children)
			}
		}
		index(nodes)

		last := -1
		var walk func([]model.TreeNode)
		walk = func(ns []model.TreeNode) {
			for _, n := range ns {
				if order[n.ID] <= last {
					t.Fatalf("node %s out of order", n.ID)
				}
				last = order[n.ID]
				walk(n.Children)
			}
		}
		walk(Filter(nodes, q))
	})
}

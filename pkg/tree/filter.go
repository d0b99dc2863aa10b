// Package tree implements the location tree search filter, the id-keyed
// expand/collapse state, and the flattening of a tree into visible rows.
//
// Everything here is pure and synchronous: the dashboard calls these
// functions from its update loop on every keystroke or fetch result.
package tree

import (
	"strings"

	"github.com/vanderheijden86/stockpile/pkg/model"
	"golang.org/x/text/cases"
)

// Filter returns the subset of nodes relevant to query.
//
// A node whose name contains the query (case-insensitive) is kept together
// with its whole subtree, so a matched location still shows what it holds.
// Children of a match are not filtered; Prune is the variant that filters
// them too.
// A node that does not match is kept only when one of its descendants
// matches, and then carries just the filtered children: the path to the
// match. Sibling order is preserved. An empty or whitespace-only query
// returns nodes as-is.
//
// The result never shares Children slices with the input.
func Filter(nodes []model.TreeNode, query string) []model.TreeNode {
	return run(nodes, query, false)
}

// Prune is Filter without subtree retention: children of a matching node
// are filtered too, so every returned node either matches or is an ancestor
// of a match. A matching node whose children all fall away is kept with no
// children.
func Prune(nodes []model.TreeNode, query string) []model.TreeNode {
	return run(nodes, query, true)
}

func run(nodes []model.TreeNode, query string, strict bool) []model.TreeNode {
	q := strings.TrimSpace(query)
	if q == "" {
		return nodes
	}
	m := newMatcher(q)
	out := m.filter(nodes, strict)
	if out == nil {
		return []model.TreeNode{}
	}
	return out
}

// Matches reports whether name contains query, ignoring case.
// A blank query matches everything.
func Matches(name, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	return newMatcher(q).match(name)
}

// MatchIDs returns the ids of nodes whose own name matches query.
// Ancestors kept only for context are not included.
func MatchIDs(nodes []model.TreeNode, query string) map[string]bool {
	ids := make(map[string]bool)
	q := strings.TrimSpace(query)
	if q == "" {
		return ids
	}
	m := newMatcher(q)
	var walk func([]model.TreeNode)
	walk = func(ns []model.TreeNode) {
		for i := range ns {
			if m.match(ns[i].Name) {
				ids[ns[i].ID] = true
			}
			walk(ns[i].Children)
		}
	}
	walk(nodes)
	return ids
}

type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(query)}
}

func (m *matcher) match(name string) bool {
	return strings.Contains(m.fold.String(name), m.needle)
}

// filter returns nil when nothing survives.
func (m *matcher) filter(nodes []model.TreeNode, strict bool) []model.TreeNode {
	var out []model.TreeNode
	for _, n := range nodes {
		matched := m.match(n.Name)
		if matched && !strict {
			out = append(out, clone(n))
			continue
		}
		children := m.filter(n.Children, strict)
		if len(children) == 0 && !matched {
			continue
		}
		kept := n
		kept.Children = children
		out = append(out, kept)
	}
	return out
}

// clone deep-copies n. A nil Children slice stays nil.
func clone(n model.TreeNode) model.TreeNode {
	if n.Children == nil {
		return n
	}
	children := make([]model.TreeNode, len(n.Children))
	for i := range n.Children {
		children[i] = clone(n.Children[i])
	}
	n.Children = children
	return n
}

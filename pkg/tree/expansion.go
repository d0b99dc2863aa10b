package tree

import (
	"sort"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// Expansion is the set of node ids whose children are shown.
//
// It knows nothing about tree shape except in the helpers that take nodes
// explicitly. Offering toggle controls only for nodes with children is the
// renderer's job. A nil *Expansion reports every node as collapsed and
// ignores changes.
type Expansion struct {
	defaults []string
	open     map[string]struct{}
}

// NewExpansion returns an expansion state seeded with the default-open ids.
func NewExpansion(defaults ...string) *Expansion {
	e := &Expansion{defaults: append([]string(nil), defaults...)}
	e.Reset()
	return e
}

// Reset drops every change and restores the default-open ids.
func (e *Expansion) Reset() {
	if e == nil {
		return
	}
	e.open = make(map[string]struct{}, len(e.defaults))
	for _, id := range e.defaults {
		e.open[id] = struct{}{}
	}
}

// Toggle flips id between expanded and collapsed and returns the new state.
func (e *Expansion) Toggle(id string) bool {
	if e == nil {
		return false
	}
	if e.IsExpanded(id) {
		e.Collapse(id)
		return false
	}
	e.Expand(id)
	return true
}

// IsExpanded reports whether id is in the expanded set.
func (e *Expansion) IsExpanded(id string) bool {
	if e == nil {
		return false
	}
	_, ok := e.open[id]
	return ok
}

// Expand adds id to the expanded set.
func (e *Expansion) Expand(id string) {
	if e == nil {
		return
	}
	if e.open == nil {
		e.open = make(map[string]struct{})
	}
	e.open[id] = struct{}{}
}

// Collapse removes id from the expanded set.
func (e *Expansion) Collapse(id string) {
	if e == nil {
		return
	}
	delete(e.open, id)
}

// Len returns the number of expanded ids.
func (e *Expansion) Len() int {
	if e == nil {
		return 0
	}
	return len(e.open)
}

// IDs returns the expanded ids in sorted order.
func (e *Expansion) IDs() []string {
	if e == nil {
		return nil
	}
	ids := make([]string, 0, len(e.open))
	for id := range e.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExpandAll expands every node in nodes that has children.
func (e *Expansion) ExpandAll(nodes []model.TreeNode) {
	for i := range nodes {
		if nodes[i].HasChildren() {
			e.Expand(nodes[i].ID)
			e.ExpandAll(nodes[i].Children)
		}
	}
}

// CollapseAll empties the expanded set, defaults included.
func (e *Expansion) CollapseAll() {
	if e == nil {
		return
	}
	e.open = make(map[string]struct{})
}

// ExpandPath expands every ancestor of id so that it becomes visible.
// It returns false if id is not in nodes.
func (e *Expansion) ExpandPath(nodes []model.TreeNode, id string) bool {
	path := PathTo(nodes, id)
	if len(path) == 0 {
		return false
	}
	for _, n := range path[:len(path)-1] {
		e.Expand(n.ID)
	}
	return true
}

// Policy decides which nodes start expanded when a page is mounted.
type Policy struct {
	// DefaultExpanded lists ids open before any user interaction.
	DefaultExpanded []string
	// ExpandRoots opens every root node that has children on first load.
	ExpandRoots bool
}

// NewExpansion returns a fresh expansion state for roots under this policy.
func (p Policy) NewExpansion(roots []model.TreeNode) *Expansion {
	defaults := append([]string(nil), p.DefaultExpanded...)
	if p.ExpandRoots {
		for i := range roots {
			if roots[i].HasChildren() {
				defaults = append(defaults, roots[i].ID)
			}
		}
	}
	return NewExpansion(defaults...)
}

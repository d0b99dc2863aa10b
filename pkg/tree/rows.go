package tree

import "github.com/vanderheijden86/stockpile/pkg/model"

// Row is one visible line of a flattened tree.
type Row struct {
	Node        *model.TreeNode
	Depth       int // 0 for roots
	HasChildren bool
	Expanded    bool
	Selected    bool
}

// ChildCount returns the number of direct children of the row's node.
func (r Row) ChildCount() int {
	if r.Node == nil {
		return 0
	}
	return len(r.Node.Children)
}

// Rows flattens nodes into the rows currently visible: a pre-order walk that
// only descends into expanded nodes. Roots are always visible.
// Row.Node points into nodes; callers must not mutate it.
func Rows(nodes []model.TreeNode, exp *Expansion, sel *Selection) []Row {
	var rows []Row
	var walk func(ns []model.TreeNode, depth int)
	walk = func(ns []model.TreeNode, depth int) {
		for i := range ns {
			n := &ns[i]
			expanded := exp.IsExpanded(n.ID)
			rows = append(rows, Row{
				Node:        n,
				Depth:       depth,
				HasChildren: n.HasChildren(),
				Expanded:    expanded,
				Selected:    sel.IsSelected(n.ID),
			})
			if expanded && n.HasChildren() {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return rows
}

// Selection holds at most one selected node id.
// A nil *Selection has nothing selected and ignores changes.
type Selection struct {
	id string
}

// Select makes id the selected node.
func (s *Selection) Select(id string) {
	if s == nil {
		return
	}
	s.id = id
}

// Clear removes the selection.
func (s *Selection) Clear() {
	if s == nil {
		return
	}
	s.id = ""
}

// Selected returns the selected id, if any.
func (s *Selection) Selected() (string, bool) {
	if s == nil || s.id == "" {
		return "", false
	}
	return s.id, true
}

// IsSelected reports whether id is the selected node.
func (s *Selection) IsSelected(id string) bool {
	return s != nil && s.id != "" && s.id == id
}

// ClickResult reports what Click changed.
type ClickResult struct {
	Selected bool // selection moved to the node
	Toggled  bool // expansion flipped
	Expanded bool // expansion state after the click
}

// Click applies a single activation of node: a location becomes the
// selection, and a node with children also toggles its expansion. Item
// leaves change nothing here; callers open the item instead. A nil exp or
// sel leaves that half of the state alone.
func Click(node *model.TreeNode, exp *Expansion, sel *Selection) ClickResult {
	var res ClickResult
	if node == nil {
		return res
	}
	if node.IsLocation() && sel != nil {
		sel.Select(node.ID)
		res.Selected = true
	}
	if node.HasChildren() && exp != nil {
		res.Expanded = exp.Toggle(node.ID)
		res.Toggled = true
	} else {
		res.Expanded = exp.IsExpanded(node.ID)
	}
	return res
}

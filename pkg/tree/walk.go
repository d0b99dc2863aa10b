package tree

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// ErrDuplicateID is returned by Validate when two nodes share an id.
var ErrDuplicateID = errors.New("duplicate node id")

// Find returns the node with the given id, or nil.
func Find(nodes []model.TreeNode, id string) *model.TreeNode {
	path := PathTo(nodes, id)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// PathTo returns the chain of nodes from a root down to id, inclusive.
// It returns nil if id is not present.
func PathTo(nodes []model.TreeNode, id string) []*model.TreeNode {
	for i := range nodes {
		n := &nodes[i]
		if n.ID == id {
			return []*model.TreeNode{n}
		}
		if sub := PathTo(n.Children, id); sub != nil {
			return append([]*model.TreeNode{n}, sub...)
		}
	}
	return nil
}

// Count returns the total number of nodes at any depth.
func Count(nodes []model.TreeNode) int {
	total := 0
	for i := range nodes {
		total += 1 + Count(nodes[i].Children)
	}
	return total
}

// CountKind returns the number of nodes of the given kind at any depth.
func CountKind(nodes []model.TreeNode, kind model.NodeKind) int {
	total := 0
	for i := range nodes {
		if nodes[i].Kind == kind {
			total++
		}
		total += CountKind(nodes[i].Children, kind)
	}
	return total
}

// Validate checks that every id in the tree is unique.
func Validate(nodes []model.TreeNode) error {
	seen := make(map[string]bool)
	var walk func([]model.TreeNode) error
	walk = func(ns []model.TreeNode) error {
		for i := range ns {
			if seen[ns[i].ID] {
				return fmt.Errorf("%w: %q", ErrDuplicateID, ns[i].ID)
			}
			seen[ns[i].ID] = true
			if err := walk(ns[i].Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nodes)
}

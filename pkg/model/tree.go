package model

// NodeKind distinguishes container nodes from leaf nodes in the location tree.
type NodeKind string

const (
	KindLocation NodeKind = "location"
	KindItem     NodeKind = "item"
)

// TreeNode is one entry of GET /v1/locations/tree.
// A nil and an empty Children slice both mean "no children".
type TreeNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     NodeKind   `json:"type"`
	Children []TreeNode `json:"children,omitempty"`
}

// HasChildren reports whether the node has at least one child.
func (n *TreeNode) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// IsLocation reports whether the node is a location container.
func (n *TreeNode) IsLocation() bool {
	return n != nil && n.Kind == KindLocation
}

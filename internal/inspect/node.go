package inspect

import "scenedebug/internal/refchain"

// Notes attached to nodes that were cut short.
const (
	NoteCircular = "circular reference detected"
	NoteTooDeep  = "too deep"
	NoteReadOnly = "read-only, cannot list entries"
)

// Node is one rendered line of the explorer tree.
type Node struct {
	ID         string  `json:"id"`
	Path       string  `json:"path"`
	Label      string  `json:"label"`
	Type       string  `json:"type,omitempty"`
	Kind       Kind    `json:"kind"`
	Value      string  `json:"value"`
	Expandable bool    `json:"expandable,omitempty"`
	Expanded   bool    `json:"expanded,omitempty"`
	Property   bool    `json:"property,omitempty"`
	Evaluated  bool    `json:"evaluated,omitempty"`
	Jump       string  `json:"jump,omitempty"`
	Note       string  `json:"note,omitempty"`
	Err        string  `json:"error,omitempty"`
	Page       *Page   `json:"page,omitempty"`
	Children   []*Node `json:"children,omitempty"`

	chain *refchain.Chain
}

// Page describes which slice of a collection a node shows.
type Page struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	Total int  `json:"total"`
	More  bool `json:"more,omitempty"` // Total is a lower bound
}

// Chain is the reference chain the node was built from.
func (n *Node) Chain() *refchain.Chain { return n.chain }

// Absent reports whether the node's chain did not resolve.
func (n *Node) Absent() bool {
	return n.Kind == KindNil && n.Err == ""
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

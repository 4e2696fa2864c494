// Package analysis finds repeated structure in a search tree.
//
// Two detectors are provided. [CollectShapes] groups nodes whose subtrees
// have the same laid-out shape, a cheap approximation of similarity.
// [FindIdentical] groups nodes whose subtrees are recursively identical,
// optionally taking branch labels into account. Both results can be reduced
// with [EliminateSubsumed], which drops groups that only repeat because an
// enclosing group repeats, and filtered and ordered with a [Filter].
package analysis

// Group is a set of tree nodes sharing a subtree property.
type Group struct {
	// Nodes holds the member node indices.
	Nodes []int `json:"nodes"`
	// Size is the group's size measure: the shape size for shape groups and
	// the subtree node count for identical-subtree groups.
	Size int `json:"size"`
	// Height is the number of levels of the members' subtrees.
	Height int `json:"height"`
}

// Count returns the number of members.
func (g *Group) Count() int { return len(g.Nodes) }

func (g *Group) group() *Group { return g }

// grouping is satisfied by pointers to types embedding Group.
type grouping[G any] interface {
	*G
	group() *Group
}

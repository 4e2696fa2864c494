package analysis

import (
	"sort"

	"github.com/matzehuels/cptree/pkg/layout"
	"github.com/matzehuels/cptree/pkg/shape"
	"github.com/matzehuels/cptree/pkg/tree"
)

// ShapeGroup is a set of nodes whose subtrees have identical shapes.
type ShapeGroup struct {
	Group
	Shape *shape.Shape `json:"-"`
	// Solutions is the number of solved leaves below the first member.
	Solutions int `json:"solutions"`
}

// CollectShapes expands the whole tree, lays it out and groups every node by
// the shape of its subtree. Groups are ordered by shape. The caller must
// hold the tree lock.
func CollectShapes(t *tree.Tree, l *layout.Layouter) []ShapeGroup {
	root := t.Root()
	t.UnhideAll(root)
	l.Layout(t, root)

	solutions := make(map[int]int)
	type entry struct {
		node int
		sh   *shape.Shape
	}
	var entries []entry
	t.PostOrder(root, nil, func(i int) {
		n := t.Node(i)
		switch n.Status() {
		case tree.Solved:
			solutions[i] = 1
		case tree.Branch, tree.Stop, tree.Unstop, tree.Merging:
			s := 0
			for k := range n.NumChildren() {
				s += solutions[t.Child(i, k)]
			}
			solutions[i] = s
		}
		entries = append(entries, entry{node: i, sh: layout.ShapeOf(t, i)})
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return shape.Compare(entries[i].sh, entries[j].sh) < 0
	})

	var groups []ShapeGroup
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && shape.Equal(entries[i].sh, entries[j].sh) {
			j++
		}
		g := ShapeGroup{
			Group: Group{
				Size:   entries[i].sh.Size(),
				Height: entries[i].sh.Depth(),
			},
			Shape:     entries[i].sh,
			Solutions: solutions[entries[i].node],
		}
		for _, e := range entries[i:j] {
			g.Nodes = append(g.Nodes, e.node)
		}
		groups = append(groups, g)
		i = j
	}
	return groups
}

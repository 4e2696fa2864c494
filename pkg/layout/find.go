package layout

import (
	"github.com/matzehuels/cptree/pkg/shape"
	"github.com/matzehuels/cptree/pkg/tree"
)

// Position is the absolute location of a laid-out node.
type Position struct {
	Node  int `json:"node"`
	X     int `json:"x"`
	Y     int `json:"y"`
	Depth int `json:"depth"`
}

// Positions returns the absolute coordinates of every visible node below
// root, in pre-order. The tree must have been laid out.
func Positions(t *tree.Tree, root int) []Position {
	xs := map[int]int{root: 0}
	var out []Position
	t.PreOrder(root, func(i int) bool {
		x := xs[i]
		d := t.Depth(i) - t.Depth(root)
		out = append(out, Position{Node: i, X: x, Y: d * shape.DistY, Depth: d})
		if t.Node(i).IsHidden() {
			return false
		}
		for k := range t.NumChildren(i) {
			c := t.Child(i, k)
			xs[c] = x + t.Node(c).Offset()
		}
		return true
	})
	return out
}

// FindNode returns the visible node whose drawing contains the point (x, y),
// with the root drawn at (0, 0). It returns -1 when no node is hit.
func FindNode(t *tree.Tree, x, y int) int {
	if y < 0 {
		return -1
	}
	target := y / shape.DistY
	if y-target*shape.DistY > shape.NodeWidth {
		return -1
	}
	cur, curX := t.Root(), 0
	for depth := 0; depth < target; depth++ {
		n := t.Node(cur)
		if n.IsHidden() || n.NumChildren() == 0 {
			return -1
		}
		next := -1
		for k := range n.NumChildren() {
			c := t.Child(cur, k)
			cx := curX + t.Node(c).Offset()
			ext, ok := ShapeOf(t, c).ExtentAtDepth(target - depth - 1)
			if ok && x >= cx+ext.L && x <= cx+ext.R {
				next, curX = c, cx
				break
			}
		}
		if next < 0 {
			return -1
		}
		cur = next
	}
	half := shape.NodeWidth / 2
	if x >= curX-half && x <= curX+half {
		return cur
	}
	return -1
}

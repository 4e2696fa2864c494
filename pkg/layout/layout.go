// Package layout computes the horizontal placement of search tree nodes.
//
// Every node receives a [shape.Shape] describing the envelope of its subtree
// and an integer offset relative to its parent. Sibling envelopes are packed
// as closely as the minimal separation allows, once from the left and once
// from the right; the final offsets are the average of both packings, which
// keeps the drawing symmetric.
//
// Layout is incremental: only nodes flagged dirty are recomputed, and hidden
// subtrees use a fixed collapsed shape.
package layout

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/matzehuels/cptree/pkg/shape"
	"github.com/matzehuels/cptree/pkg/tree"
)

// Options controls the geometry of the layout.
type Options struct {
	// MinimalSeparation is the horizontal gap kept between sibling subtrees.
	MinimalSeparation int
	// LabelCharWidth is the width of one label character.
	LabelCharWidth int
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{
		MinimalSeparation: shape.MinimalSeparation,
		LabelCharWidth:    9,
	}
}

// Layouter computes shapes and offsets for a tree.
type Layouter struct {
	opts Options
}

// New creates a Layouter. Zero fields of opts are replaced by defaults.
func New(opts Options) *Layouter {
	def := DefaultOptions()
	if opts.MinimalSeparation <= 0 {
		opts.MinimalSeparation = def.MinimalSeparation
	}
	if opts.LabelCharWidth <= 0 {
		opts.LabelCharWidth = def.LabelCharWidth
	}
	return &Layouter{opts: opts}
}

// Options returns the effective options.
func (l *Layouter) Options() Options { return l.opts }

// Layout recomputes every dirty shape in the subtree rooted at root. The
// caller must hold the tree lock; Layout takes the layout lock itself.
func (l *Layouter) Layout(t *tree.Tree, root int) {
	t.LayoutLock()
	defer t.LayoutUnlock()

	t.PostOrder(root, func(i int) bool {
		n := t.Node(i)
		return n.IsDirty() && !n.IsHidden()
	}, func(i int) {
		n := t.Node(i)
		if n.IsDirty() {
			if !n.IsHidden() {
				l.ComputeShape(t, i)
			}
			n.SetFlag(tree.FlagDirty, false)
		}
		if n.NumChildren() > 0 && !n.IsHidden() {
			n.SetFlag(tree.FlagChildrenLayoutDone, true)
		}
	})
}

// ShapeOf returns the shape used for node i when placing it next to its
// siblings.
func ShapeOf(t *tree.Tree, i int) *shape.Shape {
	n := t.Node(i)
	if n.IsHidden() {
		if n.Status() == tree.Merging {
			return shape.Leaf
		}
		return shape.Hidden
	}
	if n.Shape() == nil {
		panic(errors.AssertionFailedf("layout: node %d has no shape", i))
	}
	return n.Shape()
}

// ComputeShape computes the shape of node i from the shapes of its children
// and assigns the offsets of the children.
func (l *Layouter) ComputeShape(t *tree.Tree, i int) {
	n := t.Node(i)
	kids := n.NumChildren()

	top := shape.NewExtent(shape.NodeWidth)
	if label, ok := t.Label(i); ok {
		w := utf8.RuneCountInString(label) * l.opts.LabelCharWidth
		alt, siblings := 0, 1
		if p := n.Parent(); p >= 0 {
			alt, siblings = t.Alternative(i), t.NumChildren(p)
		}
		switch {
		case siblings > 1 && alt == 0:
			top.L = min(top.L, -w)
		case siblings > 1 && alt == siblings-1:
			top.R = max(top.R, w)
		default:
			top.L = min(top.L, -w)
			top.R = max(top.R, w)
		}
	} else if kids == 0 {
		n.SetShape(shape.Leaf)
		return
	}

	depth := 0
	for k := range kids {
		depth = max(depth, ShapeOf(t, t.Child(i, k)).Depth())
	}
	ext := make([]shape.Extent, depth+1)
	ext[0] = top

	switch kids {
	case 0:
	case 1:
		child := t.Child(i, 0)
		t.Node(child).SetOffset(0)
		copy(ext[1:], ShapeOf(t, child).Extents())
		ext[1].Extend(-top.L, -top.R)
	default:
		l.placeChildren(t, i, ext)
	}
	n.SetShape(shape.FromExtents(ext))
}

// placeChildren packs the children of node i from both sides, places each
// child halfway between its two packed positions, and writes the envelope of
// the placed children into ext[1:].
func (l *Layouter) placeChildren(t *tree.Tree, i int, ext []shape.Extent) {
	kids := t.NumChildren(i)
	minSep := l.opts.MinimalSeparation
	child := func(k int) []shape.Extent { return ShapeOf(t, t.Child(i, k)).Extents() }

	// distL[k] and distR[k] are the distances between child k-1 and child k
	// in the left and the right packing.
	distL := make([]int, kids)
	distR := make([]int, kids)

	left := child(0)
	right := child(kids - 1)
	width := 0
	for k := 1; k < kids; k++ {
		next := child(k)
		a := Alpha(left, next, minSep)
		left = Merge(left, next, a)
		distL[k] = a - width
		width = a

		prev := child(kids - 1 - k)
		b := Alpha(prev, right, minSep)
		right = Merge(prev, right, b)
		distR[kids-k] = b
	}

	// Positions relative to the first child. The running average is taken
	// over cumulative distances, so pos[k] is the mean of child k's position
	// in the left and in the right packing, rounded once rather than once per
	// sibling gap. Every pairwise separation of both packings is kept.
	pos := make([]int, kids)
	sumL, sumR := 0, 0
	for k := 1; k < kids; k++ {
		sumL += distL[k]
		sumR += distR[k]
		pos[k] = (sumL + sumR) / 2
	}

	env := child(0)
	for k := 1; k < kids; k++ {
		env = Merge(env, child(k), pos[k])
	}
	copy(ext[1:], env)
	half := width / 2
	ext[1].Extend(-ext[0].L, -ext[0].R)
	ext[1].Move(-half)

	for k := range kids {
		t.Node(t.Child(i, k)).SetOffset(pos[k] - half)
	}
}

// Alpha returns the smallest distance between the axes of two shapes placed
// side by side, a to the left of b, such that every common level is separated
// by at least minSep.
func Alpha(a, b []shape.Extent, minSep int) int {
	alpha := minSep
	extR, extL := 0, 0
	for i := 0; i < len(a) && i < len(b); i++ {
		extR += a[i].R
		extL += b[i].L
		alpha = max(alpha, extR-extL+minSep)
	}
	return alpha
}

// Merge returns the envelope of a and of b shifted right by alpha, relative
// to the axis of a. Levels below the shallower shape continue the deeper one.
func Merge(a, b []shape.Extent, alpha int) []shape.Extent {
	res := make([]shape.Extent, max(len(a), len(b)))
	switch {
	case len(a) == 0:
		copy(res, b)
		return res
	case len(b) == 0:
		copy(res, a)
		return res
	}

	// Distance from the right border of the merged envelope to the right
	// border of a, and from the left border of b to that of a.
	backoffToA := a[0].R - alpha - b[0].R
	backoffToB := b[0].L + alpha - a[0].L
	res[0] = shape.Extent{L: a[0].L, R: b[0].R + alpha}

	i := 1
	for ; i < len(a) && i < len(b); i++ {
		res[i] = shape.Extent{L: a[i].L, R: b[i].R}
		backoffToA += a[i].R - b[i].R
		backoffToB += b[i].L - a[i].L
	}
	switch {
	case i < len(a):
		res[i] = shape.Extent{L: a[i].L, R: a[i].R + backoffToA}
		copy(res[i+1:], a[i+1:])
	case i < len(b):
		res[i] = shape.Extent{L: b[i].L + backoffToB, R: b[i].R}
		copy(res[i+1:], b[i+1:])
	}
	return res
}

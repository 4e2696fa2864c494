package tree

// PreOrder visits the subtree rooted at root in pre-order, children from left
// to right. Returning false from visit skips the children of that node.
func (a *Arena) PreOrder(root int, visit func(i int) bool) {
	stack := []int{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(i) {
			continue
		}
		for k := a.NumChildren(i) - 1; k >= 0; k-- {
			stack = append(stack, a.Child(i, k))
		}
	}
}

// PostOrder visits the subtree rooted at root in post-order, children from
// left to right. When descend is non-nil, the children of a node are only
// visited if descend returns true for it; the node itself is always visited.
func (a *Arena) PostOrder(root int, descend func(i int) bool, visit func(i int)) {
	type frame struct{ node, next int }
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < a.NumChildren(top.node) && (descend == nil || descend(top.node)) {
			c := a.Child(top.node, top.next)
			top.next++
			stack = append(stack, frame{node: c})
			continue
		}
		visit(top.node)
		stack = stack[:len(stack)-1]
	}
}

// PreOrder is a shorthand for t.Arena().PreOrder.
func (t *Tree) PreOrder(root int, visit func(i int) bool) { t.arena.PreOrder(root, visit) }

// PostOrder is a shorthand for t.Arena().PostOrder.
func (t *Tree) PostOrder(root int, descend func(i int) bool, visit func(i int)) {
	t.arena.PostOrder(root, descend, visit)
}

// Depth returns the number of edges between node i and the root.
func (t *Tree) Depth(i int) int {
	d := 0
	for p := t.arena.Parent(i); p >= 0; p = t.arena.Parent(p) {
		d++
	}
	return d
}

// Height returns the number of levels of the subtree rooted at i. A leaf has
// height 1.
func (t *Tree) Height(i int) int {
	type item struct{ node, level int }
	h := 0
	stack := []item{{i, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h = max(h, it.level)
		for k := range t.arena.NumChildren(it.node) {
			stack = append(stack, item{t.arena.Child(it.node, k), it.level + 1})
		}
	}
	return h
}

// Heights returns the height of every node in the subtree rooted at root,
// indexed by node.
func (t *Tree) Heights(root int) map[int]int {
	heights := make(map[int]int)
	t.PostOrder(root, nil, func(i int) {
		h := 0
		for k := range t.arena.NumChildren(i) {
			h = max(h, heights[t.arena.Child(i, k)])
		}
		heights[i] = h + 1
	})
	return heights
}

// MaxDepth returns the height of the whole tree.
func (t *Tree) MaxDepth() int { return t.Height(t.Root()) }

// SubtreeSize returns the number of nodes in the subtree rooted at i.
func (t *Tree) SubtreeSize(i int) int {
	n := 0
	t.PreOrder(i, func(int) bool { n++; return true })
	return n
}

// CopySubtree replicates the structure and statuses of the subtree of src
// rooted at from into the undetermined node at of dst. visit, when non-nil, is
// called with every pair of destination and source indices. It returns the
// number of nodes copied.
func CopySubtree(dst *Tree, at int, src *Tree, from int, visit func(dstIdx, srcIdx int)) int {
	type pair struct{ d, s int }
	copied := 0
	stack := []pair{{at, from}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sn := src.Node(p.s)
		kids := src.NumChildren(p.s)
		if sn.tag() != tagUndet {
			dst.SetNumberOfChildren(p.d, kids)
		}
		dst.SetStatus(p.d, sn.Status())
		if visit != nil {
			visit(p.d, p.s)
		}
		copied++
		for k := kids - 1; k >= 0; k-- {
			stack = append(stack, pair{dst.Child(p.d, k), src.Child(p.s, k)})
		}
	}
	return copied
}

// AddChildren sets the child count of node i and returns the new child
// indices in order.
func (t *Tree) AddChildren(i, n int) []int {
	t.SetNumberOfChildren(i, n)
	return t.arena.Children(i)
}

// CompareSubtrees reports whether the subtree of a rooted at i and the subtree
// of b rooted at j have the same shape of children and the same statuses.
func CompareSubtrees(a *Tree, i int, b *Tree, j int) bool {
	type pair struct{ x, y int }
	stack := []pair{{i, j}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.Node(p.x).Status() != b.Node(p.y).Status() {
			return false
		}
		kids := a.NumChildren(p.x)
		if kids != b.NumChildren(p.y) {
			return false
		}
		for k := range kids {
			stack = append(stack, pair{a.Child(p.x, k), b.Child(p.y, k)})
		}
	}
	return true
}

package tree

import "github.com/cockroachdb/errors"

const (
	blockShift = 14
	blockSize  = 1 << blockShift
	blockMask  = blockSize - 1
)

// Arena is an append-only node store. Nodes are allocated in fixed-size
// blocks so a *Node obtained from [Arena.Node] stays valid for the lifetime
// of the arena, no matter how many nodes are added later.
//
// The first node allocated is the root; an arena holds exactly one root.
// Arena does no locking of its own.
type Arena struct {
	blocks [][]Node
	n      int
	// many stores child lists of nodes with more than two children.
	many [][]int32
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int { return a.n }

// Node returns the node at index i.
func (a *Arena) Node(i int) *Node {
	if i < 0 || i >= a.n {
		panic(errors.AssertionFailedf("arena: index %d out of range [0, %d)", i, a.n))
	}
	return &a.blocks[i>>blockShift][i&blockMask]
}

func (a *Arena) alloc(parent int) int {
	idx := a.n
	if idx&blockMask == 0 {
		a.blocks = append(a.blocks, make([]Node, blockSize))
	}
	a.blocks[idx>>blockShift][idx&blockMask] = newNode(parent)
	a.n++
	return idx
}

// AllocateRoot allocates the root node. It panics if the arena already has one.
func (a *Arena) AllocateRoot() int {
	if a.n != 0 {
		panic(errors.AssertionFailedf("arena: root already allocated"))
	}
	return a.alloc(-1)
}

// Allocate allocates a fresh undetermined node under parent and returns its
// index. It does not register the node as a child of parent.
func (a *Arena) Allocate(parent int) int {
	if parent < 0 || parent >= a.n {
		panic(errors.AssertionFailedf("arena: invalid parent %d", parent))
	}
	return a.alloc(parent)
}

// SetNumberOfChildren allocates n undetermined children for node i. It may be
// called only once per node, before any children exist.
func (a *Arena) SetNumberOfChildren(i, n int) {
	node := a.Node(i)
	if node.tag() != tagUndet {
		panic(errors.AssertionFailedf("arena: children of node %d already set", i))
	}
	switch {
	case n < 0:
		panic(errors.AssertionFailedf("arena: negative child count %d", n))
	case n == 0:
		node.setTag(tagLeaf)
	case n <= 2:
		first := a.alloc(i)
		second := -1
		if n == 2 {
			second = a.alloc(i)
		}
		// alloc may have added a block; node is still valid.
		node.a, node.b = int32(first), int32(second)
		node.setTag(tagTwo)
	default:
		kids := make([]int32, n)
		for k := range kids {
			kids[k] = int32(a.alloc(i))
		}
		node.a, node.b = int32(len(a.many)), int32(n)
		a.many = append(a.many, kids)
		node.setTag(tagMore)
	}
}

// AddChild appends one new undetermined child to node i and returns its index.
func (a *Arena) AddChild(i int) int {
	node := a.Node(i)
	child := a.alloc(i)
	switch node.tag() {
	case tagUndet, tagLeaf:
		node.a, node.b = int32(child), -1
		node.setTag(tagTwo)
	case tagTwo:
		if node.b < 0 {
			node.b = int32(child)
			break
		}
		a.many = append(a.many, []int32{node.a, node.b, int32(child)})
		node.a, node.b = int32(len(a.many)-1), 3
		node.setTag(tagMore)
	case tagMore:
		old := a.many[node.a]
		grown := make([]int32, len(old)+1)
		copy(grown, old)
		grown[len(old)] = int32(child)
		a.many[node.a] = grown
		node.b++
	}
	return child
}

// NumChildren returns the number of children of node i.
func (a *Arena) NumChildren(i int) int { return a.Node(i).NumChildren() }

// Child returns the index of the k-th child of node i.
func (a *Arena) Child(i, k int) int {
	node := a.Node(i)
	if k < 0 || k >= node.NumChildren() {
		panic(errors.AssertionFailedf("arena: node %d has no child %d", i, k))
	}
	switch node.tag() {
	case tagTwo:
		if k == 0 {
			return int(node.a)
		}
		return int(node.b)
	default:
		return int(a.many[node.a][k])
	}
}

// Children returns the child indices of node i in order.
func (a *Arena) Children(i int) []int {
	n := a.NumChildren(i)
	out := make([]int, n)
	for k := range out {
		out[k] = a.Child(i, k)
	}
	return out
}

// Parent returns the parent index of node i, or -1 for the root.
func (a *Arena) Parent(i int) int { return a.Node(i).Parent() }

// Alternative returns the position of node i among its siblings, or -1 for
// the root.
func (a *Arena) Alternative(i int) int {
	p := a.Parent(i)
	if p < 0 {
		return -1
	}
	for k := range a.NumChildren(p) {
		if a.Child(p, k) == i {
			return k
		}
	}
	panic(errors.AssertionFailedf("arena: node %d not found under parent %d", i, p))
}

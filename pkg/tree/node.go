package tree

import "github.com/matzehuels/cptree/pkg/shape"

// childTag describes how a node stores its children.
type childTag uint32

const (
	tagUndet childTag = iota // children not yet known
	tagLeaf                  // known to have no children
	tagTwo                   // one or two children stored inline
	tagMore                  // more than two children in the arena side table
)

// Layout of Node.word.
const (
	statusBits  = 4
	statusMask  = 1<<statusBits - 1
	tagShift    = statusBits
	tagMask     = 3 << tagShift
	bucketShift = tagShift + 2
	bucketMask  = 7 << bucketShift
	flagShift   = bucketShift + 3
)

// noBucket marks a node whose subtree size has not been computed.
const noBucket = 7

// Flag is a single boolean attribute packed into a node.
type Flag uint32

const (
	FlagHasOpen Flag = 1 << (flagShift + iota)
	FlagHasFailed
	FlagHasSolved
	FlagDirty
	FlagChildrenLayoutDone
	FlagHidden
	FlagMarked
	FlagOnPath
	FlagHighlighted
	FlagBookmarked
	FlagSelected
)

// Node is one vertex of the search tree. Nodes live in an [Arena] and are
// addressed by their integer index. Node values are never moved once allocated.
type Node struct {
	parent int32
	word   uint32
	// For tagTwo, a and b hold the child indices (b is -1 with one child).
	// For tagMore, a indexes Arena.many and b holds the child count.
	a, b   int32
	offset int32
	// open counts the children for which IsOpen holds.
	open  int32
	shape *shape.Shape
}

func newNode(parent int) Node {
	n := Node{parent: int32(parent), a: -1, b: -1}
	n.word = uint32(Undetermined) | noBucket<<bucketShift
	n.SetFlag(FlagDirty, true)
	return n
}

// Parent returns the parent index, or -1 for the root.
func (n *Node) Parent() int { return int(n.parent) }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent < 0 }

// Status returns the node status.
func (n *Node) Status() Status { return Status(n.word & statusMask) }

func (n *Node) setStatus(s Status) {
	n.word = n.word&^statusMask | uint32(s)
}

func (n *Node) tag() childTag { return childTag(n.word&tagMask) >> tagShift }

func (n *Node) setTag(t childTag) {
	n.word = n.word&^tagMask | uint32(t)<<tagShift
}

// NumChildren returns the number of children. Nodes whose children are not
// yet known report zero.
func (n *Node) NumChildren() int {
	switch n.tag() {
	case tagTwo:
		if n.b < 0 {
			return 1
		}
		return 2
	case tagMore:
		return int(n.b)
	}
	return 0
}

// Flag reports whether f is set.
func (n *Node) Flag(f Flag) bool { return n.word&uint32(f) != 0 }

// SetFlag sets or clears f.
func (n *Node) SetFlag(f Flag, on bool) {
	if on {
		n.word |= uint32(f)
	} else {
		n.word &^= uint32(f)
	}
}

func (n *Node) HasOpenChildren() bool   { return n.Flag(FlagHasOpen) }
func (n *Node) HasFailedChildren() bool { return n.Flag(FlagHasFailed) }
func (n *Node) HasSolvedChildren() bool { return n.Flag(FlagHasSolved) }
func (n *Node) IsDirty() bool           { return n.Flag(FlagDirty) }
func (n *Node) IsHidden() bool          { return n.Flag(FlagHidden) }
func (n *Node) IsMarked() bool          { return n.Flag(FlagMarked) }
func (n *Node) IsOnPath() bool          { return n.Flag(FlagOnPath) }
func (n *Node) IsHighlighted() bool     { return n.Flag(FlagHighlighted) }
func (n *Node) IsBookmarked() bool      { return n.Flag(FlagBookmarked) }
func (n *Node) IsSelected() bool        { return n.Flag(FlagSelected) }

// ChildrenLayoutDone reports whether the children of the node have been
// positioned by the last layout pass.
func (n *Node) ChildrenLayoutDone() bool { return n.Flag(FlagChildrenLayoutDone) }

// NoOfOpenChildren returns the number of children that are still open.
func (n *Node) NoOfOpenChildren() int { return int(n.open) }

// IsOpen reports whether the node or any descendant is still undetermined.
func (n *Node) IsOpen() bool {
	return n.Status() == Undetermined || n.HasOpenChildren()
}

// SizeBucket returns the cached log10 bucket of the subtree size, or false
// when it has not been computed.
func (n *Node) SizeBucket() (int, bool) {
	b := int(n.word&bucketMask) >> bucketShift
	return b, b != noBucket
}

func (n *Node) setSizeBucket(b int) {
	n.word = n.word&^bucketMask | uint32(b)<<bucketShift
}

// Shape returns the shape computed by the last layout, or nil.
func (n *Node) Shape() *shape.Shape { return n.shape }

// SetShape attaches s to the node.
func (n *Node) SetShape(s *shape.Shape) { n.shape = s }

// Offset returns the horizontal offset of the node relative to its parent.
func (n *Node) Offset() int { return int(n.offset) }

// SetOffset sets the horizontal offset relative to the parent.
func (n *Node) SetOffset(x int) { n.offset = int32(x) }

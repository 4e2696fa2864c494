// Package shape describes the horizontal envelope of a laid-out subtree.
//
// A [Shape] is a list of [Extent] values, one per depth level of the subtree.
// Level 0 holds the extent of the subtree root relative to its own axis.
// Every deeper level i holds the delta of the left and right boundaries with
// respect to level i-1, so the absolute extent at depth d is the partial sum
// of levels 0..d. This relative encoding lets a parent shift a whole child
// envelope by touching a single level.
//
// Shapes attached to nodes are treated as immutable once computed. The
// package-level [Leaf] and [Hidden] shapes are shared by many nodes and must
// never be modified.
package shape

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Layout constants shared by the shape and layout packages.
const (
	// NodeWidth is the horizontal size of a drawn node.
	NodeWidth = 20
	// DistY is the vertical distance between two depth levels.
	DistY = 38
	// MinimalSeparation is the default horizontal gap between sibling envelopes.
	MinimalSeparation = 10
)

// Extent is a closed horizontal interval [L, R].
type Extent struct {
	L int `json:"l"`
	R int `json:"r"`
}

// NewExtent returns the extent of a node of the given width centered on its axis.
func NewExtent(width int) Extent {
	half := width / 2
	return Extent{L: -half, R: half}
}

// Extend adds dl to the left and dr to the right boundary.
func (e *Extent) Extend(dl, dr int) {
	e.L += dl
	e.R += dr
}

// Move shifts both boundaries by d.
func (e *Extent) Move(d int) {
	e.Extend(d, d)
}

// Width returns R-L.
func (e Extent) Width() int { return e.R - e.L }

func (e Extent) String() string { return fmt.Sprintf("(%d, %d)", e.L, e.R) }

// BoundingBox is the absolute horizontal span covered by a shape.
type BoundingBox struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Width returns Right-Left.
func (b BoundingBox) Width() int { return b.Right - b.Left }

// Shape is a per-depth list of extents together with its cached bounding box.
type Shape struct {
	extents []Extent
	bb      BoundingBox
}

// Shared shapes.
var (
	// Leaf is the shape of every unlabeled leaf.
	Leaf = FromExtents([]Extent{NewExtent(NodeWidth)})
	// Hidden is the shape of a collapsed subtree.
	Hidden = FromExtents([]Extent{NewExtent(NodeWidth), NewExtent(NodeWidth)})
)

// New returns a zeroed shape of the given depth. It panics if depth < 1.
func New(depth int) *Shape {
	if depth < 1 {
		panic(errors.AssertionFailedf("shape: depth %d must be at least 1", depth))
	}
	return &Shape{extents: make([]Extent, depth)}
}

// FromExtents builds a shape owning ext and computes its bounding box.
// It panics if ext is empty.
func FromExtents(ext []Extent) *Shape {
	if len(ext) == 0 {
		panic(errors.AssertionFailedf("shape: no extents"))
	}
	s := &Shape{extents: ext}
	s.ComputeBoundingBox()
	return s
}

// IsShared reports whether s is one of the package-level shared shapes.
func IsShared(s *Shape) bool { return s == Leaf || s == Hidden }

// Copy returns a deep copy of s.
func (s *Shape) Copy() *Shape {
	ext := make([]Extent, len(s.extents))
	copy(ext, s.extents)
	return &Shape{extents: ext, bb: s.bb}
}

// Depth returns the number of levels.
func (s *Shape) Depth() int { return len(s.extents) }

// At returns the extent stored at level i.
func (s *Shape) At(i int) Extent { return s.extents[i] }

// Set stores e at level i. The bounding box is not updated.
func (s *Shape) Set(i int, e Extent) {
	if IsShared(s) {
		panic(errors.AssertionFailedf("shape: write to shared shape"))
	}
	s.extents[i] = e
}

// Extents returns the underlying levels. Callers must not modify the result.
func (s *Shape) Extents() []Extent { return s.extents }

// Truncate drops every level at or below depth.
func (s *Shape) Truncate(depth int) {
	if depth < 1 || depth > len(s.extents) {
		panic(errors.AssertionFailedf("shape: cannot truncate depth %d to %d", len(s.extents), depth))
	}
	s.extents = s.extents[:depth]
}

// ComputeBoundingBox recomputes the cached bounding box from the extents.
func (s *Shape) ComputeBoundingBox() {
	var l, r int
	bb := BoundingBox{}
	for i, e := range s.extents {
		l += e.L
		r += e.R
		if i == 0 || l < bb.Left {
			bb.Left = l
		}
		if i == 0 || r > bb.Right {
			bb.Right = r
		}
	}
	s.bb = bb
}

// BoundingBox returns the cached bounding box.
func (s *Shape) BoundingBox() BoundingBox { return s.bb }

// ExtentAtDepth returns the absolute extent at depth d, or false when the
// shape does not reach that deep.
func (s *Shape) ExtentAtDepth(d int) (Extent, bool) {
	if d < 0 || d >= len(s.extents) {
		return Extent{}, false
	}
	var abs Extent
	for i := 0; i <= d; i++ {
		abs.Extend(s.extents[i].L, s.extents[i].R)
	}
	return abs, true
}

// Size returns the sum of absolute level widths. It is used as the size of a
// shape group.
func (s *Shape) Size() int {
	size := 0
	for d := range s.extents {
		e, _ := s.ExtentAtDepth(d)
		size += e.Width()
	}
	return size
}

// Compare orders shapes by depth, then level by level by the right boundary
// and then the left boundary. It returns -1, 0 or +1.
func Compare(a, b *Shape) int {
	if a.Depth() != b.Depth() {
		return cmpInt(a.Depth(), b.Depth())
	}
	for i := range a.extents {
		ea, eb := a.extents[i], b.extents[i]
		if ea.R != eb.R {
			return cmpInt(ea.R, eb.R)
		}
		if ea.L != eb.L {
			return cmpInt(ea.L, eb.L)
		}
	}
	return 0
}

// Equal reports whether a and b have identical extents.
func Equal(a, b *Shape) bool { return Compare(a, b) == 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *Shape) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range s.extents {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("}")
	return sb.String()
}

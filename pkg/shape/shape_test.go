package shape

import "testing"

func TestNewExtent(t *testing.T) {
	e := NewExtent(NodeWidth)
	if e.L != -10 || e.R != 10 {
		t.Fatalf("NewExtent(20) = %v, want (-10, 10)", e)
	}
	e.Extend(-5, 5)
	e.Move(3)
	if e.L != -12 || e.R != 18 {
		t.Errorf("after Extend+Move = %v, want (-12, 18)", e)
	}
}

func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		ext  []Extent
		want BoundingBox
	}{
		{"leaf", []Extent{{-10, 10}}, BoundingBox{-10, 10}},
		{"widening", []Extent{{-10, 10}, {-15, 15}}, BoundingBox{-25, 25}},
		{"narrowing", []Extent{{-10, 10}, {15, 15}}, BoundingBox{-10, 25}},
		{"shifted", []Extent{{-10, 10}, {-30, -30}, {5, 5}}, BoundingBox{-40, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromExtents(tt.ext)
			if got := s.BoundingBox(); got != tt.want {
				t.Errorf("BoundingBox() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtentAtDepth(t *testing.T) {
	s := FromExtents([]Extent{{-10, 10}, {-15, 15}})
	got, ok := s.ExtentAtDepth(1)
	if !ok || got != (Extent{-25, 25}) {
		t.Errorf("ExtentAtDepth(1) = %v, %v", got, ok)
	}
	if _, ok := s.ExtentAtDepth(2); ok {
		t.Error("ExtentAtDepth(depth) should report false")
	}
	if _, ok := s.ExtentAtDepth(-1); ok {
		t.Error("ExtentAtDepth(-1) should report false")
	}
}

func TestSize(t *testing.T) {
	if got := Leaf.Size(); got != 20 {
		t.Errorf("Leaf.Size() = %d, want 20", got)
	}
	s := FromExtents([]Extent{{-10, 10}, {-15, 15}})
	if got := s.Size(); got != 70 {
		t.Errorf("Size() = %d, want 70", got)
	}
}

func TestCompare(t *testing.T) {
	a := FromExtents([]Extent{{-10, 10}})
	b := FromExtents([]Extent{{-10, 10}, {0, 0}})
	c := FromExtents([]Extent{{-10, 10}, {-5, 5}})
	d := FromExtents([]Extent{{-20, 10}, {-5, 5}})

	tests := []struct {
		name string
		x, y *Shape
		want int
	}{
		{"equal", a, Leaf, 0},
		{"shallower first", a, b, -1},
		{"deeper last", b, a, 1},
		{"right boundary", b, c, -1},
		{"left boundary", d, c, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.x, tt.y); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSharedShapesArePanicProtected(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Set on shared shape should panic")
		}
	}()
	Leaf.Set(0, Extent{})
}

func TestNewPanicsOnZeroDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0) should panic")
		}
	}()
	New(0)
}

func TestCopyIsIndependent(t *testing.T) {
	s := FromExtents([]Extent{{-10, 10}, {-15, 15}})
	c := s.Copy()
	c.Set(1, Extent{0, 0})
	if s.At(1) != (Extent{-15, 15}) {
		t.Error("Copy shares storage with original")
	}
	c.Truncate(1)
	if c.Depth() != 1 || s.Depth() != 2 {
		t.Errorf("Truncate depths = %d/%d", c.Depth(), s.Depth())
	}
}

// Package tree implements the search tree recorded while a constraint solver
// explores its search space.
//
// A [Tree] wraps an [Arena] of [Node] values together with per-tree
// statistics and optional display labels. Nodes are addressed by integer
// indices; index 0 is the root.
//
// # Locking
//
// A Tree carries two locks. The tree lock ([Tree.Lock], [Tree.RLock]) guards
// structure and status; the layout lock ([Tree.LayoutLock]) serializes shape
// computation. Go mutexes are not reentrant, so locks are acquired once at
// operation boundaries: the methods of Tree never lock, and callers hold the
// tree lock for the whole of an operation.
package tree

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
)

// Statistics counts nodes by status.
type Statistics struct {
	Solutions    int `json:"solutions"`
	Failures     int `json:"failures"`
	Choices      int `json:"choices"`
	Undetermined int `json:"undetermined"`
	MaxDepth     int `json:"max_depth"`
}

// Total returns the number of counted nodes.
func (s Statistics) Total() int {
	return s.Solutions + s.Failures + s.Choices + s.Undetermined
}

// Tree is a search tree plus its bookkeeping.
type Tree struct {
	mu       sync.RWMutex
	layoutMu sync.Mutex

	arena  *Arena
	labels map[int]string
	stats  Statistics
}

// New returns a tree holding a single undetermined root.
func New() *Tree {
	t := &Tree{
		arena:  NewArena(),
		labels: make(map[int]string),
	}
	root := t.arena.AllocateRoot()
	t.arena.Node(root).SetFlag(FlagMarked, true)
	t.stats = Statistics{Undetermined: 1, MaxDepth: 1}
	return t
}

func (t *Tree) Lock()         { t.mu.Lock() }
func (t *Tree) Unlock()       { t.mu.Unlock() }
func (t *Tree) RLock()        { t.mu.RLock() }
func (t *Tree) RUnlock()      { t.mu.RUnlock() }
func (t *Tree) LayoutLock()   { t.layoutMu.Lock() }
func (t *Tree) LayoutUnlock() { t.layoutMu.Unlock() }

// Arena exposes the underlying node store.
func (t *Tree) Arena() *Arena { return t.arena }

// Root returns the root index.
func (t *Tree) Root() int { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return t.arena.Len() }

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node { return t.arena.Node(i) }

// NumChildren returns the number of children of node i.
func (t *Tree) NumChildren(i int) int { return t.arena.NumChildren(i) }

// Child returns the k-th child of node i.
func (t *Tree) Child(i, k int) int { return t.arena.Child(i, k) }

// Parent returns the parent of node i, or -1.
func (t *Tree) Parent(i int) int { return t.arena.Parent(i) }

// Alternative returns the position of node i among its siblings.
func (t *Tree) Alternative(i int) int { return t.arena.Alternative(i) }

// Stats returns a copy of the current statistics.
func (t *Tree) Stats() Statistics { return t.stats }

// SetNumberOfChildren creates n undetermined children under node i and
// updates the statistics.
func (t *Tree) SetNumberOfChildren(i, n int) {
	t.arena.SetNumberOfChildren(i, n)
	t.stats.Undetermined += n
	if n > 0 {
		t.stats.MaxDepth = max(t.stats.MaxDepth, t.Depth(i)+2)
		t.addOpen(i, n)
		t.DirtyUp(i)
	}
}

// AddChild appends a new undetermined child to node i. A closed node that
// gains a child is open again, and so are its closed ancestors.
func (t *Tree) AddChild(i int) int {
	c := t.arena.AddChild(i)
	t.stats.Undetermined++
	t.stats.MaxDepth = max(t.stats.MaxDepth, t.Depth(c)+1)
	t.addOpen(i, 1)
	t.DirtyUp(i)
	return c
}

// SetStatus changes the status of node i, maintains the statistics and
// propagates closed-child information to the ancestors. It panics on a
// transition not allowed by [Status.CanTransition].
func (t *Tree) SetStatus(i int, s Status) {
	n := t.arena.Node(i)
	old := n.Status()
	if old == s {
		return
	}
	if !old.CanTransition(s) {
		panic(errors.AssertionFailedf("tree: node %d cannot change from %s to %s", i, old, s))
	}
	wasOpen := n.IsOpen()
	n.setStatus(s)

	switch old {
	case Undetermined:
		t.stats.Undetermined--
	case Skipped:
		t.stats.Failures--
	}

	var failed, solved bool
	switch s {
	case Solved:
		t.stats.Solutions++
		n.SetFlag(FlagHasFailed, false)
		n.SetFlag(FlagHasSolved, true)
		solved = true
	case Failed, Skipped:
		t.stats.Failures++
		n.SetFlag(FlagHasSolved, false)
		n.SetFlag(FlagHasFailed, true)
		failed = true
	case Branch:
		if old == Undetermined || old == Skipped {
			t.stats.Choices++
			n.SetFlag(FlagHasFailed, false)
		}
	case Stop, Unstop:
		if old == Undetermined {
			t.stats.Choices++
			n.SetFlag(FlagHasFailed, false)
		}
	}

	if p := n.Parent(); p >= 0 {
		switch isOpen := n.IsOpen(); {
		case wasOpen && !isOpen:
			t.CloseChild(p, failed, solved)
		case !wasOpen && isOpen:
			t.addOpen(p, 1)
		default:
			t.markUp(p, failed, solved)
		}
	}
	t.DirtyUp(i)
}

// addOpen changes the open-children count of node i by d. When i switches
// between open and closed, its parent's count follows, and so on upwards.
func (t *Tree) addOpen(i, d int) {
	for i >= 0 && d != 0 {
		n := t.arena.Node(i)
		if int(n.open)+d < 0 {
			panic(errors.AssertionFailedf("tree: node %d has no open child to close", i))
		}
		was := n.IsOpen()
		n.open += int32(d)
		n.SetFlag(FlagHasOpen, n.open > 0)
		is := n.IsOpen()
		switch {
		case was == is:
			return
		case is:
			d = 1
		default:
			d = -1
		}
		i = n.Parent()
	}
}

// CloseChild records that one open child of node i has been closed, with or
// without failures and solutions below it. A node whose last open child
// closes is closed in turn. The failure and solution flags travel up until
// an ancestor already carries them.
func (t *Tree) CloseChild(i int, hadFailures, hadSolutions bool) {
	t.addOpen(i, -1)
	t.markUp(i, hadFailures, hadSolutions)
}

// markUp sets the failure and solution flags on i and its ancestors. Each
// flag stops at the first node that already has it.
func (t *Tree) markUp(i int, failed, solved bool) {
	for j := i; j >= 0 && (failed || solved); j = t.arena.Parent(j) {
		n := t.arena.Node(j)
		if failed {
			if n.HasFailedChildren() {
				failed = false
			} else {
				n.SetFlag(FlagHasFailed, true)
			}
		}
		if solved {
			if n.HasSolvedChildren() {
				solved = false
			} else {
				n.SetFlag(FlagHasSolved, true)
			}
		}
	}
}

// Label returns the display label of node i.
func (t *Tree) Label(i int) (string, bool) {
	l, ok := t.labels[i]
	return l, ok
}

// SetLabel attaches a display label to node i.
func (t *Tree) SetLabel(i int, label string) {
	t.labels[i] = label
	t.DirtyUp(i)
}

// ClearLabel removes the display label of node i.
func (t *Tree) ClearLabel(i int) {
	if _, ok := t.labels[i]; ok {
		delete(t.labels, i)
		t.DirtyUp(i)
	}
}

// HasLabels reports whether any node carries a display label.
func (t *Tree) HasLabels() bool { return len(t.labels) > 0 }

// ClearLabels removes every display label.
func (t *Tree) ClearLabels() {
	for i := range t.labels {
		t.DirtyUp(i)
	}
	clear(t.labels)
}

// sizeBucket maps a subtree size to min(6, floor(log10(size))).
func sizeBucket(size int) int {
	if size < 1 {
		return 0
	}
	return min(6, int(math.Log10(float64(size))))
}

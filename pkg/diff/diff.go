// Package diff compares two search trees and builds a merged tree that
// shares their common prefix.
//
// The two trees are walked in lockstep, pre-order, children left to right.
// Where both sides agree, the node is copied once into the merged tree.
// Where they diverge, the merged tree gets a pentagon: a node with the
// Merging status whose one or two children are copies of the diverging
// subtrees. Each pentagon records the sizes of both sides, so the result
// also tells how much search one run saved over the other and which
// nogoods are responsible for it.
package diff

import (
	"sort"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

// Options controls node equality.
type Options struct {
	// LabelSensitive also requires equal normalized branch labels.
	LabelSensitive bool
	// IgnoreImplied strips the implied-literal marker before comparing labels.
	IgnoreImplied bool
}

// Pentagon is one divergence between the two trees.
type Pentagon struct {
	// Node is the pentagon's index in the merged tree.
	Node int `json:"node"`
	// Left and Right are the subtree sizes of the two sides; an absent side
	// has size 0.
	Left  int    `json:"left"`
	Right int    `json:"right"`
	Info  string `json:"info,omitempty"`
	// Domains lists the domain lines that differ between the info of the
	// two sides, when both have one.
	Domains string `json:"domains,omitempty"`
}

// SizeDiff returns |Left-Right|.
func (p Pentagon) SizeDiff() int {
	if p.Left > p.Right {
		return p.Left - p.Right
	}
	return p.Right - p.Left
}

// NogoodStat aggregates the effect of one nogood.
type NogoodStat struct {
	ID          int64  `json:"id"`
	Clause      string `json:"clause,omitempty"`
	Occurrences int    `json:"occurrences"`
	// Eliminated is the share of search nodes this nogood saved.
	Eliminated int `json:"eliminated"`
}

// Result is the outcome of a comparison.
type Result struct {
	Left, Right *execution.Execution
	// Merged holds the merged tree. Its data table maps every merged node to
	// the entry of the side it was copied from.
	Merged    *execution.Execution
	Pentagons []Pentagon
	Nogoods   map[int64]*NogoodStat
	// TotalEliminated is the sum of all nogood shares.
	TotalEliminated int
}

// Len returns the number of pentagons.
func (r *Result) Len() int { return len(r.Pentagons) }

// Next returns the index of the pentagon after i, or -1.
func (r *Result) Next(i int) int {
	if i+1 < len(r.Pentagons) {
		return i + 1
	}
	return -1
}

// Prev returns the index of the pentagon before i, or -1.
func (r *Result) Prev(i int) int {
	if i > 0 && i <= len(r.Pentagons) {
		return i - 1
	}
	return -1
}

// SortedBySizeDiff returns the pentagons ordered by decreasing size
// difference. Ties keep discovery order.
func (r *Result) SortedBySizeDiff() []Pentagon {
	out := make([]Pentagon, len(r.Pentagons))
	copy(out, r.Pentagons)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SizeDiff() > out[j].SizeDiff() })
	return out
}

// NogoodRanking returns the nogood statistics ordered by decreasing
// eliminated count, then by id.
func (r *Result) NogoodRanking() []NogoodStat {
	out := make([]NogoodStat, 0, len(r.Nogoods))
	for _, s := range r.Nogoods {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Eliminated != out[j].Eliminated {
			return out[i].Eliminated > out[j].Eliminated
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Compare builds the merged tree of left and right. Both sources are read
// locked for the duration of the call; left and right may be the same
// execution.
func Compare(left, right *execution.Execution, opts Options) *Result {
	left.Tree.RLock()
	defer left.Tree.RUnlock()
	if right != left {
		right.Tree.RLock()
		defer right.Tree.RUnlock()
	}

	merged := execution.New(left.Title+" vs "+right.Title, false)
	merged.Tree.Lock()
	defer merged.Tree.Unlock()

	c := &comparer{
		left:   left,
		right:  right,
		dst:    merged,
		opts:   opts,
		result: &Result{Left: left, Right: right, Merged: merged, Nogoods: make(map[int64]*NogoodStat)},
	}
	c.run()
	return c.result
}

type comparer struct {
	left, right *execution.Execution
	dst         *execution.Execution
	opts        Options
	result      *Result
}

// triple is a pending comparison; a or b is -1 when that side has no node.
type triple struct{ a, b, d int }

func (c *comparer) run() {
	lt, rt, dt := c.left.Tree, c.right.Tree, c.dst.Tree
	stack := []triple{{lt.Root(), rt.Root(), dt.Root()}}
	for len(stack) > 0 {
		tr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case tr.a < 0 || tr.b < 0:
			c.unilateral(tr)
			continue
		case !c.equal(tr.a, tr.b):
			c.bilateral(tr)
			continue
		}

		ka, kb := lt.NumChildren(tr.a), rt.NumChildren(tr.b)
		if k := max(ka, kb); k > 0 || lt.Node(tr.a).Status() != tree.Undetermined {
			dt.SetNumberOfChildren(tr.d, k)
		}
		dt.SetStatus(tr.d, lt.Node(tr.a).Status())
		c.link(tr.d, c.left, tr.a)

		for k := max(ka, kb) - 1; k >= 0; k-- {
			next := triple{a: -1, b: -1, d: dt.Child(tr.d, k)}
			if k < ka {
				next.a = lt.Child(tr.a, k)
			}
			if k < kb {
				next.b = rt.Child(tr.b, k)
			}
			stack = append(stack, next)
		}
	}
}

func (c *comparer) equal(a, b int) bool {
	if c.left.Tree.Node(a).Status() != c.right.Tree.Node(b).Status() {
		return false
	}
	if !c.opts.LabelSensitive {
		return true
	}
	return c.normalize(c.left.Label(a)) == c.normalize(c.right.Label(b))
}

func (c *comparer) normalize(label string) string {
	if c.opts.IgnoreImplied {
		label = execution.StripImplied(label)
	}
	return execution.NormalizeLabel(label)
}

// unilateral handles a node present on one side only. Undetermined and
// skipped nodes are not worth a pentagon and leave the merged slot empty.
func (c *comparer) unilateral(tr triple) {
	side, idx := c.left, tr.a
	if tr.a < 0 {
		side, idx = c.right, tr.b
	}
	switch side.Tree.Node(idx).Status() {
	case tree.Undetermined, tree.Skipped:
		return
	}
	dt := c.dst.Tree
	dt.SetNumberOfChildren(tr.d, 1)
	dt.SetStatus(tr.d, tree.Merging)
	size := c.copy(dt.Child(tr.d, 0), side, idx)

	p := Pentagon{Node: tr.d, Info: side.Info(idx)}
	if side == c.left {
		p.Left = size
	} else {
		p.Right = size
	}
	c.result.Pentagons = append(c.result.Pentagons, p)
}

// bilateral handles two nodes that differ.
func (c *comparer) bilateral(tr triple) {
	dt := c.dst.Tree
	dt.SetNumberOfChildren(tr.d, 2)
	dt.SetStatus(tr.d, tree.Merging)
	l := c.copy(dt.Child(tr.d, 0), c.left, tr.a)
	r := c.copy(dt.Child(tr.d, 1), c.right, tr.b)

	li, ri := c.left.Info(tr.a), c.right.Info(tr.b)
	p := Pentagon{Node: tr.d, Left: l, Right: r, Info: li}
	if li == "" {
		p.Info = ri
	} else if ri != "" {
		p.Domains = execution.CompareDomains(li, ri)
	}
	c.result.Pentagons = append(c.result.Pentagons, p)

	if c.left.Tree.Node(tr.a).Status() == tree.Failed {
		if e := c.left.Data.Entry(tr.a); e != nil {
			c.attribute(e.NogoodIDs, r-l)
		}
	}
}

// attribute splits the search reduction evenly among the nogoods that
// closed the left node. The remainder goes one node at a time to the first
// nogoods so the shares add up exactly.
func (c *comparer) attribute(ids []int64, reduction int) {
	if len(ids) == 0 {
		return
	}
	n := len(ids)
	share, rest := reduction/n, reduction%n
	for k, id := range ids {
		st := c.result.Nogoods[id]
		if st == nil {
			st = &NogoodStat{ID: id}
			if clause, ok := c.left.Data.Nogood(id); ok {
				st.Clause = clause
			}
			c.result.Nogoods[id] = st
		}
		st.Occurrences++
		amount := share
		switch {
		case rest > 0 && k < rest:
			amount++
		case rest < 0 && k < -rest:
			amount--
		}
		st.Eliminated += amount
		c.result.TotalEliminated += amount
	}
}

func (c *comparer) copy(at int, src *execution.Execution, from int) int {
	return tree.CopySubtree(c.dst.Tree, at, src.Tree, from, func(d, s int) {
		c.link(d, src, s)
	})
}

func (c *comparer) link(d int, src *execution.Execution, s int) {
	if e := src.Data.Entry(s); e != nil {
		c.dst.Data.Link(d, e)
	}
}

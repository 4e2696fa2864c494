package pipeline

import (
	"slices"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/diff"
	"github.com/matzehuels/cptree/pkg/tree"
)

// TreeSummary describes one loaded search tree.
type TreeSummary struct {
	Title    string          `json:"title"`
	Nodes    int             `json:"nodes"`
	Restarts bool            `json:"restarts,omitempty"`
	Stats    tree.Statistics `json:"stats"`
}

// LayoutSummary is the extent of a laid-out tree, root at x = 0.
type LayoutSummary struct {
	Left    int `json:"left"`
	Right   int `json:"right"`
	Depth   int `json:"depth"`
	Visible int `json:"visible"`
}

// Width returns the horizontal extent of the drawing.
func (s LayoutSummary) Width() int { return s.Right - s.Left }

// PentagonSummary is a pentagon with its precomputed size difference.
type PentagonSummary struct {
	diff.Pentagon
	SizeDiff int `json:"size_diff"`
}

// DiffSummary is the cacheable part of a comparison.
type DiffSummary struct {
	Left            string            `json:"left"`
	Right           string            `json:"right"`
	Nodes           int               `json:"nodes"`
	Pentagons       []PentagonSummary `json:"pentagons"`
	Nogoods         []diff.NogoodStat `json:"nogoods,omitempty"`
	TotalEliminated int               `json:"total_eliminated"`
}

// GroupSummary is one group of equivalent subtrees.
type GroupSummary struct {
	analysis.Group
	Solutions int    `json:"solutions,omitempty"`
	Shape     string `json:"shape,omitempty"`
}

// AnalysisSummary is the result of a shape or identical-subtree analysis.
type AnalysisSummary struct {
	Kind   string         `json:"kind"`
	Labels string         `json:"labels,omitempty"`
	Groups []GroupSummary `json:"groups"`
}

// BySizeDiff returns the pentagons ordered by decreasing size difference.
// Ties keep traversal order.
func (s *DiffSummary) BySizeDiff() []PentagonSummary {
	out := slices.Clone(s.Pentagons)
	slices.SortStableFunc(out, func(a, b PentagonSummary) int { return b.SizeDiff - a.SizeDiff })
	return out
}

// SummarizeDiff extracts the cacheable part of r. Pentagons keep traversal
// order.
func SummarizeDiff(r *diff.Result) *DiffSummary {
	s := &DiffSummary{
		Left:            r.Left.Title,
		Right:           r.Right.Title,
		Nodes:           r.Merged.Tree.Len(),
		Nogoods:         r.NogoodRanking(),
		TotalEliminated: r.TotalEliminated,
	}
	for _, p := range r.Pentagons {
		s.Pentagons = append(s.Pentagons, PentagonSummary{Pentagon: p, SizeDiff: p.SizeDiff()})
	}
	return s
}

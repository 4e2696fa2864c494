package diff

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/builder"
	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

func exec(t *testing.T, title string, msgs []builder.Message) *execution.Execution {
	t.Helper()
	ex := execution.New(title, false)
	b := builder.New(ex, builder.Options{}, log.New(io.Discard))
	if err := b.Build(context.Background(), msgs); err != nil {
		t.Fatal(err)
	}
	return ex
}

// twoLeaves is root -> [first, second] with the given leaf statuses.
func twoLeaves(first, second tree.Status) []builder.Message {
	return []builder.Message{
		{ID: 1, PID: builder.NoParent, Kids: 2, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Status: first, Label: "x=1"},
		{ID: 3, PID: 1, Alt: 1, Status: second, Label: "x!=1"},
	}
}

func sample() []builder.Message {
	return []builder.Message{
		{ID: 1, PID: builder.NoParent, Kids: 2, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Status: tree.Failed, Label: "x=1"},
		{ID: 3, PID: 1, Alt: 1, Kids: 2, Status: tree.Branch, Label: "x!=1"},
		{ID: 4, PID: 3, Alt: 0, Status: tree.Solved, Label: "y=2"},
		{ID: 5, PID: 3, Alt: 1, Status: tree.Failed, Label: "y!=2"},
	}
}

func TestCompareWithItself(t *testing.T) {
	ex := exec(t, "a", sample())
	res := Compare(ex, ex, Options{LabelSensitive: true})

	if res.Len() != 0 {
		t.Errorf("self comparison found %d pentagons", res.Len())
	}
	if !tree.CompareSubtrees(res.Merged.Tree, 0, ex.Tree, 0) {
		t.Error("merged tree differs from source")
	}
	if res.TotalEliminated != 0 || len(res.Nogoods) != 0 {
		t.Error("self comparison attributed nogoods")
	}
	if got := res.Merged.Label(res.Merged.Tree.Child(0, 1)); got != "x!=1" {
		t.Errorf("merged label = %q", got)
	}
}

func TestCompareOneDifferentLeaf(t *testing.T) {
	a := exec(t, "a", twoLeaves(tree.Failed, tree.Failed))
	b := exec(t, "b", twoLeaves(tree.Failed, tree.Solved))
	res := Compare(a, b, Options{})

	if res.Len() != 1 {
		t.Fatalf("pentagons = %d, want 1", res.Len())
	}
	p := res.Pentagons[0]
	if p.Left != 1 || p.Right != 1 {
		t.Errorf("pentagon sizes = %d/%d, want 1/1", p.Left, p.Right)
	}
	mt := res.Merged.Tree
	pn := mt.Node(p.Node)
	if pn.Status() != tree.Merging || pn.NumChildren() != 2 {
		t.Errorf("pentagon node = %s with %d children", pn.Status(), pn.NumChildren())
	}
	if s := mt.Node(mt.Child(p.Node, 1)).Status(); s != tree.Solved {
		t.Errorf("right side status = %s", s)
	}
	if mt.Node(mt.Root()).IsOpen() {
		t.Error("merged root should be closed")
	}
}

func TestCompareDomainLines(t *testing.T) {
	left := twoLeaves(tree.Failed, tree.Failed)
	left[2].Info = "x: 1..3\ny: 2"
	right := twoLeaves(tree.Failed, tree.Solved)
	right[2].Info = "x: 1..2\ny: 2"
	res := Compare(exec(t, "a", left), exec(t, "b", right), Options{})

	if res.Len() != 1 {
		t.Fatalf("pentagons = %d, want 1", res.Len())
	}
	p := res.Pentagons[0]
	if p.Info != "x: 1..3\ny: 2" || p.Domains != "x: 1..3 | x: 1..2\n" {
		t.Errorf("pentagon info = %q, domains = %q", p.Info, p.Domains)
	}
}

func TestCompareUnilateral(t *testing.T) {
	left := twoLeaves(tree.Failed, tree.Failed)
	right := []builder.Message{
		{ID: 1, PID: builder.NoParent, Kids: 4, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Status: tree.Failed},
		{ID: 3, PID: 1, Alt: 1, Status: tree.Failed},
		{ID: 4, PID: 1, Alt: 2, Status: tree.Failed, Info: "extra"},
		// Alt 3 stays undetermined and must not produce a pentagon.
	}
	res := Compare(exec(t, "a", left), exec(t, "b", right), Options{})

	if res.Len() != 1 {
		t.Fatalf("pentagons = %d, want 1", res.Len())
	}
	p := res.Pentagons[0]
	if p.Left != 0 || p.Right != 1 || p.Info != "extra" {
		t.Errorf("pentagon = %+v", p)
	}
	if n := res.Merged.Tree.NumChildren(p.Node); n != 1 {
		t.Errorf("unilateral pentagon children = %d", n)
	}
	if n := res.Merged.Tree.NumChildren(0); n != 4 {
		t.Errorf("merged root children = %d, want 4", n)
	}
}

func TestCompareLabelSensitive(t *testing.T) {
	relabeled := sample()
	relabeled[3].Label = "y = 3"
	a, b := exec(t, "a", sample()), exec(t, "b", relabeled)

	if res := Compare(a, b, Options{}); res.Len() != 0 {
		t.Errorf("label-blind comparison found %d pentagons", res.Len())
	}
	res := Compare(a, b, Options{LabelSensitive: true})
	if res.Len() != 1 {
		t.Fatalf("label-sensitive comparison found %d pentagons", res.Len())
	}

	spaced := sample()
	spaced[3].Label = "y == 2"
	if res := Compare(a, exec(t, "c", spaced), Options{LabelSensitive: true}); res.Len() != 0 {
		t.Error("normalized labels should compare equal")
	}
}

func TestNogoodAttribution(t *testing.T) {
	tests := []struct {
		name  string
		ids   []int64
		want  map[int64]int
		total int
	}{
		{"even", []int64{1, 2}, map[int64]int{1: 2, 2: 2}, 4},
		{"remainder", []int64{1, 2, 3}, map[int64]int{1: 2, 2: 1, 3: 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left := twoLeaves(tree.Failed, tree.Failed)
			left[2].NogoodIDs = tt.ids
			right := []builder.Message{
				{ID: 1, PID: builder.NoParent, Kids: 2, Status: tree.Branch},
				{ID: 2, PID: 1, Alt: 0, Status: tree.Failed},
				{ID: 3, PID: 1, Alt: 1, Kids: 2, Status: tree.Branch},
				{ID: 4, PID: 3, Alt: 0, Status: tree.Failed},
				{ID: 5, PID: 3, Alt: 1, Kids: 2, Status: tree.Branch},
				{ID: 6, PID: 5, Alt: 0, Status: tree.Failed},
				{ID: 7, PID: 5, Alt: 1, Status: tree.Failed},
			}
			lex := exec(t, "a", left)
			lex.Data.SetNogood(1, "x!=1")
			res := Compare(lex, exec(t, "b", right), Options{})

			if res.Len() != 1 || res.Pentagons[0].Right != 5 {
				t.Fatalf("pentagons = %+v", res.Pentagons)
			}
			if res.TotalEliminated != tt.total {
				t.Errorf("TotalEliminated = %d, want %d", res.TotalEliminated, tt.total)
			}
			sum := 0
			for id, want := range tt.want {
				st := res.Nogoods[id]
				if st == nil || st.Eliminated != want || st.Occurrences != 1 {
					t.Errorf("nogood %d = %+v, want eliminated %d", id, st, want)
					continue
				}
				sum += st.Eliminated
			}
			if sum != res.TotalEliminated {
				t.Errorf("shares sum to %d, total %d", sum, res.TotalEliminated)
			}
			if res.Nogoods[1].Clause != "x!=1" {
				t.Errorf("clause = %q", res.Nogoods[1].Clause)
			}
			if rank := res.NogoodRanking(); rank[0].ID != 1 {
				t.Errorf("ranking = %+v", rank)
			}
		})
	}
}

func TestResultNavigation(t *testing.T) {
	r := &Result{Pentagons: []Pentagon{{Left: 1, Right: 1}, {Left: 0, Right: 7}, {Left: 3, Right: 1}}}
	if r.Next(0) != 1 || r.Next(2) != -1 || r.Prev(0) != -1 || r.Prev(2) != 1 {
		t.Error("Next/Prev out of range handling")
	}
	sorted := r.SortedBySizeDiff()
	if sorted[0].Right != 7 || sorted[1].Left != 3 || sorted[2].Left != 1 {
		t.Errorf("SortedBySizeDiff = %+v", sorted)
	}
}

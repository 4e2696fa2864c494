package analysis

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/builder"
	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/layout"
	"github.com/matzehuels/cptree/pkg/tree"
)

func exec(t *testing.T, msgs []builder.Message) *execution.Execution {
	t.Helper()
	ex := execution.New("run", false)
	if err := builder.New(ex, builder.Options{}, log.New(io.Discard)).Build(context.Background(), msgs); err != nil {
		t.Fatal(err)
	}
	return ex
}

// chains builds root -> [a1 -> b1 -> c1, a2 -> b2 -> c2] with failed leaves.
func chains(t *testing.T) (*execution.Execution, map[string]int) {
	ex := exec(t, []builder.Message{
		{ID: 1, PID: builder.NoParent, Kids: 2, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Kids: 1, Status: tree.Branch},
		{ID: 3, PID: 1, Alt: 1, Kids: 1, Status: tree.Branch},
		{ID: 4, PID: 2, Kids: 1, Status: tree.Branch},
		{ID: 5, PID: 3, Kids: 1, Status: tree.Branch},
		{ID: 6, PID: 4, Status: tree.Failed},
		{ID: 7, PID: 5, Status: tree.Failed},
	})
	ids := make(map[string]int)
	for name, sid := range map[string]uint64{"a1": 2, "a2": 3, "b1": 4, "b2": 5, "c1": 6, "c2": 7} {
		ids[name], _ = ex.Data.GID(sid)
	}
	return ex, ids
}

// twins builds root -> [x=1 -> [y=1, y!=1], x!=1 -> [<l>=1, <l>!=1]].
func twins(t *testing.T, rightVar string) *execution.Execution {
	return exec(t, []builder.Message{
		{ID: 1, PID: builder.NoParent, Kids: 2, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Kids: 2, Status: tree.Branch, Label: "x=1"},
		{ID: 3, PID: 1, Alt: 1, Kids: 2, Status: tree.Branch, Label: "x!=1"},
		{ID: 4, PID: 2, Alt: 0, Status: tree.Failed, Label: "y=1"},
		{ID: 5, PID: 2, Alt: 1, Status: tree.Solved, Label: "y!=1"},
		{ID: 6, PID: 3, Alt: 0, Status: tree.Failed, Label: rightVar + "=2"},
		{ID: 7, PID: 3, Alt: 1, Status: tree.Solved, Label: rightVar + "!=2"},
	})
}

func containsGroup[G any, PG grouping[G]](groups []G, nodes ...int) bool {
	for i := range groups {
		g := PG(&groups[i]).group()
		if slices.Equal(g.Nodes, nodes) {
			return true
		}
	}
	return false
}

func TestEliminateSubsumed(t *testing.T) {
	ex, ids := chains(t)
	groups := FindIdentical(ex, LabelsIgnore)
	if len(groups) != 3 {
		t.Fatalf("identical groups = %d, want 3", len(groups))
	}

	kept := EliminateSubsumed(ex.Tree, groups)
	if len(kept) != 1 {
		t.Fatalf("after elimination %d groups, want 1", len(kept))
	}
	if !slices.Equal(kept[0].Nodes, []int{ids["a1"], ids["a2"]}) {
		t.Errorf("kept group = %v", kept[0].Nodes)
	}
	if kept[0].Height != 3 || kept[0].Size != 3 {
		t.Errorf("kept group height/size = %d/%d", kept[0].Height, kept[0].Size)
	}
}

func TestEliminateSubsumedKeepsUnrelated(t *testing.T) {
	ex, ids := chains(t)
	groups := []SubtreeGroup{
		{Group{Nodes: []int{ids["b2"], ids["b1"]}, Height: 2}},
		{Group{Nodes: []int{ids["c1"]}, Height: 1}},
	}
	kept := EliminateSubsumed(ex.Tree, groups)
	if len(kept) != 1 || kept[0].Nodes[0] != min(ids["b1"], ids["b2"]) {
		t.Errorf("kept = %+v", kept)
	}
}

func TestShapesIgnoreLabelsButIdenticalDoesNot(t *testing.T) {
	ex := twins(t, "z")
	left, _ := ex.Data.GID(2)
	right, _ := ex.Data.GID(3)

	ex.Tree.Lock()
	shapes := CollectShapes(ex.Tree, layout.New(layout.DefaultOptions()))
	ex.Tree.Unlock()
	if !containsGroup(shapes, left, right) {
		t.Error("equal-shaped subtrees should share a shape group")
	}
	for _, g := range shapes {
		if slices.Contains(g.Nodes, left) && g.Solutions != 1 {
			t.Errorf("Solutions = %d, want 1", g.Solutions)
		}
	}

	if !containsGroup(FindIdentical(ex, LabelsIgnore), left, right) {
		t.Error("label-blind identity should group the twins")
	}
	if containsGroup(FindIdentical(ex, LabelsFull), left, right) {
		t.Error("label-sensitive identity should separate the twins")
	}
	if containsGroup(FindIdentical(ex, LabelsVars), left, right) {
		t.Error("different branching variables should separate the twins")
	}
}

func TestVarsModeGroupsSameVariables(t *testing.T) {
	ex := twins(t, "y")
	left, _ := ex.Data.GID(2)
	right, _ := ex.Data.GID(3)
	if !containsGroup(FindIdentical(ex, LabelsVars), left, right) {
		t.Error("same variables should group in vars mode")
	}
	if containsGroup(FindIdentical(ex, LabelsFull), left, right) {
		t.Error("different values should separate in full mode")
	}
}

func TestCollectShapesCoversEveryNode(t *testing.T) {
	ex, _ := chains(t)
	ex.Tree.Lock()
	ex.Tree.ToggleHidden(ex.Tree.Child(0, 0))
	groups := CollectShapes(ex.Tree, layout.New(layout.Options{}))
	ex.Tree.Unlock()

	total := 0
	for _, g := range groups {
		total += g.Count()
	}
	if total != ex.Tree.Len() {
		t.Errorf("groups cover %d nodes, want %d", total, ex.Tree.Len())
	}
	if ex.Tree.Node(ex.Tree.Child(0, 0)).IsHidden() {
		t.Error("CollectShapes should expand hidden nodes")
	}
}

func TestFilter(t *testing.T) {
	groups := []SubtreeGroup{
		{Group{Nodes: []int{1, 2}, Size: 3, Height: 2}},
		{Group{Nodes: []int{3, 4, 5}, Size: 9, Height: 4}},
		{Group{Nodes: []int{6, 7, 8, 9}, Size: 1, Height: 1}},
		{Group{Nodes: []int{10}, Size: 50, Height: 5}},
	}
	tests := []struct {
		name   string
		filter Filter
		first  int
		n      int
	}{
		{"default", DefaultFilter(), 3, 2},
		{"by count", Filter{MinHeight: 1, MinCount: 2, SortBy: SortByCount}, 6, 3},
		{"by height", Filter{MinHeight: 1, MinCount: 1, SortBy: SortByHeight}, 10, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.filter, groups)
			if len(got) != tt.n || got[0].Nodes[0] != tt.first {
				t.Errorf("Apply = %+v", got)
			}
		})
	}
}

func TestParseModes(t *testing.T) {
	if m, err := ParseLabelMode("VARS"); err != nil || m != LabelsVars {
		t.Errorf("ParseLabelMode = %v, %v", m, err)
	}
	if _, err := ParseLabelMode("nope"); err == nil {
		t.Error("expected error")
	}
	if k, err := ParseSortKey("height"); err != nil || k != SortByHeight {
		t.Errorf("ParseSortKey = %v, %v", k, err)
	}
}

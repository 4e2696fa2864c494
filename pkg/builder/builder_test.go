package builder

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/tree"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func sampleMessages() []Message {
	return []Message{
		{ID: 1, PID: NoParent, Kids: 2, Status: tree.Branch},
		{ID: 2, PID: 1, Alt: 0, Status: tree.Failed, Label: "x=1"},
		{ID: 3, PID: 1, Alt: 1, Kids: 2, Status: tree.Branch, Label: "x!=1"},
		{ID: 4, PID: 3, Alt: 0, Status: tree.Solved, Label: "y=2"},
		{ID: 5, PID: 3, Alt: 1, Status: tree.Failed, Label: "y!=2"},
	}
}

func build(t *testing.T, ex *execution.Execution, msgs []Message) *Builder {
	t.Helper()
	b := New(ex, Options{}, quietLogger())
	if err := b.Build(context.Background(), msgs); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func TestBuildInOrder(t *testing.T) {
	ex := execution.New("run", false)
	build(t, ex, sampleMessages())

	tr := ex.Tree
	if tr.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tr.Len())
	}
	want := tree.Statistics{Solutions: 1, Failures: 2, Choices: 2, MaxDepth: 3}
	if got := tr.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	b := tr.Child(tr.Root(), 1)
	if got := ex.Label(b); got != "x!=1" {
		t.Errorf("Label = %q", got)
	}
	if tr.Node(tr.Root()).IsOpen() {
		t.Error("root should be closed")
	}
}

func TestBuildOutOfOrder(t *testing.T) {
	msgs := sampleMessages()
	reordered := []Message{msgs[4], msgs[3], msgs[0], msgs[1], msgs[2]}
	reordered[0].ThreadID = 1
	reordered[1].ThreadID = 2

	ex := execution.New("run", false)
	b := build(t, ex, reordered)

	if b.Pending() != 0 {
		t.Errorf("Pending = %d", b.Pending())
	}
	ref := execution.New("ref", false)
	build(t, ref, sampleMessages())
	if !tree.CompareSubtrees(ex.Tree, ex.Tree.Root(), ref.Tree, ref.Tree.Root()) {
		t.Error("out-of-order build differs from in-order build")
	}
	if got, want := ex.Tree.Stats(), ref.Tree.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestOrphanIsDropped(t *testing.T) {
	msgs := append(sampleMessages()[:1], Message{ID: 9, PID: 77, Status: tree.Failed})
	ex := execution.New("run", false)
	b := build(t, ex, msgs)
	if b.Pending() != 0 {
		t.Errorf("Pending = %d after finish", b.Pending())
	}
	if _, ok := ex.Data.GID(9); ok {
		t.Error("orphan should not be linked")
	}
}

func TestDuplicateAndBadAlternative(t *testing.T) {
	msgs := append(sampleMessages(),
		Message{ID: 2, PID: 1, Alt: 0, Status: tree.Solved},
		Message{ID: 10, PID: 1, Alt: 5, Status: tree.Failed},
		Message{ID: 11, PID: NoParent, Kids: 1, Status: tree.Branch},
	)
	ex := execution.New("run", false)
	build(t, ex, msgs)
	if ex.Tree.Len() != 5 {
		t.Errorf("Len = %d, want 5", ex.Tree.Len())
	}
	if s := ex.Tree.Node(ex.Tree.Child(0, 0)).Status(); s != tree.Failed {
		t.Errorf("duplicate message changed status to %s", s)
	}
}

func TestSkippedUpgrade(t *testing.T) {
	tests := []struct {
		name     string
		msgs     []Message
		status   tree.Status
		kids     int
		len      int
		rootOpen bool
	}{
		{
			name: "failed",
			msgs: []Message{
				{ID: 1, PID: NoParent, Kids: 1, Status: tree.Branch},
				{ID: 2, PID: 1, Status: tree.Skipped},
				{ID: 2, PID: 1, Status: tree.Failed, NogoodIDs: []int64{4}},
			},
			status: tree.Failed,
			len:    2,
		},
		{
			name: "branch with children",
			msgs: []Message{
				{ID: 1, PID: NoParent, Kids: 2, Status: tree.Branch},
				{ID: 2, PID: 1, Alt: 0, Status: tree.Skipped},
				{ID: 3, PID: 1, Alt: 1, Status: tree.Failed},
				{ID: 2, PID: 1, Alt: 0, Kids: 2, Status: tree.Branch, NogoodIDs: []int64{4}},
				{ID: 4, PID: 2, Alt: 0, Status: tree.Failed},
				{ID: 5, PID: 2, Alt: 1, Status: tree.Solved},
			},
			status: tree.Branch,
			kids:   2,
			len:    5,
		},
		{
			name: "branch still open",
			msgs: []Message{
				{ID: 1, PID: NoParent, Kids: 2, Status: tree.Branch},
				{ID: 2, PID: 1, Alt: 0, Status: tree.Skipped},
				{ID: 3, PID: 1, Alt: 1, Status: tree.Failed},
				{ID: 2, PID: 1, Alt: 0, Kids: 2, Status: tree.Branch, NogoodIDs: []int64{4}},
				{ID: 4, PID: 2, Alt: 0, Status: tree.Failed},
			},
			status:   tree.Branch,
			kids:     2,
			len:      5,
			rootOpen: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := execution.New("run", false)
			build(t, ex, tt.msgs)
			tr := ex.Tree

			gid, _ := ex.Data.GID(2)
			if s := tr.Node(gid).Status(); s != tt.status {
				t.Errorf("status = %s, want %s", s, tt.status)
			}
			if n := tr.NumChildren(gid); n != tt.kids {
				t.Errorf("children = %d, want %d", n, tt.kids)
			}
			if tr.Len() != tt.len {
				t.Errorf("Len = %d, want %d", tr.Len(), tt.len)
			}
			if e := ex.Data.Entry(gid); len(e.NogoodIDs) != 1 {
				t.Errorf("entry not replaced: %+v", e)
			}
			if got := tr.Node(tr.Root()).IsOpen(); got != tt.rootOpen {
				t.Errorf("root open = %v, want %v", got, tt.rootOpen)
			}
			if got := tr.Stats(); got != tr.GatherStats() {
				t.Errorf("Stats() = %+v, GatherStats() = %+v", got, tr.GatherStats())
			}
		})
	}
}

func TestRestarts(t *testing.T) {
	ex := execution.New("run", true)
	build(t, ex, []Message{
		{ID: 1, PID: NoParent, Kids: 1, Status: tree.Branch, RestartID: 0},
		{ID: 2, PID: 1, Status: tree.Failed},
		{ID: 3, PID: NoParent, Kids: 0, Status: tree.Solved, RestartID: 1},
	})
	tr := ex.Tree
	if got := tr.NumChildren(tr.Root()); got != 2 {
		t.Fatalf("restart roots = %d, want 2", got)
	}
	if s := tr.Node(tr.Child(tr.Root(), 1)).Status(); s != tree.Solved {
		t.Errorf("second restart status = %s", s)
	}
	if tr.Node(tr.Root()).IsOpen() {
		t.Error("root should close once every restart is closed")
	}
}

func TestRunConsumesChannel(t *testing.T) {
	ex := execution.New("run", false)
	b := New(ex, Options{}, quietLogger())
	in := make(chan Message)
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background(), in) }()

	msgs := sampleMessages()
	in <- Message{Type: MsgStart}
	for i := len(msgs) - 1; i >= 0; i-- {
		in <- msgs[i]
	}
	in <- Message{Type: MsgDone}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.Tree.Len() != 5 || b.Pending() != 0 {
		t.Errorf("Len = %d, Pending = %d", ex.Tree.Len(), b.Pending())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := New(execution.New("run", false), Options{}, quietLogger())
	if err := b.Run(ctx, make(chan Message)); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

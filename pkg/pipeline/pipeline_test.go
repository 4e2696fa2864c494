package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/cache"
	"github.com/matzehuels/cptree/pkg/errors"
)

const (
	leftLog = `{"title": "left", "nodes": [
  {"id": 1, "pid": null, "kids": 2, "status": "branch"},
  {"id": 2, "pid": 1, "alt": 0, "status": "failed", "label": "x=1"},
  {"id": 3, "pid": 1, "alt": 1, "kids": 2, "status": "branch", "label": "x!=1"},
  {"id": 4, "pid": 3, "alt": 0, "status": "solved", "label": "y=2"},
  {"id": 5, "pid": 3, "alt": 1, "status": "failed", "label": "y!=2"}
]}`
	rightLog = `{"title": "right", "nodes": [
  {"id": 1, "pid": null, "kids": 2, "status": "branch"},
  {"id": 2, "pid": 1, "alt": 0, "status": "failed", "label": "x=1"},
  {"id": 3, "pid": 1, "alt": 1, "status": "solved", "label": "x!=1"}
]}`
	repeatLog = `{"nodes": [
  {"id": 1, "pid": null, "kids": 2, "status": "branch"},
  {"id": 2, "pid": 1, "alt": 0, "kids": 2, "status": "branch", "label": "x=1"},
  {"id": 3, "pid": 1, "alt": 1, "kids": 2, "status": "branch", "label": "x!=1"},
  {"id": 4, "pid": 2, "alt": 0, "status": "solved", "label": "y=1"},
  {"id": 5, "pid": 2, "alt": 1, "status": "failed", "label": "y!=1"},
  {"id": 6, "pid": 3, "alt": 0, "status": "solved", "label": "y=2"},
  {"id": 7, "pid": 3, "alt": 1, "status": "failed", "label": "y!=2"}
]}`
)

func writeLog(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, log.New(io.Discard))
}

func mustLoad(t *testing.T, r *Runner, path string) *Loaded {
	t.Helper()
	l, err := r.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	return l
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner left nil fields: %+v", r)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t)

	l := mustLoad(t, r, writeLog(t, dir, "repeat.json", repeatLog))
	if l.Execution.Title != "repeat" {
		t.Errorf("Title = %q, want file stem", l.Execution.Title)
	}
	if l.Execution.Tree.Len() != 7 || len(l.Hash) != 64 {
		t.Errorf("nodes = %d, hash = %q", l.Execution.Tree.Len(), l.Hash)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "none.json"), errors.ErrCodeFileNotFound},
		{"wrong extension", writeLog(t, dir, "log.txt", leftLog), errors.ErrCodeInvalidFormat},
		{"malformed", writeLog(t, dir, "bad.json", `{"nodes": [`), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Load(context.Background(), tt.path); !errors.Is(err, tt.code) {
				t.Errorf("Load = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSummarizeCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	l := mustLoad(t, r, writeLog(t, t.TempDir(), "left.json", leftLog))
	opts := DefaultOptions()

	sum, hit, err := r.Summarize(ctx, l, opts)
	if err != nil || hit {
		t.Fatalf("first Summarize: hit=%v err=%v", hit, err)
	}
	if sum.Title != "left" || sum.Stats.Solutions != 1 || sum.Stats.Failures != 2 {
		t.Errorf("summary = %+v", sum)
	}
	again, hit, err := r.Summarize(ctx, l, opts)
	if err != nil || !hit || *again != *sum {
		t.Errorf("second Summarize: %+v hit=%v err=%v", again, hit, err)
	}

	opts.Refresh = true
	if _, hit, _ := r.Summarize(ctx, l, opts); hit {
		t.Error("Refresh still served from cache")
	}
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	l := mustLoad(t, r, writeLog(t, t.TempDir(), "left.json", leftLog))

	sum, hit, err := r.Layout(ctx, l, DefaultOptions())
	if err != nil || hit {
		t.Fatalf("Layout: hit=%v err=%v", hit, err)
	}
	if sum.Depth != 3 || sum.Visible != 5 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Left >= 0 || sum.Right <= 0 || sum.Width() <= 0 {
		t.Errorf("extent = [%d, %d]", sum.Left, sum.Right)
	}
	if _, hit, _ := r.Layout(ctx, l, DefaultOptions()); !hit {
		t.Error("second Layout missed the cache")
	}
}

func TestCompareSummary(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := newTestRunner(t)
	left := mustLoad(t, r, writeLog(t, dir, "left.json", leftLog))
	right := mustLoad(t, r, writeLog(t, dir, "right.json", rightLog))

	tests := []struct {
		name      string
		a, b      *Loaded
		pentagons int
	}{
		{"self", left, left, 0},
		{"different", left, right, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, hit, err := r.CompareSummary(ctx, tt.a, tt.b, DefaultOptions())
			if err != nil || hit {
				t.Fatalf("CompareSummary: hit=%v err=%v", hit, err)
			}
			if len(sum.Pentagons) != tt.pentagons {
				t.Errorf("pentagons = %d, want %d", len(sum.Pentagons), tt.pentagons)
			}
			cachedSum, hit, err := r.CompareSummary(ctx, tt.a, tt.b, DefaultOptions())
			if err != nil || !hit || len(cachedSum.Pentagons) != tt.pentagons {
				t.Errorf("cached CompareSummary: hit=%v err=%v", hit, err)
			}
		})
	}
}

func TestCompareKeepsMergedTree(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t)
	left := mustLoad(t, r, writeLog(t, dir, "left.json", leftLog))
	right := mustLoad(t, r, writeLog(t, dir, "right.json", rightLog))

	res := r.Compare(context.Background(), left, right, DefaultOptions().Diff)
	sum := SummarizeDiff(res)
	if sum.Nodes != res.Merged.Tree.Len() || sum.Left != "left" || sum.Right != "right" {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Pentagons) != 1 || sum.Pentagons[0].SizeDiff != sum.Pentagons[0].Pentagon.SizeDiff() {
		t.Errorf("pentagons = %+v", sum.Pentagons)
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	l := mustLoad(t, r, writeLog(t, t.TempDir(), "repeat.json", repeatLog))

	for _, kind := range []string{KindShapes, KindSubtrees} {
		t.Run(kind, func(t *testing.T) {
			sum, hit, err := r.Analyze(ctx, l, kind, DefaultOptions())
			if err != nil || hit {
				t.Fatalf("Analyze: hit=%v err=%v", hit, err)
			}
			if len(sum.Groups) != 1 {
				t.Fatalf("groups = %+v", sum.Groups)
			}
			g := sum.Groups[0]
			if g.Count() != 2 || g.Height != 2 {
				t.Errorf("group = %+v", g)
			}
			if _, hit, _ := r.Analyze(ctx, l, kind, DefaultOptions()); !hit {
				t.Error("second Analyze missed the cache")
			}
		})
	}

	if _, _, err := r.Analyze(ctx, l, "colors", DefaultOptions()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown kind: %v", err)
	}
}

func TestAnalyzeKeepSubsumed(t *testing.T) {
	r := newTestRunner(t)
	l := mustLoad(t, r, writeLog(t, t.TempDir(), "repeat.json", repeatLog))
	opts := DefaultOptions()
	opts.KeepSubsumed = true
	opts.Filter.MinHeight = 1

	sum, _, err := r.Analyze(context.Background(), l, KindSubtrees, opts)
	if err != nil {
		t.Fatal(err)
	}
	// the branch pair plus the solved and failed leaf pairs
	if len(sum.Groups) != 3 {
		t.Errorf("groups = %+v", sum.Groups)
	}
}

func TestCachedEncodeFailure(t *testing.T) {
	type result struct{ C chan int }
	r := newTestRunner(t)
	_, hit, err := cached(context.Background(), r, "unencodable", 0, false, func() (*result, error) {
		return &result{C: make(chan int)}, nil
	})
	if hit || !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("hit = %v, err = %v, want %s", hit, err, errors.ErrCodeInternal)
	}
}

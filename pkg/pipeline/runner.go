package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/builder"
	"github.com/matzehuels/cptree/pkg/cache"
	"github.com/matzehuels/cptree/pkg/diff"
	"github.com/matzehuels/cptree/pkg/errors"
	cptreeio "github.com/matzehuels/cptree/pkg/io"
	"github.com/matzehuels/cptree/pkg/layout"
	"github.com/matzehuels/cptree/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no results of its own; several goroutines may share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the lifetime of cached results when positive.
	TTL time.Duration
	// Builder configures tree construction in Load.
	Builder builder.Options
}

// NewRunner creates a runner. A nil keyer means cache.DefaultKeyer, a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load reads and builds the search log at path.
func (r *Runner) Load(ctx context.Context, path string) (l *Loaded, err error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	defer func() {
		n := 0
		if l != nil {
			n = l.Execution.Tree.Len()
		}
		hooks.OnLoadComplete(ctx, path, n, time.Since(start), err)
	}()

	if err := errors.ValidateLogPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "search log %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	ex, err := cptreeio.ReadJSONWithOptions(ctx, bytes.NewReader(data), r.Builder, r.Logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	if ex.Title == "" {
		ex.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	r.Logger.Info("loaded search log",
		"path", path,
		"nodes", ex.Tree.Len(),
		"duration", time.Since(start))
	return &Loaded{Path: path, Hash: cache.Hash(data), Execution: ex}, nil
}

// Summarize returns the statistics of a loaded tree.
func (r *Runner) Summarize(ctx context.Context, l *Loaded, opts Options) (*TreeSummary, bool, error) {
	key := r.Keyer.TreeKey(l.Hash)
	return cached(ctx, r, key, cache.TreeTTL, opts.Refresh, func() (*TreeSummary, error) {
		ex := l.Execution
		ex.Tree.RLock()
		defer ex.Tree.RUnlock()
		return &TreeSummary{
			Title:    ex.Title,
			Nodes:    ex.Tree.Len(),
			Restarts: ex.Restarts,
			Stats:    ex.Tree.GatherStats(),
		}, nil
	})
}

// Layout returns the extent of the laid-out tree, laying it out on a cache
// miss. Callers that need node positions use [Runner.LayoutTree], which
// always runs.
func (r *Runner) Layout(ctx context.Context, l *Loaded, opts Options) (*LayoutSummary, bool, error) {
	key := r.Keyer.LayoutKey(l.Hash, cache.LayoutKeyOpts{
		MinimalSeparation: opts.Layout.MinimalSeparation,
		LabelCharWidth:    opts.Layout.LabelCharWidth,
	})
	return cached(ctx, r, key, cache.TreeTTL, opts.Refresh, func() (*LayoutSummary, error) {
		return r.LayoutTree(ctx, l, opts.Layout), nil
	})
}

// LayoutTree lays out the visible part of l's tree and returns its extent.
func (r *Runner) LayoutTree(ctx context.Context, l *Loaded, opts layout.Options) *LayoutSummary {
	t := l.Execution.Tree
	t.Lock()
	defer t.Unlock()

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.Len())
	start := time.Now()

	root := t.Root()
	layout.New(opts).Layout(t, root)
	bb := layout.ShapeOf(t, root).BoundingBox()
	sum := &LayoutSummary{
		Left:    bb.Left,
		Right:   bb.Right,
		Depth:   layout.ShapeOf(t, root).Depth(),
		Visible: len(layout.Positions(t, root)),
	}

	hooks.OnLayoutComplete(ctx, time.Since(start), nil)
	r.Logger.Debug("computed layout",
		"width", sum.Width(),
		"depth", sum.Depth,
		"duration", time.Since(start))
	return sum
}

// Compare merges left and right. The result holds the merged tree and is
// not cached.
func (r *Runner) Compare(ctx context.Context, left, right *Loaded, opts diff.Options) *diff.Result {
	hooks := observability.Pipeline()
	hooks.OnCompareStart(ctx)
	start := time.Now()

	res := diff.Compare(left.Execution, right.Execution, opts)

	hooks.OnCompareComplete(ctx, res.Len(), time.Since(start), nil)
	r.Logger.Info("compared trees",
		"left", left.Execution.Title,
		"right", right.Execution.Title,
		"pentagons", res.Len(),
		"duration", time.Since(start))
	return res
}

// CompareSummary returns the summary of comparing left and right.
func (r *Runner) CompareSummary(ctx context.Context, left, right *Loaded, opts Options) (*DiffSummary, bool, error) {
	key := r.Keyer.DiffKey(left.Hash, right.Hash, cache.DiffKeyOpts{
		LabelSensitive: opts.Diff.LabelSensitive,
		IgnoreImplied:  opts.Diff.IgnoreImplied,
	})
	return cached(ctx, r, key, cache.DiffTTL, opts.Refresh, func() (*DiffSummary, error) {
		return SummarizeDiff(r.Compare(ctx, left, right, opts.Diff)), nil
	})
}

// Analyze groups the subtrees of l. kind is [KindShapes] or [KindSubtrees].
// Shape analysis expands and lays out the whole tree.
func (r *Runner) Analyze(ctx context.Context, l *Loaded, kind string, opts Options) (*AnalysisSummary, bool, error) {
	if kind != KindShapes && kind != KindSubtrees {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "unknown analysis %q", kind)
	}
	keyOpts := cache.AnalysisKeyOpts{
		Kind:      kind,
		MinHeight: opts.Filter.MinHeight,
		MinCount:  opts.Filter.MinCount,
		Sort:      opts.Filter.SortBy.String(),
		Subsumed:  opts.KeepSubsumed,
	}
	if kind == KindSubtrees {
		keyOpts.Labels = opts.Labels.String()
	} else {
		keyOpts.Separation = opts.Layout.MinimalSeparation
	}
	key := r.Keyer.AnalysisKey(l.Hash, keyOpts)

	return cached(ctx, r, key, cache.AnalysisTTL, opts.Refresh, func() (sum *AnalysisSummary, err error) {
		hooks := observability.Pipeline()
		hooks.OnAnalyzeStart(ctx, kind)
		start := time.Now()
		defer func() {
			n := 0
			if sum != nil {
				n = len(sum.Groups)
			}
			hooks.OnAnalyzeComplete(ctx, kind, n, time.Since(start), err)
		}()

		t := l.Execution.Tree
		t.Lock()
		defer t.Unlock()

		sum = &AnalysisSummary{Kind: kind, Labels: keyOpts.Labels}
		switch kind {
		case KindShapes:
			groups := analysis.CollectShapes(t, layout.New(opts.Layout))
			if !opts.KeepSubsumed {
				groups = analysis.EliminateSubsumed(t, groups)
			}
			for _, g := range analysis.Apply(opts.Filter, groups) {
				sum.Groups = append(sum.Groups, GroupSummary{
					Group:     g.Group,
					Solutions: g.Solutions,
					Shape:     g.Shape.String(),
				})
			}
		case KindSubtrees:
			groups := analysis.FindIdentical(l.Execution, opts.Labels)
			if !opts.KeepSubsumed {
				groups = analysis.EliminateSubsumed(t, groups)
			}
			for _, g := range analysis.Apply(opts.Filter, groups) {
				sum.Groups = append(sum.Groups, GroupSummary{Group: g.Group})
			}
		}

		r.Logger.Info("analyzed subtrees",
			"kind", kind,
			"groups", len(sum.Groups),
			"duration", time.Since(start))
		return sum, nil
	})
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached returns the value stored under key, or computes and stores it.
// Cache failures are logged and never fail the stage.
func cached[T any](ctx context.Context, r *Runner, key string, ttl time.Duration, refresh bool, compute func() (*T, error)) (*T, bool, error) {
	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		} else if hit {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, true, nil
			}
			r.Logger.Debug("discarding undecodable cache entry", "key", key)
		}
	}

	v, err := compute()
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode result")
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, false, nil
}

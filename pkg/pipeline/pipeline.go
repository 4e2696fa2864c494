// Package pipeline runs the cptree processing stages with caching.
//
// The CLI and any other front end share this package so a search log is
// loaded, laid out, compared and analyzed the same way everywhere.
//
// # Stages
//
//  1. Load: read a JSON search log and build its execution
//  2. Layout: compute shapes and offsets of the visible tree
//  3. Compare: merge two executions and locate their differences
//  4. Analyze: group subtrees by shape or by structural identity
//
// Stages that produce a plain summary (statistics, layout extent, diff and
// analysis results) are cached under a key derived from the log's content
// hash and the options in effect. Stages that leave state behind in a tree,
// such as the merged tree of a comparison, are never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	left, err := runner.Load(ctx, "a.json")
//	right, err := runner.Load(ctx, "b.json")
//	sum, hit, err := runner.CompareSummary(ctx, left, right, opts.Diff)
package pipeline

import (
	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/diff"
	"github.com/matzehuels/cptree/pkg/execution"
	"github.com/matzehuels/cptree/pkg/layout"
)

// Analysis kinds.
const (
	KindShapes   = "shapes"
	KindSubtrees = "subtrees"
)

// Loaded is an execution together with the identity of the log it came from.
type Loaded struct {
	Path string
	// Hash is the SHA-256 of the log file content.
	Hash      string
	Execution *execution.Execution
}

// Options collects the settings of every stage.
type Options struct {
	Layout layout.Options
	Diff   diff.Options
	Filter analysis.Filter
	Labels analysis.LabelMode
	// KeepSubsumed disables removal of groups nested in other groups.
	KeepSubsumed bool
	// Refresh recomputes results even when cached.
	Refresh bool
}

// DefaultOptions returns the settings used without a config file.
func DefaultOptions() Options {
	return Options{
		Layout: layout.DefaultOptions(),
		Diff:   diff.Options{LabelSensitive: true},
		Filter: analysis.DefaultFilter(),
		Labels: analysis.LabelsIgnore,
	}
}

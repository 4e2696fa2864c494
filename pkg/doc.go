// Package pkg provides the core libraries for cptree, a toolkit for the
// search trees of constraint solvers.
//
// # Overview
//
// A solver records its search as a stream of nodes: branches, failures,
// solutions. cptree rebuilds the tree from that stream, draws it compactly,
// compares two runs and finds repeated structure. The pkg directory is
// organized into three areas:
//
//  1. Structure - the node arena, tree flags and the execution record
//  2. Algorithms - layout, comparison and subtree grouping
//  3. Infrastructure - search log I/O, caching, configuration and metrics
//
// # Architecture
//
// The typical data flow through cptree:
//
//	Search log (JSON)
//	         ↓
//	    [io] + [builder] (rebuild the tree, tolerate out-of-order nodes)
//	         ↓
//	    [execution] (tree + per-node solver data)
//	         ↓
//	    [layout] / [diff] / [analysis]
//	         ↓
//	    summaries, merged trees, DOT/SVG/PDF/PNG output
//
// # Quick Start
//
// Load two runs, compare them and lay out the merged tree:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cptree/pkg/diff"
//	    cptreeio "github.com/matzehuels/cptree/pkg/io"
//	    "github.com/matzehuels/cptree/pkg/layout"
//	)
//
//	left, _ := cptreeio.ImportJSON(ctx, "run1.json", nil)
//	right, _ := cptreeio.ImportJSON(ctx, "run2.json", nil)
//
//	res := diff.Compare(left, right, diff.Options{LabelSensitive: true})
//	for _, p := range res.Pentagons {
//	    fmt.Printf("node %d: %d vs %d nodes\n", p.Node, p.Left, p.Right)
//	}
//
//	t := res.Merged.Tree
//	t.Lock()
//	layout.New(layout.DefaultOptions()).Layout(t, t.Root())
//	bb := layout.ShapeOf(t, t.Root()).BoundingBox()
//	t.Unlock()
//
// # Main Packages
//
// ## Structure
//
// [tree] - Arena-backed search tree. Nodes live in fixed-size blocks and are
// addressed by index; status, flags and child counts are packed per node.
// Tree operations never lock; callers lock at operation boundaries.
//
// [execution] - A tree together with the solver data of its nodes (labels,
// nogoods, solutions) and the mapping from solver ids to tree indices.
//
// [builder] - Rebuilds a tree from solver messages, holding back nodes whose
// parent has not arrived yet.
//
// ## Algorithms
//
// [shape] - Per-depth horizontal extents of a drawn subtree.
//
// [layout] - Compact layout: children are placed as close as their shapes
// allow, and shapes are cached on the nodes until the subtree changes.
//
// [diff] - Simultaneous traversal of two trees producing a merged tree with
// pentagon nodes wherever the runs diverge, and nogood attribution.
//
// [analysis] - Groups of subtrees with the same shape or identical structure,
// with subsumption elimination and filtering.
//
// ## Infrastructure
//
// [io] - JSON search logs in both directions.
//
// [render] - Graphviz DOT output and SVG/PDF/PNG conversion.
//
// [pipeline] - Load, summarize, lay out, compare and analyze with cached
// results, used by the CLI.
//
// [cache] - File and Redis cache backends with hashed keys.
//
// [config] - TOML configuration file.
//
// [observability] - Hooks for pipeline, builder and cache events, with a
// Prometheus implementation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/diff/...     # Specific package
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/tree
// [execution]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/execution
// [builder]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/builder
// [shape]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/shape
// [layout]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/layout
// [diff]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/diff
// [analysis]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/analysis
// [io]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/cptree/pkg/observability
package pkg

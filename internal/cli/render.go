package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/errors"
	"github.com/matzehuels/cptree/pkg/execution"
	cptreeio "github.com/matzehuels/cptree/pkg/io"
	"github.com/matzehuels/cptree/pkg/pipeline"
	"github.com/matzehuels/cptree/pkg/render"
	"github.com/matzehuels/cptree/pkg/render/dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file; the extension selects the format
	against    string  // second log; renders the comparison tree
	detailed   bool    // add node ids and info to labels
	maxDepth   int     // stop drawing below this depth
	hideFailed bool    // collapse subtrees without solutions
	hideSize   int     // collapse subtrees with fewer nodes
	highlight  int     // highlight the n-th group of identical subtrees
	scale      float64 // PNG scale factor
	marks      markOpts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [log.json]",
		Short: "Draw a search tree",
		Long: `Draw a search tree with Graphviz. The output format follows the extension
of --output: .dot, .svg, .png, .pdf or .json (search log).

With --against the comparison of both trees is drawn; pentagons are annotated
with the sizes of their two sides. PNG and PDF need rsvg-convert.

Edges carry the branching decisions. With --path only the edges on the path
to the given node are labeled, and the path is drawn bold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--output is required")
			}
			format, err := errors.OutputFormat(opts.output)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], format, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot, .svg, .png, .pdf, .json)")
	cmd.Flags().StringVar(&opts.against, "against", "", "compare with this search log and draw the merged tree")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and solver info")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "do not draw below this depth (0 for no limit)")
	cmd.Flags().BoolVar(&opts.hideFailed, "hide-failed", false, "collapse subtrees without solutions")
	cmd.Flags().IntVar(&opts.hideSize, "hide-size", 0, "collapse subtrees with fewer nodes than this")
	cmd.Flags().IntVar(&opts.highlight, "highlight", 0, "highlight the n-th group of identical subtrees")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	opts.marks.addFlags(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path, format string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	l, err := c.load(ctx, runner, path)
	if err != nil {
		return err
	}
	popts := c.pipelineOptions()
	ex := l.Execution
	annotations := map[int]string{}

	if opts.against != "" {
		right, err := c.load(ctx, runner, opts.against)
		if err != nil {
			return err
		}
		res := runner.Compare(ctx, l, right, popts.Diff)
		ex = res.Merged
		for _, p := range res.Pentagons {
			annotations[p.Node] = fmt.Sprintf("%d | %d", p.Left, p.Right)
		}
	}

	if err := prepareTree(ex, popts, opts); err != nil {
		return err
	}

	prog := newProgress(logger)
	data, err := encode(ctx, ex, format, dot.Options{
		Detailed:    opts.detailed,
		MaxDepth:    opts.maxDepth,
		Annotations: annotations,
	}, opts.scale)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + ex.Title)
	printFile(opts.output)
	return nil
}

// prepareTree applies the hide, highlight and mark options.
func prepareTree(ex *execution.Execution, popts pipeline.Options, opts renderOpts) error {
	t := ex.Tree
	t.Lock()
	defer t.Unlock()

	if opts.highlight > 0 {
		groups := analysis.FindIdentical(ex, popts.Labels)
		if !popts.KeepSubsumed {
			groups = analysis.EliminateSubsumed(t, groups)
		}
		groups = analysis.Apply(popts.Filter, groups)
		if opts.highlight > len(groups) {
			return errors.New(errors.ErrCodeInvalidInput, "--highlight %d: only %d groups", opts.highlight, len(groups))
		}
		t.HighlightSubtrees(groups[opts.highlight-1].Nodes, false)
	}
	if opts.hideFailed {
		t.HideFailed(t.Root(), false)
	}
	if opts.hideSize > 0 {
		t.HideBySize(t.Root(), opts.hideSize)
	}
	return opts.marks.apply(ex)
}

// encode produces the output bytes for format. The tree must not be locked.
func encode(ctx context.Context, ex *execution.Execution, format string, opts dot.Options, scale float64) ([]byte, error) {
	if format == "json" {
		var buf bytes.Buffer
		if err := cptreeio.WriteJSON(ex, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	src := dot.ToDOT(ex, opts)
	if format == "dot" {
		return []byte(src), nil
	}
	svg, err := dot.RenderSVG(ctx, src)
	if err != nil {
		return nil, err
	}
	switch format {
	case "pdf":
		return render.ToPDF(svg)
	case "png":
		return render.ToPNG(svg, scale)
	}
	return svg, nil
}

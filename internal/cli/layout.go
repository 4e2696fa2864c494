package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/layout"
	"github.com/matzehuels/cptree/pkg/pipeline"
)

type layoutOpts struct {
	positions  string // write node positions as JSON
	hideFailed bool   // collapse fully failed subtrees before layout
	hideSize   int    // collapse subtrees smaller than this
	separation int    // 0 keeps the configured separation
	marks      markOpts
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [log.json]",
		Short: "Compute the drawing of a search tree",
		Long: `Compute the drawing of a search tree and print its extent.

With --positions the absolute position of every visible node is written as
JSON. --hide-failed and --hide-size collapse parts of the tree before the
layout; collapsed subtrees are drawn as a single triangle.

--label-branches labels every node with its branching decision and --path
marks the path to one node and labels it; labels widen the drawing.

Extents of full layouts are cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.positions, "positions", "", "write node positions to this JSON file")
	cmd.Flags().BoolVar(&opts.hideFailed, "hide-failed", false, "collapse subtrees without solutions")
	cmd.Flags().IntVar(&opts.hideSize, "hide-size", 0, "collapse subtrees with fewer nodes than this")
	cmd.Flags().IntVar(&opts.separation, "separation", 0, "minimal separation between sibling subtrees (overrides config)")
	opts.marks.addFlags(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, path string, opts layoutOpts) error {
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
	if opts.separation > 0 {
		popts.Layout.MinimalSeparation = opts.separation
	}

	var (
		sum *pipeline.LayoutSummary
		hit bool
	)
	if opts.positions == "" && !opts.hideFailed && opts.hideSize == 0 && !opts.marks.set() {
		sum, hit, err = runner.Layout(ctx, l, popts)
		if err != nil {
			return err
		}
	} else {
		if err := collapse(l, opts); err != nil {
			return err
		}
		sum = runner.LayoutTree(ctx, l, popts.Layout)
	}

	printSuccess("Laid out %s", StyleTitle.Render(l.Execution.Title))
	printKeyValue("width", StyleNumber.Render(itoa(sum.Width())))
	printKeyValue("extent", StyleValue.Render("["+itoa(sum.Left)+", "+itoa(sum.Right)+"]"))
	printKeyValue("depth", StyleNumber.Render(itoa(sum.Depth)))
	printKeyValue("visible", StyleNumber.Render(itoa(sum.Visible)))
	if opts.marks.path >= 0 {
		t := l.Execution.Tree
		t.RLock()
		printKeyValue("path", StyleValue.Render(pathString(t)))
		t.RUnlock()
	}
	printCacheStatus(hit)

	if opts.positions != "" {
		if err := writePositions(l, opts.positions); err != nil {
			return err
		}
		printFile(opts.positions)
	}
	return nil
}

// collapse applies the hide and mark options to l's tree.
func collapse(l *pipeline.Loaded, opts layoutOpts) error {
	t := l.Execution.Tree
	t.Lock()
	defer t.Unlock()
	if opts.hideFailed {
		t.HideFailed(t.Root(), false)
	}
	if opts.hideSize > 0 {
		t.HideBySize(t.Root(), opts.hideSize)
	}
	return opts.marks.apply(l.Execution)
}

func writePositions(l *pipeline.Loaded, path string) error {
	t := l.Execution.Tree
	t.RLock()
	pos := layout.Positions(t, t.Root())
	t.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeJSON(f, pos); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/errors"
	cptreeio "github.com/matzehuels/cptree/pkg/io"
	"github.com/matzehuels/cptree/pkg/pipeline"
	"github.com/matzehuels/cptree/pkg/render/dot"
)

const (
	sortOrder = "order" // traversal order
	sortSize  = "size"  // decreasing size difference
)

type diffOpts struct {
	labels        bool
	ignoreImplied bool
	sort          string
	browse        bool
	dotFile       string
	output        string
	nogoods       int
	asJSON        bool
}

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	opts := diffOpts{sort: sortOrder, nogoods: 10}

	cmd := &cobra.Command{
		Use:   "diff [left.json] [right.json]",
		Short: "Compare two search trees",
		Long: `Compare two search trees node by node.

Where the trees disagree the merged tree holds a pentagon whose two children
are the differing subtrees. Nogoods attached to the right tree are credited
with the nodes their pentagons remove.

Summaries are cached; --browse, --dot and --output need the merged tree and
always recompute it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.sort != sortOrder && opts.sort != sortSize {
				return errors.New(errors.ErrCodeInvalidInput, "invalid sort %q (must be 'order' or 'size')", opts.sort)
			}
			popts := c.pipelineOptions()
			if cmd.Flags().Changed("labels") {
				popts.Diff.LabelSensitive = opts.labels
			}
			if cmd.Flags().Changed("ignore-implied") {
				popts.Diff.IgnoreImplied = opts.ignoreImplied
			}
			return c.runDiff(cmd.Context(), args[0], args[1], popts, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.labels, "labels", true, "treat nodes with different branch labels as different")
	cmd.Flags().BoolVar(&opts.ignoreImplied, "ignore-implied", false, "ignore the implied-decision marker when comparing labels")
	cmd.Flags().StringVar(&opts.sort, "sort", opts.sort, "pentagon order: order (default), size")
	cmd.Flags().BoolVar(&opts.browse, "browse", false, "browse the pentagons interactively")
	cmd.Flags().StringVar(&opts.dotFile, "dot", "", "write the merged tree as Graphviz DOT")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the merged tree as a JSON search log")
	cmd.Flags().IntVar(&opts.nogoods, "nogoods", opts.nogoods, "number of nogoods to list (0 for none)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func (c *CLI) runDiff(ctx context.Context, leftPath, rightPath string, popts pipeline.Options, opts diffOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	left, err := c.load(ctx, runner, leftPath)
	if err != nil {
		return err
	}
	right, err := c.load(ctx, runner, rightPath)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	if !opts.browse && opts.dotFile == "" && opts.output == "" {
		sum, hit, err := runner.CompareSummary(ctx, left, right, popts)
		if err != nil {
			return err
		}
		prog.done("Compared trees")
		return printDiff(sum, hit, opts)
	}

	res := runner.Compare(ctx, left, right, popts.Diff)
	prog.done("Compared trees")
	sum := pipeline.SummarizeDiff(res)

	if opts.output != "" {
		if err := cptreeio.ExportJSON(res.Merged, opts.output); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
	}
	if opts.dotFile != "" {
		if err := os.WriteFile(opts.dotFile, []byte(dot.ToDOT(res.Merged, dot.Options{})), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.dotFile, err)
		}
	}

	if opts.browse {
		if sum.Pentagons == nil {
			printSuccess("Trees are identical")
			return nil
		}
		model := newPentagonBrowser(res, opts.sort == sortSize)
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
			return err
		}
	} else if err := printDiff(sum, false, opts); err != nil {
		return err
	}

	if opts.output != "" {
		printFile(opts.output)
	}
	if opts.dotFile != "" {
		printFile(opts.dotFile)
		printNextStep("Draw it", "dot -Tsvg "+opts.dotFile)
	}
	return nil
}

func printDiff(sum *pipeline.DiffSummary, hit bool, opts diffOpts) error {
	if opts.asJSON {
		return writeJSON(os.Stdout, sum)
	}

	if len(sum.Pentagons) == 0 {
		printSuccess("%s and %s are identical", StyleTitle.Render(sum.Left), StyleTitle.Render(sum.Right))
		printCacheStatus(hit)
		return nil
	}

	printWarning("%d pentagons between %s and %s", len(sum.Pentagons), sum.Left, sum.Right)
	pentagons := sum.Pentagons
	if opts.sort == sortSize {
		pentagons = sum.BySizeDiff()
	}
	rows := make([][]string, len(pentagons))
	for i, p := range pentagons {
		rows[i] = []string{itoa(p.Node), itoa(p.Left), itoa(p.Right), itoa(p.SizeDiff), truncate(p.Info, 40)}
	}
	fmt.Println(renderTable([]string{"Node", "Left", "Right", "Diff", "Info"}, rows))

	if opts.nogoods > 0 && len(sum.Nogoods) > 0 {
		ranking := sum.Nogoods[:min(opts.nogoods, len(sum.Nogoods))]
		rows := make([][]string, len(ranking))
		for i, ng := range ranking {
			rows[i] = []string{fmt.Sprint(ng.ID), itoa(ng.Occurrences), itoa(ng.Eliminated), truncate(ng.Clause, 50)}
		}
		printInfo("Nogoods by eliminated nodes (%d total)", sum.TotalEliminated)
		fmt.Println(renderTable([]string{"Nogood", "Seen", "Eliminated", "Clause"}, rows))
	}
	printCacheStatus(hit)
	return nil
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/errors"
	"github.com/matzehuels/cptree/pkg/pipeline"
)

// analyzeOpts holds the group filter flags shared by shapes and subtrees.
type analyzeOpts struct {
	minHeight    int
	minCount     int
	sort         string
	labels       string
	keepSubsumed bool
	limit        int
	asJSON       bool
}

func (o *analyzeOpts) register(cmd *cobra.Command) {
	def := analysis.DefaultFilter()
	cmd.Flags().IntVar(&o.minHeight, "min-height", def.MinHeight, "smallest subtree height to report")
	cmd.Flags().IntVar(&o.minCount, "min-count", def.MinCount, "smallest group size to report")
	cmd.Flags().StringVar(&o.sort, "sort", def.SortBy.String(), "group order: size, count, height")
	cmd.Flags().BoolVar(&o.keepSubsumed, "keep-subsumed", false, "keep groups nested inside other groups")
	cmd.Flags().IntVar(&o.limit, "limit", 20, "number of groups to print (0 for all)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the groups as JSON")
}

// apply overrides configured values with the flags the user set.
func (o *analyzeOpts) apply(cmd *cobra.Command, popts *pipeline.Options) error {
	f := cmd.Flags()
	if f.Changed("min-height") {
		popts.Filter.MinHeight = o.minHeight
	}
	if f.Changed("min-count") {
		popts.Filter.MinCount = o.minCount
	}
	if f.Changed("sort") {
		key, err := analysis.ParseSortKey(o.sort)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "--sort")
		}
		popts.Filter.SortBy = key
	}
	if f.Changed("labels") {
		mode, err := analysis.ParseLabelMode(o.labels)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "--labels")
		}
		popts.Labels = mode
	}
	if f.Changed("keep-subsumed") {
		popts.KeepSubsumed = o.keepSubsumed
	}
	return nil
}

// shapesCommand creates the shapes command.
func (c *CLI) shapesCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "shapes [log.json]",
		Short: "Group subtrees by the shape of their drawing",
		Long: `Expand and lay out the whole tree, then group all subtrees whose drawings
have the same shape. Groups nested in a repeated enclosing group are dropped
unless --keep-subsumed is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.pipelineOptions()
			if err := opts.apply(cmd, &popts); err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), args[0], pipeline.KindShapes, popts, opts)
		},
	}
	opts.register(cmd)

	return cmd
}

// subtreesCommand creates the subtrees command.
func (c *CLI) subtreesCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "subtrees [log.json]",
		Short: "Group structurally identical subtrees",
		Long: `Find subtrees that are identical in status and structure.

--labels decides how branch labels take part in the comparison:
  ignore  labels are not compared (default)
  full    labels must match exactly
  vars    only the variable of each label must match`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.pipelineOptions()
			if err := opts.apply(cmd, &popts); err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), args[0], pipeline.KindSubtrees, popts, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.labels, "labels", analysis.LabelsIgnore.String(), "label comparison: ignore, full, vars")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, path, kind string, popts pipeline.Options, opts analyzeOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	l, err := c.load(ctx, runner, path)
	if err != nil {
		return err
	}
	sum, hit, err := runner.Analyze(ctx, l, kind, popts)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(os.Stdout, sum)
	}

	if len(sum.Groups) == 0 {
		printInfo("No repeated subtrees in %s", StyleTitle.Render(l.Execution.Title))
		printCacheStatus(hit)
		return nil
	}

	printSuccess("%d groups of %s in %s", len(sum.Groups), kind, StyleTitle.Render(l.Execution.Title))
	groups := sum.Groups
	if opts.limit > 0 && len(groups) > opts.limit {
		groups = groups[:opts.limit]
	}
	headers := []string{"#", "Count", "Size", "Height", "Nodes"}
	if kind == pipeline.KindShapes {
		headers = append(headers, "Solutions")
	}
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{itoa(i + 1), itoa(g.Count()), itoa(g.Size), itoa(g.Height), nodeList(g.Nodes, 6)}
		if kind == pipeline.KindShapes {
			rows[i] = append(rows[i], itoa(g.Solutions))
		}
	}
	fmt.Println(renderTable(headers, rows))
	if len(groups) < len(sum.Groups) {
		printDetail("%d more groups, use --limit 0 to list all", len(sum.Groups)-len(groups))
	}
	printCacheStatus(hit)
	return nil
}

// nodeList formats at most n node ids.
func nodeList(nodes []int, n int) string {
	parts := make([]string, 0, min(n, len(nodes))+1)
	for _, id := range nodes[:min(n, len(nodes))] {
		parts = append(parts, itoa(id))
	}
	if len(nodes) > n {
		parts = append(parts, "…")
	}
	return strings.Join(parts, ", ")
}

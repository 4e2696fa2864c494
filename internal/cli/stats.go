package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/pipeline"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [log.json...]",
		Short: "Print statistics of search trees",
		Long: `Print the number of solutions, failures and choices of each search tree,
together with its depth.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, paths []string, asJSON bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	var all []*pipeline.TreeSummary
	for _, path := range paths {
		l, err := c.load(ctx, runner, path)
		if err != nil {
			return err
		}
		sum, hit, err := runner.Summarize(ctx, l, opts)
		if err != nil {
			return err
		}
		if asJSON {
			all = append(all, sum)
			continue
		}
		printSuccess("%s %s", StyleTitle.Render(sum.Title), StyleDim.Render(path))
		printKeyValue("nodes", StyleNumber.Render(itoa(sum.Nodes)))
		printTreeStats(sum.Stats)
		printCacheStatus(hit)
	}
	if asJSON {
		return writeJSON(os.Stdout, all)
	}
	return nil
}

// load reads a search log behind a spinner.
func (c *CLI) load(ctx context.Context, r *pipeline.Runner, path string) (*pipeline.Loaded, error) {
	spin := newSpinnerWithContext(ctx, "Loading "+filepath.Base(path))
	spin.Start()
	l, err := r.Load(ctx, path)
	spin.Stop()
	return l, err
}

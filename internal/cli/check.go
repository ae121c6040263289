package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arceval/pkg/validate"
)

type checkOpts struct {
	format     string
	duplicates string
	noCache    bool
}

// checkOutput is the JSON form of a check.
type checkOutput struct {
	Valid      bool                 `json:"valid"`
	Violations []validate.Violation `json:"violations"`
	Cycle      []string             `json:"cycle,omitempty"`
}

func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check ARCS OPS",
		Short: "Validate a graph without evaluating it",
		Long: `Check runs every structural rule and the cycle detector, and lists all
violations instead of stopping at the first. The exit status is 1 when the
graph cannot be evaluated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != outputText && opts.format != outputJSON {
				return fmt.Errorf("invalid format: %q (must be 'text' or 'json')", opts.format)
			}
			ctx := cmd.Context()

			popts, err := c.pipelineOptions(opts.duplicates, false)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			in, err := readInput(args[0], args[1])
			if err != nil {
				return err
			}
			res, err := runner.Check(ctx, in, popts)
			if err != nil {
				return err
			}

			if opts.format == outputJSON {
				out := checkOutput{Valid: res.Valid(), Violations: res.Report.Violations, Cycle: res.Cycle}
				if out.Violations == nil {
					out.Violations = []validate.Violation{}
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, string(data))
			} else {
				if !res.Report.OK() {
					printViolations(res.Report)
				}
				if res.Cycle != nil {
					printCycle(res.Cycle)
				}
				if res.Valid() {
					printSuccess("Graph is valid")
				}
				printStats(res.Stats.VertexCount, res.Stats.ArcCount, res.CacheInfo.Hit)
			}

			if !res.Valid() {
				return &reportedError{err: fmt.Errorf("%s: graph is not valid", args[0])}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", outputText, "output format: text or json")
	cmd.Flags().StringVar(&opts.duplicates, "duplicates", "", "duplicate arc policy: reject or keep (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")

	return cmd
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/pipeline"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// evalOpts holds the command-line flags for the eval command.
type evalOpts struct {
	output      string // result file, written on success and on failure
	format      string // "text" or "json"
	duplicates  string // duplicate arc policy, empty keeps the config value
	noCache     bool
	refresh     bool
	watch       bool // re-evaluate when either input changes
	interactive bool // browse vertex values after evaluating
}

// evalOutput is the JSON form of a successful evaluation.
type evalOutput struct {
	Value  float64            `json:"value"`
	Values map[string]float64 `json:"values"`
	Order  []string           `json:"order"`
	Cached bool               `json:"cached"`
}

func (c *CLI) evalCommand() *cobra.Command {
	var opts evalOpts

	cmd := &cobra.Command{
		Use:   "eval ARCS OPS",
		Short: "Validate and evaluate a graph",
		Long: `Evaluate reads the arc list ARCS and the operation table OPS, validates the
graph, refuses cycles, and prints the computed value.

ARCS holds groups "(from,to,ordinal)" per line, or a JSON graph document.
OPS holds "vertex:operation" lines or a JSON object. Operations are decimal
literals, "+" (sum), "*" (product) and "exp".

With -o the result, or the diagnostic on failure, is also written to a file.`,
		Example: `  arceval eval arcs.txt ops.txt
  arceval eval arcs.txt ops.json -o result.txt
  arceval eval arcs.txt ops.txt --format json --duplicates keep
  arceval eval arcs.txt ops.txt --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != outputText && opts.format != outputJSON {
				return fmt.Errorf("invalid format: %q (must be 'text' or 'json')", opts.format)
			}
			if opts.watch && opts.interactive {
				return fmt.Errorf("--watch and --interactive cannot be combined")
			}
			ctx := cmd.Context()

			popts, err := c.pipelineOptions(opts.duplicates, opts.refresh)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if opts.watch {
				return c.watch(ctx, args, func() {
					// Failures are printed and the watch continues.
					_, _ = c.evalOnce(ctx, runner, args[0], args[1], popts, opts)
				})
			}

			res, err := c.evalOnce(ctx, runner, args[0], args[1], popts, opts)
			if err != nil {
				return err
			}
			if opts.interactive {
				return browseValues(res)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the result or diagnostic to this file")
	cmd.Flags().StringVar(&opts.format, "format", outputText, "output format: text or json")
	cmd.Flags().StringVar(&opts.duplicates, "duplicates", "", "duplicate arc policy: reject or keep (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-evaluate whenever an input file changes")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse vertex values after evaluating")

	return cmd
}

// evalOnce runs one evaluation and reports it on stdout and in the result
// file. Returned errors are already reported.
func (c *CLI) evalOnce(ctx context.Context, runner *pipeline.Runner, arcsPath, opsPath string, popts pipeline.Options, opts evalOpts) (*pipeline.Result, error) {
	prog := newProgress(c.Logger)

	in, err := readInput(arcsPath, opsPath)
	if err == nil {
		var res *pipeline.Result
		res, err = runner.Execute(ctx, in, popts)
		if err == nil {
			prog.done("Evaluated graph")
			return res, c.reportResult(res, opts)
		}
	}

	c.reportFailure(err, opts)
	return nil, &reportedError{err: err}
}

func (c *CLI) reportResult(res *pipeline.Result, opts evalOpts) error {
	out := evalOutput{
		Value:  res.Value,
		Values: res.Values,
		Order:  res.Order,
		Cached: res.CacheInfo.Hit,
	}

	var data []byte
	if opts.format == outputJSON {
		var err error
		if data, err = json.MarshalIndent(out, "", "  "); err != nil {
			return apperr.Wrap(apperr.ErrCodeInternal, err, "encode result")
		}
		data = append(data, '\n')
		_, _ = stdout.Write(data)
	} else {
		data = []byte("result: " + formatValue(res.Value) + "\n")
		printSuccess("Result: %s", StyleNumber.Render(formatValue(res.Value)))
		printStats(res.Stats.VertexCount, res.Stats.ArcCount, res.CacheInfo.Hit)
	}

	if opts.output == "" {
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	if opts.format == outputText {
		printFile(opts.output)
	}
	return nil
}

// reportFailure prints err and writes its diagnostic to the result file.
func (c *CLI) reportFailure(err error, opts evalOpts) {
	d := newDiagnostic(err)

	data := []byte(d.text())
	if opts.format == outputJSON {
		if js, jerr := d.json(); jerr == nil {
			data = js
		}
		_, _ = stdout.Write(data)
	} else {
		printFailure(err)
	}

	if opts.output != "" {
		if werr := os.WriteFile(opts.output, data, 0o644); werr != nil {
			c.Logger.Error("write result file", "path", opts.output, "error", werr)
		}
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arceval/pkg/pipeline"
)

type exportOpts struct {
	format     string
	output     string
	ops        string // optional operation table for annotated diagrams
	duplicates string
}

func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export ARCS",
		Short: "Convert an arc list to JSON, XML, prefix notation or a diagram",
		Long: `Export renders the graph described by ARCS.

Formats:
  json     graph document (readable again as ARCS)
  xml      graph document
  prefix   prefix notation, e.g. a(b,c(d))
  dot      Graphviz source
  svg      diagram
  pdf,png  diagram (requires rsvg-convert)

With --ops the diagram labels show each vertex's operation, and its value
when the inputs evaluate.`,
		Example: `  arceval export arcs.txt -f prefix
  arceval export arcs.txt -f svg --ops ops.txt -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			ctx := cmd.Context()

			popts, err := c.pipelineOptions(opts.duplicates, false)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			arcs, err := readFile(args[0], "arc list")
			if err != nil {
				return err
			}
			g, err := runner.Parse(ctx, arcs, args[0], popts)
			if err != nil {
				return err
			}

			var ropts pipeline.RenderOptions
			if opts.ops != "" {
				in, err := readInput(args[0], opts.ops)
				if err != nil {
					return err
				}
				res, err := runner.Execute(ctx, in, popts)
				if err != nil {
					printWarning("Inputs do not evaluate, exporting without values")
					c.Logger.Debug("evaluation failed", "error", err)
				} else {
					g = res.Graph
					ropts = pipeline.RenderOptions{Operations: res.Table, Values: res.Values}
				}
			}

			var spin *spinner
			if isDiagram(opts.format) {
				spin = startSpinner(ctx, "Rendering "+opts.format)
			}
			data, err := pipeline.Render(ctx, opts.format, g, ropts)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}

			if opts.output == "" && isBinary(opts.format) {
				opts.output = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + pipeline.Extension(opts.format)
			}
			if opts.output == "" {
				_, err = stdout.Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess("Exported %s", opts.format)
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatJSON, "output format: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout, or ARCS name for pdf/png)")
	cmd.Flags().StringVar(&opts.ops, "ops", "", "operation table used to label diagrams")
	cmd.Flags().StringVar(&opts.duplicates, "duplicates", "", "duplicate arc policy: reject or keep (default from config)")

	return cmd
}

func isDiagram(format string) bool {
	return format == pipeline.FormatSVG || isBinary(format)
}

// isBinary reports formats that must not be written to a terminal.
func isBinary(format string) bool {
	return format == pipeline.FormatPDF || format == pipeline.FormatPNG
}

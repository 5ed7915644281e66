package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/pkg/pipeline"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags      runFlags
		formatsStr string
		output     string
		detailed   bool
		conflicts  bool
		colorSlots bool
	)
	cmd := &cobra.Command{
		Use:   "graph [circuit.json]",
		Short: "Render the qubit dependency graph",
		Long: `Graph draws one node per logical qubit, placed by layer, with an edge
wherever a qubit is measured before another one starts. --conflicts adds
dashed edges between qubits that can never share a slot; --slots reduces
the circuit first and colours nodes by physical slot.`,
		Example: `  qreuse graph -f svg -o deps.svg circuit.json
  qreuse graph -f dot,json --slots circuit.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Detailed, opts.Conflicts, opts.ColorSlots = detailed, conflicts, colorSlots

			circ, err := c.loadCircuit(args[0], &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			artifacts, err := runner.Render(ctx, circ, opts)
			if err != nil {
				return err
			}

			if len(opts.Formats) == 1 && output == "" {
				_, err := cmd.OutOrStdout().Write(artifacts[opts.Formats[0]])
				return err
			}
			base := basePath(output, args[0])
			for _, format := range opts.Formats {
				path := base + "." + format
				if len(opts.Formats) == 1 && output != "" {
					path = output
				}
				if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their live ranges")
	cmd.Flags().BoolVar(&conflicts, "conflicts", false, "draw conflict edges")
	cmd.Flags().BoolVar(&colorSlots, "slots", false, "colour nodes by physical slot")
	return cmd
}

// basePath derives the output base path. Without an output it strips the
// extension from the input; a known format extension on output is
// stripped too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/pkg/reuse"
)

func (c *CLI) crossCheckCommand() *cobra.Command {
	var (
		flags  runFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "crosscheck [circuit.json]",
		Short: "Compare every reducibility method and heuristic",
		Long: `Crosscheck computes the minimum width with all three reducibility methods
and runs all three heuristics at that width (or at --target). It fails if
the methods disagree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			circ, err := c.loadCircuit(args[0], &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinnerWithContext(ctx, os.Stderr, "Cross-checking "+args[0])
			if !c.verbose && !asJSON {
				sp.Start()
			}
			res, err := runner.CrossCheck(ctx, circ, opts)
			sp.Stop()
			if res == nil {
				return err
			}

			if asJSON {
				if werr := writeJSON(cmd.OutOrStdout(), res); werr != nil {
					return werr
				}
				return err
			}
			printCrossCheck(cmd.OutOrStdout(), res.Report, res.CacheHit)
			return err
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printCrossCheck(w io.Writer, r *reuse.CrossCheckResult, cached bool) {
	if r.Agree() {
		printSuccess(w, "methods agree on %d qubits", r.Qubits)
	} else {
		printError(w, "%s", StyleError.Render("methods disagree"))
	}
	if cached {
		printDetail(w, iconCached)
	}
	printRow(w, StyleDim.Render("method"), StyleDim.Render("min width"))
	for _, m := range r.Methods {
		printRow(w, string(m.Method), fmt.Sprint(m.MinWidth))
	}

	if r.Heuristics == nil {
		printWarning(w, "target %d is below the minimum width; heuristics skipped", r.Target)
		return
	}
	fmt.Fprintln(w)
	printRow(w, StyleDim.Render("heuristic"), StyleDim.Render(fmt.Sprintf("width @ %d", r.Target)))
	for _, h := range r.Heuristics {
		width := fmt.Sprint(h.Width)
		if h.Exceeded {
			width = StyleWarning.Render(width + " (exceeded)")
		}
		printRow(w, string(h.Heuristic), width)
	}
}

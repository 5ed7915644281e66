package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/pkg/pipeline"
)

func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags  runFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [circuit.json]",
		Short: "Report how few physical qubits a circuit needs",
		Long: `Analyze builds the qubit dependency graph of a static circuit and computes
the minimum number of physical qubits it can run on with measurement and
reset. With --target it also reports whether the circuit fits.`,
		Example: `  qreuse analyze bell.json
  qreuse analyze -k 3 --method graph ghz.json`,
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

			prog := newProgress(loggerFromContext(ctx))
			res, err := runner.Analyze(ctx, circ, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Analyzed %d qubits", res.Qubits))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printAnalysis(cmd.OutOrStdout(), args[0], res)
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printAnalysis(w io.Writer, input string, res *pipeline.AnalysisResult) {
	title := res.Name
	if title == "" {
		title = input
	}
	printSuccess(w, "%s", StyleTitle.Render(title))
	printStats(w, res.Qubits, res.Edges, res.Conflicts, res.CacheHit)
	printKeyValue(w, "method", res.Method)
	printKeyValue(w, "min width", StyleNumber.Render(fmt.Sprint(res.MinWidth)))
	printKeyValue(w, "saved", fmt.Sprintf("%d of %d (%.0f%%)", res.Qubits-res.MinWidth, res.Qubits, 100*res.Factor))

	if res.Target == nil {
		return
	}
	if *res.Reducible {
		printSuccess(w, "fits on %d physical qubits", *res.Target)
		printNextStep(w, "Reduce it", fmt.Sprintf("%s reduce -k %d %s", appName, *res.Target, input))
		return
	}
	printWarning(w, "does not fit on %d physical qubits (needs %d)", *res.Target, res.MinWidth)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

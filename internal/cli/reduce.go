package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

// Reduced circuit output formats.
const (
	outputJSON = "json"
	outputQASM = "qasm"
)

func (c *CLI) reduceCommand() *cobra.Command {
	var (
		flags  runFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "reduce [circuit.json]",
		Short: "Rewrite a circuit onto fewer physical qubits",
		Long: `Reduce assigns every logical qubit to a physical slot, inserting a reset
wherever a slot is handed from a measured qubit to a fresh one. Without
--target the circuit is reduced to its minimum width.

The reduced circuit is written as JSON or OpenQASM 2.0 to --output, or to
stdout when no output file is given.`,
		Example: `  qreuse reduce -k 2 -f qasm -o reduced.qasm circuit.json
  qreuse reduce --heuristic greedy circuit.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := qerrors.ValidateChoice(qerrors.ErrCodeInvalidFormat, "output format", format, []string{outputJSON, outputQASM}); err != nil {
				return err
			}
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
			res, reduceErr := runner.Reduce(ctx, circ, opts)
			var inf *qerrors.InfeasibleAtTargetError
			if reduceErr != nil && !errors.As(reduceErr, &inf) {
				return reduceErr
			}
			prog.done(fmt.Sprintf("Reduced %d qubits to %d", res.Reduced.Original, res.Reduced.Width))

			var buf bytes.Buffer
			if format == outputQASM {
				err = qio.WriteQASM(res.Reduced, &buf)
			} else {
				err = qio.WriteReduced(res.Reduced, &buf)
			}
			if err != nil {
				return err
			}

			if output == "" {
				if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
					return err
				}
			} else {
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printReduction(cmd.OutOrStdout(), res)
				printFile(cmd.OutOrStdout(), output)
			}
			return reduceErr
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", outputJSON, "output format: json, qasm")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func printReduction(w io.Writer, res *pipeline.ReductionResult) {
	r := res.Reduced
	name := r.Name
	if name == "" {
		name = "circuit"
	}
	if res.Exceeded {
		printWarning(w, "%s exceeded the target of %d physical qubits", res.Heuristic, res.Target)
	} else {
		printSuccess(w, "%s", StyleTitle.Render(name))
	}
	printKeyValue(w, "heuristic", res.Heuristic)
	printKeyValue(w, "width", fmt.Sprintf("%s of %d (minimum %d)", StyleNumber.Render(fmt.Sprint(r.Width)), r.Original, res.MinWidth))
	printKeyValue(w, "resets", fmt.Sprint(len(r.Resets)))
	printKeyValue(w, "factor", fmt.Sprintf("%.2f", res.Factor))
	if res.CacheHit {
		printDetail(w, iconCached)
	}
}

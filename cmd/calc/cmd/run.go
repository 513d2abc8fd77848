package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/batch"
	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/history"
	"github.com/pengelbrecht/calc/internal/styles"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Evaluate a batch file",
	Long: `Evaluate every expression in a batch file.

Text files hold one expression per line ("add 2 3" or "2 + 3"); blank lines
and lines starting with # are skipped. Files ending in .yaml or .yml hold a
list of {op, a, b} mappings.

Every line is evaluated even if an earlier one fails. The exit status is 3
if any expression failed.

Examples:
  calc run ops.txt
  calc run ops.yaml --json`,
	Args: exactArgs(1),
	RunE: runBatch,
}

var runJSON bool

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(runCmd)
}

func runBatch(c *cobra.Command, args []string) error {
	exprs, err := batch.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}

	outcomes := batch.Evaluate(exprs)
	entries := make([]history.Entry, 0, len(outcomes))
	for _, o := range outcomes {
		entries = append(entries, history.NewEntry(o.Expr.Op, o.Expr.A, o.Expr.B, o.Value, o.Err))
	}
	recordAll(entries)

	if runJSON {
		if err := writeOutcomesJSON(c.OutOrStdout(), outcomes); err != nil {
			return err
		}
	} else {
		writeOutcomes(c.OutOrStdout(), outcomes)
	}

	if n := batch.Failures(outcomes); n > 0 {
		return fmt.Errorf("%d of %d expressions failed: %w", n, len(outcomes), calculator.ErrInvalidArgument)
	}
	return nil
}

func writeOutcomes(w io.Writer, outcomes []batch.Outcome) {
	for _, o := range outcomes {
		prefix := styles.RenderDim(fmt.Sprintf("%4d", o.Expr.Line))
		if o.Err != nil {
			fmt.Fprintf(w, "%s  %s = %s\n", prefix, o.Expr, styles.RenderError(o.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%s  %s = %s\n", prefix, o.Expr, styles.RenderResult(calculator.Format(o.Value, cfg.GetPrecision())))
	}
}

type outcomePayload struct {
	Line int `json:"line"`
	resultPayload
}

func writeOutcomesJSON(w io.Writer, outcomes []batch.Outcome) error {
	payload := make([]outcomePayload, 0, len(outcomes))
	for _, o := range outcomes {
		payload = append(payload, outcomePayload{
			Line:          o.Expr.Line,
			resultPayload: newResultPayload(o.Expr.Op, o.Expr.A, o.Expr.B, o.Value, o.Err),
		})
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

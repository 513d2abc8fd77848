package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/batch"
	"github.com/pengelbrecht/calc/internal/calculator"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expr...>",
	Short: "Evaluate a single expression",
	Long: `Evaluate a single expression in prefix or infix form.

"ans" refers to the last successful result in the history.

Examples:
  calc eval 2 + 3
  calc eval pow 2 10
  calc eval ans '*' 4`,
	Annotations: map[string]string{annotationNumeric: "true"},
	Args:        minArgs(1),
	RunE:        runEval,
}

var evalJSON bool

func init() {
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
	evalCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(evalCmd)
}

func runEval(c *cobra.Command, args []string) error {
	expr, err := batch.ParseLine(strings.Join(args, " "), lastAnswer())
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidArgument) {
			return err
		}
		return usageError{err}
	}

	v, evalErr := calculator.Eval(expr.Op, expr.A, expr.B)
	record(expr.Op, expr.A, expr.B, v, evalErr)

	if evalJSON {
		if err := writeResultJSON(c.OutOrStdout(), expr.Op, expr.A, expr.B, v, evalErr); err != nil {
			return err
		}
		return evalErr
	}
	if evalErr != nil {
		return evalErr
	}
	fmt.Fprintln(c.OutOrStdout(), calculator.Format(v, cfg.GetPrecision()))
	return nil
}

// lastAnswer returns the most recent successful result in the history, or 0.
func lastAnswer() float64 {
	store, err := historyStore()
	if err != nil || store == nil {
		return 0
	}
	entries, err := store.List()
	if err != nil {
		return 0
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Error == "" {
			return entries[i].Result
		}
	}
	return 0
}

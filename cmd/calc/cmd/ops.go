package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/calculator"
)

var opJSON bool

var opAliases = map[calculator.Op][]string{
	calculator.OpAdd:      {"plus"},
	calculator.OpSubtract: {"sub", "minus"},
	calculator.OpMultiply: {"mul", "times"},
	calculator.OpDivide:   {"div"},
	calculator.OpPower:    {"pow"},
}

var opShort = map[calculator.Op]string{
	calculator.OpAdd:      "Add two numbers",
	calculator.OpSubtract: "Subtract b from a",
	calculator.OpMultiply: "Multiply two numbers",
	calculator.OpDivide:   "Divide a by b",
	calculator.OpPower:    "Raise a to the power b",
}

func init() {
	for _, op := range calculator.Ops {
		c := &cobra.Command{
			Use:     op.String() + " <a> <b>",
			Aliases: opAliases[op],
			Short:   opShort[op],
			Long: opShort[op] + `.

Operands may be negative, for example:
  calc ` + op.String() + ` -4 2`,
			Annotations: map[string]string{annotationNumeric: "true"},
			Args:        exactArgs(2),
			RunE:        runOp(op),
		}
		c.Flags().BoolVar(&opJSON, "json", false, "output as JSON")
		c.Flags().SetInterspersed(false)
		rootCmd.AddCommand(c)
	}
}

func runOp(op calculator.Op) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		a, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		b, err := parseNumber(args[1])
		if err != nil {
			return err
		}

		v, evalErr := calculator.Eval(op, a, b)
		record(op, a, b, v, evalErr)

		if opJSON {
			if err := writeResultJSON(c.OutOrStdout(), op, a, b, v, evalErr); err != nil {
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
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, usageError{fmt.Errorf("invalid number %q", s)}
	}
	return v, nil
}

type resultPayload struct {
	Op     string   `json:"op"`
	A      float64  `json:"a"`
	B      float64  `json:"b"`
	Result *float64 `json:"result,omitempty"`
	Text   string   `json:"text,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func newResultPayload(op calculator.Op, a, b, v float64, evalErr error) resultPayload {
	p := resultPayload{Op: op.String(), A: a, B: b}
	if evalErr != nil {
		p.Error = evalErr.Error()
		return p
	}
	p.Text = calculator.Format(v, cfg.GetPrecision())
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		p.Result = &v
	}
	return p
}

func writeResultJSON(w io.Writer, op calculator.Op, a, b, v float64, evalErr error) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(newResultPayload(op, a, b, v, evalErr)); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

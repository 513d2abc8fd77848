package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/server"
)

var remoteCmd = &cobra.Command{
	Use:   "remote <op> <a> <b>",
	Short: "Evaluate an operation on a running calc server",
	Long: `Evaluate an operation on a running calc server over its websocket endpoint.

Examples:
  calc remote add 2 3
  calc remote pow 2 0.5 --url ws://calc.internal:8790/ws`,
	Annotations: map[string]string{annotationNumeric: "true"},
	Args:        exactArgs(3),
	RunE:        runRemote,
}

var (
	remoteURL     string
	remoteTimeout time.Duration
	remoteJSON    bool
)

func init() {
	remoteCmd.Flags().StringVar(&remoteURL, "url", server.DefaultURL, "server websocket URL")
	remoteCmd.Flags().DurationVar(&remoteTimeout, "timeout", 10*time.Second, "request timeout")
	remoteCmd.Flags().BoolVar(&remoteJSON, "json", false, "output as JSON")
	remoteCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(remoteCmd)
}

func runRemote(c *cobra.Command, args []string) error {
	op, err := calculator.ParseOp(args[0])
	if err != nil {
		return err
	}
	a, err := parseNumber(args[1])
	if err != nil {
		return err
	}
	b, err := parseNumber(args[2])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), remoteTimeout)
	defer cancel()

	client, err := server.Dial(ctx, remoteURL)
	if err != nil {
		return err
	}
	defer client.Close()

	v, evalErr := client.Eval(ctx, op, a, b)
	if evalErr != nil && !isEvalError(evalErr) {
		return fmt.Errorf("remote evaluation failed: %w", evalErr)
	}
	record(op, a, b, v, evalErr)

	if remoteJSON {
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

// isEvalError reports whether err came from evaluating the operation rather
// than from the transport.
func isEvalError(err error) bool {
	var rerr *server.RemoteError
	return errors.As(err, &rerr)
}

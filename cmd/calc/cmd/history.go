package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/history"
	"github.com/pengelbrecht/calc/internal/styles"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded evaluations",
	Long: `Show evaluations recorded by calc and the REPL.

Examples:
  # Show the last 20 evaluations
  calc history -n 20

  # Remove all recorded evaluations
  calc history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyClear bool
	historyJSON  bool
	historyLimit int
)

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "remove all entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(c *cobra.Command, args []string) error {
	path, err := historyFile()
	if err != nil {
		return err
	}
	store := history.NewStore(path, cfg.History.GetMaxEntries())

	if historyClear {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(c.OutOrStdout(), "History cleared")
		return nil
	}

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[len(entries)-historyLimit:]
	}

	if historyJSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(c.OutOrStdout())
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.OutOrStdout(), "No history")
		return nil
	}

	var lines []string
	for _, e := range entries {
		expr := fmt.Sprintf("%s %s %s",
			calculator.Format(e.A, -1), styles.RenderOp(e.Op.Symbol()), calculator.Format(e.B, -1))
		result := styles.RenderResult(calculator.Format(e.Result, cfg.GetPrecision()))
		if e.Error != "" {
			result = styles.RenderError(e.Error)
		}
		lines = append(lines, fmt.Sprintf("%s  %s = %s",
			styles.RenderDim(e.At.Local().Format("2006-01-02 15:04")), expr, result))
	}
	fmt.Fprintln(c.OutOrStdout(), styles.Box(strings.Join(lines, "\n")))
	return nil
}

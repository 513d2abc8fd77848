package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive calculator",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		return tui.Run(tui.Options{
			Precision: cfg.GetPrecision(),
			Store:     store,
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

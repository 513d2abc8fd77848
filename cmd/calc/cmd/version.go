package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of calc",
	Long:  `Print the version number of calc.`,
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "calc %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

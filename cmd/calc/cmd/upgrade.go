package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/update"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade calc to the latest version",
	Long:  `Upgrade calc to the latest version by downloading and installing the newest release.`,
	Args:  cobra.NoArgs,
	RunE:  runUpgrade,
}

var upgradeCheck bool

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeCheck, "check", false, "only report whether an update is available")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(c *cobra.Command, args []string) error {
	out := c.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", Version)

	if update.DetectInstallMethod() == update.InstallHomebrew {
		fmt.Fprintln(out, "\ncalc was installed via Homebrew.")
		fmt.Fprintln(out, "Run: brew upgrade calc")
		return nil
	}

	fmt.Fprintln(out, "Checking for updates...")

	release, hasUpdate, err := update.CheckForUpdate(Version)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !hasUpdate {
		fmt.Fprintln(out, "Already at latest version.")
		return nil
	}
	if upgradeCheck {
		fmt.Fprintf(out, "Update available: %s (%s)\n", release.Version, release.URL)
		return nil
	}

	fmt.Fprintf(out, "Updating to %s...\n", release.Version)
	logger.Debug("downloading release", "asset", release.AssetName, "version", release.Version)

	if err := update.Update(Version); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to %s\n", release.Version)
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/ui"
	"github.com/tradewind-labs/tradewind/internal/update"
)

var updateCheckOnly bool

// updateCmd represents the update command.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the tradewind binary itself",
	Long: `Check GitHub releases for a newer tradewind and replace the
running binary in place.

Examples:
  tradewind update --check
  tradewind update`,
	Run: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "Only check for an update, do not install")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	setupLogging()

	if updateCheckOnly {
		release, available, err := update.CheckForUpdate(cmd.Context(), config.Version)
		if err != nil {
			ui.Fatal("%v", err)
		}
		if !available {
			ui.Success("tradewind %s is up to date (%s)", config.Version, update.PlatformInfo())
			return
		}
		ui.Info("update available: %s (published %s)", release.Version, release.PublishedAt)
		ui.Info("release: %s", release.ReleaseURL)
		return
	}

	release, err := update.Update(cmd.Context(), config.Version)
	if err != nil {
		ui.Fatal("update failed: %v", err)
	}
	if release == nil {
		ui.Success("tradewind %s is already up to date", config.Version)
		return
	}
	ui.Success("updated to %s", release.Version)
}

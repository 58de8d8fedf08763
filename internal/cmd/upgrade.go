package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/fileutil"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

// upgradeCmd represents the upgrade command.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Rewrite the config document for this release",
	Long: `Upgrade a configuration document written for an older tradewind
release: legacy keys are renamed, dropped fields are removed, and
tradewind_version is set to the running release. A backup of the
original document is kept next to it.`,
	Run: runUpgrade,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, err := configPath()
	if err != nil {
		ui.Fatal("%v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		ui.Fatal("read configuration: %v", err)
	}

	upgraded, result, err := config.Upgrade(data)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if result == nil {
		ui.Info("%s is already at version %s", cfgPath, config.Version)
		return
	}

	backup := cfgPath + ".bak"
	if err := fileutil.WriteFileAtomic(backup, data, 0o644); err != nil {
		ui.Fatal("write backup: %v", err)
	}
	if err := fileutil.WriteFileAtomic(cfgPath, upgraded, 0o644); err != nil {
		ui.Fatal("write configuration: %v", err)
	}

	for _, rename := range result.Renamed {
		ui.Info("renamed %s", rename)
	}
	for _, dropped := range result.Dropped {
		ui.Warning("dropped %s (field no longer exists)", dropped)
	}
	ui.Success("upgraded %s from %q to %s (backup at %s)", cfgPath, result.FromVersion, config.Version, backup)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/lock"
	"github.com/tradewind-labs/tradewind/internal/snapshot"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var rollbackList bool

// rollbackCmd represents the rollback command.
var rollbackCmd = &cobra.Command{
	Use:   "rollback [snapshot]",
	Short: "Restore a previous render snapshot",
	Long: `Restore the output directory from a snapshot taken before an
earlier render or deploy. Without an argument the newest snapshot is
restored.

Examples:
  tradewind rollback --list
  tradewind rollback
  tradewind rollback snapshot-20260826-101530.123456789`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRollback,
}

func init() {
	rollbackCmd.Flags().BoolVarP(&rollbackList, "list", "l", false, "List available snapshots")

	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, _ := loadValidatedConfig(cmd.Context(), nil, "")
	root := outputRoot(cfgPath)

	snapshots, err := snapshot.List(root)
	if err != nil {
		ui.Fatal("%v", err)
	}

	if rollbackList {
		if len(snapshots) == 0 {
			ui.Info("no snapshots available")
			return
		}
		for _, s := range snapshots {
			ui.Info("%s  (%s)", s.Name, s.Created.Format("2006-01-02 15:04:05"))
		}
		return
	}

	if len(snapshots) == 0 {
		ui.Fatal("no snapshots to restore")
	}

	name := snapshots[0].Name
	if len(args) == 1 {
		name = args[0]
	}

	err = lock.WithLock(root, "rollback", func() error {
		return snapshot.Restore(root, name)
	})
	if err != nil {
		ui.Fatal("rollback failed: %v", err)
	}
	ui.Success("restored %s", name)
}

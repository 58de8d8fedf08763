package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/engine"
	"github.com/tradewind-labs/tradewind/internal/lock"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

// pruneCmd represents the prune command.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete orphaned files from earlier renders",
	Long: `Remove files a previous render produced that no current stage
produces anymore. Renders never delete files on their own; orphans stay
on disk until this command removes them.`,
	Run: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, cfg := loadValidatedConfig(cmd.Context(), nil, "")
	root := outputRoot(cfgPath)

	eng, err := engine.New(cfg, root, nil)
	if err != nil {
		ui.Fatal("%v", err)
	}

	var removed []string
	err = lock.WithLock(root, "prune", func() error {
		removed, err = eng.Prune()
		return err
	})
	if err != nil {
		ui.Fatal("prune failed: %v", err)
	}

	if len(removed) == 0 {
		ui.Info("nothing to prune")
		return
	}
	for _, path := range removed {
		ui.Info("removed %s", path)
	}
	ui.Success("pruned %d file(s)", len(removed))
}

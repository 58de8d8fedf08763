package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/engine"
	"github.com/tradewind-labs/tradewind/internal/lock"
	"github.com/tradewind-labs/tradewind/internal/snapshot"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var (
	renderDryRun  bool
	renderSecrets []string
	renderEnvFile string
)

// renderCmd represents the render command.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render all stages into the output directory",
	Long: `Render the configuration into per-stage infrastructure directories.

Stages render in dependency order; later stages see the outputs of
earlier ones. Managed files are overwritten, override files are seeded
once and then left alone, and files no longer produced are reported as
orphans (use prune to remove them). A snapshot of the previous output
is taken before anything is written.

Examples:
  tradewind render
  tradewind render --dry-run
  tradewind render --secrets secrets.enc.yaml --env-file .env`,
	Run: runRender,
}

func init() {
	renderCmd.Flags().BoolVarP(&renderDryRun, "dry-run", "n", false, "Show what would be rendered without writing")
	renderCmd.Flags().StringArrayVar(&renderSecrets, "secrets", nil, "SOPS-encrypted values file to overlay (repeatable)")
	renderCmd.Flags().StringVar(&renderEnvFile, "env-file", "", "Load environment overrides from a .env file")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, cfg := loadValidatedConfig(cmd.Context(), renderSecrets, renderEnvFile)
	root := outputRoot(cfgPath)

	eng, err := engine.New(cfg, root, nil)
	if err != nil {
		ui.Fatal("%v", err)
	}

	if renderDryRun {
		rendered, err := eng.DryRun()
		if err != nil {
			ui.Fatal("%v", err)
		}
		plan, err := eng.Plan()
		if err != nil {
			ui.Fatal("%v", err)
		}
		ui.Header("dry run: %d stage(s) for provider %q", len(plan), cfg.Provider)
		for _, s := range plan {
			ui.Stage(s.Number, "%s", s.ID)
			paths := make([]string, 0, len(rendered[s.ID]))
			for _, f := range rendered[s.ID] {
				paths = append(paths, f.RelPath)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Printf("     %s\n", p)
			}
		}
		return
	}

	err = lock.WithLock(root, "render", func() error {
		if name, err := snapshot.Create(root); err != nil {
			return err
		} else if name != "" {
			ui.Info("snapshot created: %s", name)
		}

		summary, err := eng.Render()
		if err != nil {
			return err
		}

		for _, st := range summary.Stages {
			ui.Stage(stageNumber(st.ID), "%s: %d written, %d unchanged, %d preserved",
				st.ID, len(st.Result.Written), len(st.Result.Unchanged), len(st.Result.Preserved))
			for _, orphan := range st.Result.Orphaned {
				ui.Warning("orphaned: %s (run 'tradewind prune' to remove)", orphan)
			}
		}
		ui.Success("rendered %d file(s) into %s", summary.Written(), root)
		return nil
	})
	if err != nil {
		ui.Fatal("render failed: %v", err)
	}
}

// stageNumber extracts the numeric prefix of a stage ID for display.
func stageNumber(id string) int {
	var n int
	fmt.Sscanf(id, "%d-", &n)
	return n
}

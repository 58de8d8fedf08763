package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/engine"
	"github.com/tradewind-labs/tradewind/internal/executor"
	"github.com/tradewind-labs/tradewind/internal/lock"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var (
	destroySecrets []string
	destroyEnvFile string
	destroyYes     bool
)

// destroyCmd represents the destroy command.
var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear stages down in reverse order",
	Long: `Destroy the deployed infrastructure, newest stage first, so
dependents disappear before the stages they depend on.

This is irreversible for cloud resources. The command asks for the
project name as confirmation unless --yes is given.`,
	Run: runDestroy,
}

func init() {
	destroyCmd.Flags().StringArrayVar(&destroySecrets, "secrets", nil, "SOPS-encrypted values file to overlay (repeatable)")
	destroyCmd.Flags().StringVar(&destroyEnvFile, "env-file", "", "Load environment overrides from a .env file")
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(destroyCmd)
}

func runDestroy(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, cfg := loadValidatedConfig(cmd.Context(), destroySecrets, destroyEnvFile)

	if !destroyYes {
		ui.Warning("this will destroy every resource of project %q on %q", cfg.ProjectName, cfg.Provider)
		fmt.Printf("type the project name to confirm: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(answer) != cfg.ProjectName {
			ui.Fatal("confirmation did not match; nothing destroyed")
		}
	}

	root := outputRoot(cfgPath)
	eng, err := engine.New(cfg, root, nil)
	if err != nil {
		ui.Fatal("%v", err)
	}

	err = lock.WithLock(root, "destroy", func() error {
		plan, err := eng.Plan()
		if err != nil {
			return err
		}
		return executor.New(root, nil).Destroy(cmd.Context(), plan)
	})
	if err != nil {
		ui.Fatal("destroy failed: %v", err)
	}

	ui.Success("destroyed %s", cfg.ProjectName)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/doctor"
	"github.com/tradewind-labs/tradewind/internal/engine"
	"github.com/tradewind-labs/tradewind/internal/executor"
	"github.com/tradewind-labs/tradewind/internal/lock"
	"github.com/tradewind-labs/tradewind/internal/snapshot"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var (
	deploySecrets   []string
	deployEnvFile   string
	deploySkipCheck bool
)

// deployCmd represents the deploy command.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Render and apply every stage in order",
	Long: `Render the configuration and apply the stages with the external
tools: terraform for the provisioning stages, kubectl and helm for the
Kubernetes stages.

A deploy refuses to run while prevent_deploy is set in the document.
Environment checks run first unless --skip-checks is given.

Examples:
  tradewind deploy
  tradewind deploy --secrets secrets.enc.yaml
  tradewind deploy --skip-checks`,
	Run: runDeploy,
}

func init() {
	deployCmd.Flags().StringArrayVar(&deploySecrets, "secrets", nil, "SOPS-encrypted values file to overlay (repeatable)")
	deployCmd.Flags().StringVar(&deployEnvFile, "env-file", "", "Load environment overrides from a .env file")
	deployCmd.Flags().BoolVar(&deploySkipCheck, "skip-checks", false, "Skip environment checks before deploying")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, cfg := loadValidatedConfig(cmd.Context(), deploySecrets, deployEnvFile)
	if cfg.PreventDeploy {
		ui.Fatal("prevent_deploy is set; review the rendered changes, then remove the flag to deploy")
	}

	if !deploySkipCheck {
		results, err := doctor.Run(cmd.Context(), cfg)
		if err != nil {
			ui.Fatal("%v", err)
		}
		printDoctorResults(results)
		if doctor.Failed(results) {
			ui.Fatal("environment checks failed; fix the problems above or pass --skip-checks")
		}
	}

	root := outputRoot(cfgPath)
	eng, err := engine.New(cfg, root, nil)
	if err != nil {
		ui.Fatal("%v", err)
	}

	err = lock.WithLock(root, "deploy", func() error {
		if name, err := snapshot.Create(root); err != nil {
			return err
		} else if name != "" {
			ui.Info("snapshot created: %s", name)
		}

		summary, err := eng.Render()
		if err != nil {
			return err
		}
		ui.Info("rendered %d file(s)", summary.Written())

		plan, err := eng.Plan()
		if err != nil {
			return err
		}
		runner := executor.New(root, nil)
		for _, s := range plan {
			ui.Stage(s.Number, "applying %s", s.ID)
			if err := runner.ApplyStage(cmd.Context(), s); err != nil {
				return fmt.Errorf("stage %s: %w", s.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		ui.Fatal("deploy failed: %v", err)
	}

	ui.Success("deployed %s to %s", cfg.ProjectName, cfg.Domain)
}

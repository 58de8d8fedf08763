package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var (
	validateSecrets []string
	validateEnvFile string
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without rendering",
	Long: `Validate the tradewind configuration document.

All findings are reported at once, not just the first, so a single run
shows everything that needs fixing. Checks cover:
  1. YAML syntax and unknown keys
  2. Field formats (project name, namespace, storage sizes)
  3. Provider and credential block consistency
  4. Feature blocks (custom theme, monitoring)

Examples:
  tradewind validate
  tradewind validate --secrets secrets.enc.yaml
  tradewind validate --env-file .env`,
	Run: runValidate,
}

func init() {
	validateCmd.Flags().StringArrayVar(&validateSecrets, "secrets", nil, "SOPS-encrypted values file to overlay (repeatable)")
	validateCmd.Flags().StringVar(&validateEnvFile, "env-file", "", "Load environment overrides from a .env file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	setupLogging()

	cfgPath, cfg, issues, err := loadConfig(cmd.Context(), validateSecrets, validateEnvFile)
	if err != nil {
		ui.Fatal("%v", err)
	}
	ui.Info("validating %s", cfgPath)

	if cfg != nil {
		issues = append(issues, config.Validate(cfg)...)
	}
	if len(issues) > 0 {
		ui.Error("found %d problem(s):", len(issues))
		for _, issue := range issues {
			ui.Issue(issue.Path, issue.Reason)
		}
		os.Exit(1)
	}

	ui.Success("configuration is valid (project %q, provider %q)", cfg.ProjectName, cfg.Provider)
}

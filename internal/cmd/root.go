// Package cmd provides the CLI commands for tradewind.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/logging"
)

var (
	rootConfigPath string
	rootOutputDir  string
	rootLogLevel   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tradewind",
	Short: "Render and deploy data platform infrastructure from one document",
	Long: `tradewind - declarative data platform deployments

A single tradewind-config.yaml describes the whole platform; tradewind
renders it into per-stage infrastructure directories and drives the
external tools that apply them.

SETUP
  init                  Scaffold a new tradewind-config.yaml
  validate              Check the configuration without rendering
  doctor                Check external tools and credentials

RENDERING
  render                Render all stages into the output directory
    --dry-run, -n       Show what would be rendered without writing
    --secrets <file>    Overlay SOPS-encrypted values (repeatable)
  prune                 Delete orphaned files from earlier renders

DEPLOYMENT
  deploy                Render and apply every stage in order
  destroy               Tear stages down in reverse order
  rollback              Restore a previous render snapshot
    --list, -l          List available snapshots

MAINTENANCE
  upgrade               Rewrite the config document for this release
  update                Update the tradewind binary itself`,
	Version: config.Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "", "Path to tradewind-config.yaml (default: search upward)")
	rootCmd.PersistentFlags().StringVarP(&rootOutputDir, "output", "o", "", "Output directory for rendered stages (default: stages/ next to the config)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configPath resolves the configuration document location.
func configPath() (string, error) {
	if rootConfigPath != "" {
		return filepath.Abs(rootConfigPath)
	}
	return config.FindConfig("")
}

// outputRoot resolves the render output directory for a given config path.
func outputRoot(cfgPath string) string {
	if rootOutputDir != "" {
		return rootOutputDir
	}
	return filepath.Join(filepath.Dir(cfgPath), "stages")
}

// setupLogging configures the process logger from the flag or environment.
func setupLogging() {
	if rootLogLevel != "" {
		logging.Setup(os.Stderr, logging.ParseLevel(rootLogLevel))
		return
	}
	logging.SetupFromEnv()
}

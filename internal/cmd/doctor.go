package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tradewind-labs/tradewind/internal/doctor"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tools and credentials",
	Long: `Check that the environment can carry a deploy through:

  1. External binaries (terraform, kubectl, helm; sops and git optional)
  2. Provider credential environment variables (presence only)
  3. Keycloak custom theme repository reachability (when configured)

Credential values are never read or printed.`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	setupLogging()

	_, cfg := loadValidatedConfig(cmd.Context(), nil, "")

	results, err := doctor.Run(cmd.Context(), cfg)
	if err != nil {
		ui.Fatal("%v", err)
	}
	printDoctorResults(results)

	if doctor.Failed(results) {
		os.Exit(1)
	}
	ui.Success("environment is ready to deploy")
}

// printDoctorResults prints one line per check.
func printDoctorResults(results []doctor.Result) {
	for _, r := range results {
		switch {
		case r.OK:
			ui.Success("%s", r.Name)
		case r.Fatal:
			ui.Error("%s: %s", r.Name, r.Detail)
		default:
			ui.Warning("%s: %s", r.Name, r.Detail)
		}
	}
}

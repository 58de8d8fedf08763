package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/fileutil"
	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

var (
	initProject  string
	initProvider string
	initDomain   string
	initYes      bool
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a new tradewind-config.yaml",
	Long: `Create a starter configuration document.

Interactive when run on a terminal; with --yes (or without a TTY) the
values come from flags and defaults instead.

Examples:
  tradewind init
  tradewind init --project datalab --provider gcp --domain datalab.example.com --yes
  tradewind init ./deployments/datalab`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name (resource prefix)")
	initCmd.Flags().StringVar(&initProvider, "provider", string(provider.Local), "Target provider: aws, gcp, azure, do, local, existing")
	initCmd.Flags().StringVar(&initDomain, "domain", "", "DNS name the platform is served under")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	setupLogging()

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	target := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(target); err == nil {
		ui.Fatal("%s already exists", target)
	}

	interactive := !initYes && term.IsTerminal(int(os.Stdin.Fd()))
	reader := bufio.NewReader(os.Stdin)

	project := initProject
	if project == "" {
		project = "myplatform"
	}
	if interactive {
		project = prompt(reader, "project name", project)
	}

	prov := provider.Provider(initProvider)
	if interactive {
		prov = provider.Provider(prompt(reader, fmt.Sprintf("provider %v", provider.All()), string(prov)))
	}
	if !prov.Valid() {
		ui.Fatal("unknown provider %q (supported: %v)", prov, provider.All())
	}

	domain := initDomain
	if domain == "" {
		domain = project + ".example.com"
	}
	if interactive {
		domain = prompt(reader, "domain", domain)
	}

	doc, err := scaffold(project, prov, domain)
	if err != nil {
		ui.Fatal("%v", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		ui.Fatal("create directory: %v", err)
	}
	if err := fileutil.WriteFileAtomic(target, doc, 0o644); err != nil {
		ui.Fatal("write configuration: %v", err)
	}

	ui.Success("created %s", target)
	ui.Info("next steps:")
	ui.Info("  1. review and edit %s", config.ConfigFileName)
	ui.Info("  2. tradewind validate")
	ui.Info("  3. tradewind render")
}

// prompt reads one line, falling back to def on empty input.
func prompt(reader *bufio.Reader, label, def string) string {
	fmt.Printf("%s [%s]: ", label, def)
	line, err := reader.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// scaffold builds a starter document for the chosen provider, including the
// matching credential block stub.
func scaffold(project string, prov provider.Provider, domain string) ([]byte, error) {
	cfg := &config.Config{
		ProjectName:      project,
		Provider:         prov,
		Domain:           domain,
		TradewindVersion: config.Version,
		Environments: []config.Environment{
			{
				Name:         "analysis",
				Channels:     []string{"conda-forge"},
				Dependencies: []string{"python=3.12", "pandas", "matplotlib"},
			},
		},
	}

	switch prov {
	case provider.AWS:
		cfg.AmazonWebServices = &config.AWSCredentials{
			RoleARN: "arn:aws:iam::123456789012:role/" + project,
			Region:  "us-east-1",
		}
		cfg.NodeGroups = awsNodeGroups()
	case provider.GCP:
		cfg.GoogleCloudPlatform = &config.GCPCredentials{
			Project: project + "-project",
			Region:  "us-central1",
		}
		cfg.NodeGroups = gcpNodeGroups()
	case provider.Azure:
		cfg.Azure = &config.AzureCredentials{
			SubscriptionID: "00000000-0000-0000-0000-000000000000",
			TenantID:       "00000000-0000-0000-0000-000000000000",
			ClientID:       "00000000-0000-0000-0000-000000000000",
			Region:         "eastus",
		}
		cfg.NodeGroups = azureNodeGroups()
	case provider.DigitalOcean:
		cfg.DigitalOcean = &config.DOCredentials{
			Token:  "DIGITALOCEAN_TOKEN",
			Region: "nyc3",
		}
		cfg.NodeGroups = doNodeGroups()
	case provider.Local:
		cfg.Local = &config.LocalCluster{}
	case provider.Existing:
		cfg.Existing = &config.ExistingCluster{}
	}

	cfg.ApplyDefaults()
	return yaml.Marshal(cfg)
}

func awsNodeGroups() config.NodeGroups {
	return config.NodeGroups{
		General: config.NodeGroup{Instance: "m5.2xlarge", MinNodes: 1, MaxNodes: 1},
		User:    config.NodeGroup{Instance: "m5.xlarge", MaxNodes: 5},
		Worker:  config.NodeGroup{Instance: "m5.xlarge", MaxNodes: 5},
	}
}

func gcpNodeGroups() config.NodeGroups {
	return config.NodeGroups{
		General: config.NodeGroup{Instance: "n2-standard-8", MinNodes: 1, MaxNodes: 1},
		User:    config.NodeGroup{Instance: "n2-standard-4", MaxNodes: 5},
		Worker:  config.NodeGroup{Instance: "n2-standard-4", MaxNodes: 5},
	}
}

func azureNodeGroups() config.NodeGroups {
	return config.NodeGroups{
		General: config.NodeGroup{Instance: "Standard_D8_v5", MinNodes: 1, MaxNodes: 1},
		User:    config.NodeGroup{Instance: "Standard_D4_v5", MaxNodes: 5},
		Worker:  config.NodeGroup{Instance: "Standard_D4_v5", MaxNodes: 5},
	}
}

func doNodeGroups() config.NodeGroups {
	return config.NodeGroups{
		General: config.NodeGroup{Instance: "g-8vcpu-32gb", MinNodes: 1, MaxNodes: 1},
		User:    config.NodeGroup{Instance: "g-4vcpu-16gb", MaxNodes: 5},
		Worker:  config.NodeGroup{Instance: "g-4vcpu-16gb", MaxNodes: 5},
	}
}

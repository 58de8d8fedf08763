package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tradewind-labs/tradewind/internal/provider"
)

// Issue is one validation finding, addressed by the document field path.
type Issue struct {
	Path   string
	Reason string
}

// IssueList accumulates validation findings. Validation never short-circuits:
// the caller receives every independent finding in one pass.
type IssueList []Issue

// Error renders the whole list; IssueList satisfies error so callers can
// return it directly.
func (l IssueList) Error() string {
	if len(l) == 0 {
		return "no validation issues"
	}
	parts := make([]string, len(l))
	for i, issue := range l {
		parts[i] = fmt.Sprintf("%s: %s", issue.Path, issue.Reason)
	}
	return fmt.Sprintf("%d validation issue(s): %s", len(l), strings.Join(parts, "; "))
}

var (
	// projectNameRegex constrains names to what every supported cloud
	// accepts for resource naming.
	projectNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\-_]{1,14}[A-Za-z0-9]$`)
	namespaceRegex   = regexp.MustCompile(`^[A-Za-z][A-Za-z\-_]*[A-Za-z]$`)
	quantityRegex    = regexp.MustCompile(`^[0-9]+(Mi|Gi|Ti)$`)
)

// Validate checks a parsed document and returns every finding. An empty
// result means the configuration is renderable. Validate is a pure function
// over the config; it performs no I/O.
func Validate(cfg *Config) IssueList {
	var issues IssueList
	add := func(path, reason string) {
		issues = append(issues, Issue{Path: path, Reason: reason})
	}

	if cfg.ProjectName == "" {
		add("project_name", "required field is missing")
	} else if !projectNameRegex.MatchString(cfg.ProjectName) {
		add("project_name", "must start with a letter, be 3-16 characters, and contain only letters, digits, - and _")
	}

	if cfg.Namespace != "" && !namespaceRegex.MatchString(cfg.Namespace) {
		add("namespace", "must start and end with a letter and contain only letters, - and _")
	}

	if cfg.Domain == "" {
		add("domain", "required field is missing")
	}

	if cfg.Provider == "" {
		add("provider", "required field is missing")
	} else if !cfg.Provider.Valid() {
		add("provider", fmt.Sprintf("unsupported provider %q (supported: %v)", cfg.Provider, provider.All()))
	}

	issues = append(issues, validateCredentials(cfg)...)
	issues = append(issues, validateNodeGroups(cfg)...)
	issues = append(issues, validateStorage(cfg)...)
	issues = append(issues, validateEnvironments(cfg)...)
	issues = append(issues, validateTerraformState(cfg)...)
	issues = append(issues, validateFeatures(cfg)...)

	if cfg.TradewindVersion != "" && !IsVersionAccepted(cfg.TradewindVersion) {
		add("tradewind_version", fmt.Sprintf("version %s is not accepted by tradewind %s; run `tradewind upgrade` first", cfg.TradewindVersion, Version))
	}

	return issues
}

// validateCredentials enforces the exclusivity rule: exactly the credential
// block matching the selected provider may be populated. Stale blocks for
// other providers are an error, not silently ignored, so credentials never
// leak into rendered output.
func validateCredentials(cfg *Config) IssueList {
	var issues IssueList
	if !cfg.Provider.Valid() {
		return issues // provider issue already reported
	}

	blocks := cfg.CredentialBlocks()
	blockKey := map[provider.Provider]string{
		provider.AWS:          "amazon_web_services",
		provider.GCP:          "google_cloud_platform",
		provider.Azure:        "azure",
		provider.DigitalOcean: "digital_ocean",
		provider.Local:        "local",
		provider.Existing:     "existing",
	}

	for _, p := range provider.All() {
		if p == cfg.Provider || !blocks[p] {
			continue
		}
		issues = append(issues, Issue{
			Path:   blockKey[p],
			Reason: fmt.Sprintf("credential block for provider %q is populated but provider is %q", p, cfg.Provider),
		})
	}

	// Cloud providers require their credential block; local and existing
	// clusters work without one.
	if cfg.Provider.Cloud() && !blocks[cfg.Provider] {
		issues = append(issues, Issue{
			Path:   blockKey[cfg.Provider],
			Reason: fmt.Sprintf("credential block required for provider %q", cfg.Provider),
		})
		return issues
	}

	switch cfg.Provider {
	case provider.AWS:
		if cfg.AmazonWebServices != nil {
			if cfg.AmazonWebServices.RoleARN == "" {
				issues = append(issues, Issue{Path: "amazon_web_services.role_arn", Reason: "required field is missing"})
			}
			if cfg.AmazonWebServices.Region == "" {
				issues = append(issues, Issue{Path: "amazon_web_services.region", Reason: "required field is missing"})
			}
		}
	case provider.GCP:
		if cfg.GoogleCloudPlatform != nil {
			if cfg.GoogleCloudPlatform.Project == "" {
				issues = append(issues, Issue{Path: "google_cloud_platform.project", Reason: "required field is missing"})
			}
			if cfg.GoogleCloudPlatform.Region == "" {
				issues = append(issues, Issue{Path: "google_cloud_platform.region", Reason: "required field is missing"})
			}
		}
	case provider.Azure:
		if cfg.Azure != nil {
			if cfg.Azure.SubscriptionID == "" {
				issues = append(issues, Issue{Path: "azure.subscription_id", Reason: "required field is missing"})
			}
			if cfg.Azure.TenantID == "" {
				issues = append(issues, Issue{Path: "azure.tenant_id", Reason: "required field is missing"})
			}
			if cfg.Azure.ClientID == "" {
				issues = append(issues, Issue{Path: "azure.client_id", Reason: "required field is missing"})
			}
			if cfg.Azure.Region == "" {
				issues = append(issues, Issue{Path: "azure.region", Reason: "required field is missing"})
			}
		}
	case provider.DigitalOcean:
		if cfg.DigitalOcean != nil {
			if cfg.DigitalOcean.Token == "" {
				issues = append(issues, Issue{Path: "digital_ocean.token", Reason: "required field is missing"})
			}
			if cfg.DigitalOcean.Region == "" {
				issues = append(issues, Issue{Path: "digital_ocean.region", Reason: "required field is missing"})
			}
		}
	}

	return issues
}

func validateNodeGroups(cfg *Config) IssueList {
	var issues IssueList
	groups := map[string]NodeGroup{
		"node_groups.general": cfg.NodeGroups.General,
		"node_groups.user":    cfg.NodeGroups.User,
		"node_groups.worker":  cfg.NodeGroups.Worker,
	}
	for path, g := range groups {
		if g.MinNodes < 0 {
			issues = append(issues, Issue{Path: path + ".min_nodes", Reason: "must not be negative"})
		}
		if g.MaxNodes < g.MinNodes {
			issues = append(issues, Issue{Path: path + ".max_nodes", Reason: fmt.Sprintf("must be >= min_nodes (%d)", g.MinNodes)})
		}
	}
	// Map iteration order is not stable; sort by path for deterministic output.
	sortIssues(issues)
	return issues
}

func validateStorage(cfg *Config) IssueList {
	var issues IssueList
	if cfg.Storage.SharedFilesystem != "" && !quantityRegex.MatchString(cfg.Storage.SharedFilesystem) {
		issues = append(issues, Issue{Path: "storage.shared_filesystem", Reason: "must be a quantity like 200Gi"})
	}
	if cfg.Storage.PackageCache != "" && !quantityRegex.MatchString(cfg.Storage.PackageCache) {
		issues = append(issues, Issue{Path: "storage.package_cache", Reason: "must be a quantity like 60Gi"})
	}
	return issues
}

func validateEnvironments(cfg *Config) IssueList {
	var issues IssueList
	seen := make(map[string]bool)
	for i, env := range cfg.Environments {
		path := fmt.Sprintf("environments[%d]", i)
		if env.Name == "" {
			issues = append(issues, Issue{Path: path + ".name", Reason: "required field is missing"})
			continue
		}
		if seen[env.Name] {
			issues = append(issues, Issue{Path: path + ".name", Reason: fmt.Sprintf("duplicate environment name %q", env.Name)})
		}
		seen[env.Name] = true
	}
	return issues
}

func validateTerraformState(cfg *Config) IssueList {
	var issues IssueList
	if cfg.TerraformState == nil {
		return issues
	}
	switch cfg.TerraformState.Type {
	case StateRemote, StateLocal:
		if cfg.TerraformState.Backend != "" {
			issues = append(issues, Issue{Path: "terraform_state.backend", Reason: "backend may only be set when type is existing"})
		}
	case StateExisting:
		if cfg.TerraformState.Backend == "" {
			issues = append(issues, Issue{Path: "terraform_state.backend", Reason: "required when type is existing"})
		}
	default:
		issues = append(issues, Issue{Path: "terraform_state.type", Reason: fmt.Sprintf("must be one of %s, %s, %s", StateRemote, StateLocal, StateExisting)})
	}
	return issues
}

// validateFeatures enforces the all-or-nothing rule for feature toggles: a
// present toggle block must carry every required child field.
func validateFeatures(cfg *Config) IssueList {
	var issues IssueList

	if theme := cfg.Keycloak.CustomTheme; theme != nil {
		if theme.Repository == "" {
			issues = append(issues, Issue{Path: "keycloak.custom_theme.repository", Reason: "required when custom_theme is enabled"})
		}
		if theme.Branch == "" {
			issues = append(issues, Issue{Path: "keycloak.custom_theme.branch", Reason: "required when custom_theme is enabled"})
		}
		if theme.SSHKeyPath != "" && theme.KnownHostsPath == "" {
			issues = append(issues, Issue{Path: "keycloak.custom_theme.known_hosts_path", Reason: "required when ssh_key_path is set"})
		}
	}

	if cfg.Monitoring != nil && cfg.Monitoring.Retention == "" {
		issues = append(issues, Issue{Path: "monitoring.retention", Reason: "required when monitoring is enabled"})
	}

	return issues
}

func sortIssues(issues IssueList) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
}

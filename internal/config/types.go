// Package config implements the tradewind configuration document: parsing,
// environment overrides, and validation of the single source of truth that
// drives rendering.
package config

import (
	"github.com/tradewind-labs/tradewind/internal/provider"
)

// ConfigFileName is the canonical name of the configuration document.
const ConfigFileName = "tradewind-config.yaml"

// EnvPrefix is the prefix for environment variable overrides. Entries of the
// form TRADEWIND__<section>__<key> are layered on top of the document, with
// environment values winning.
const EnvPrefix = "TRADEWIND"

// Config is the typed in-memory form of the configuration document.
type Config struct {
	// ProjectName is the base name for all infrastructure resources.
	ProjectName string `yaml:"project_name"`

	// Namespace labels resources and selects the target Kubernetes
	// namespace. Defaults to "dev".
	Namespace string `yaml:"namespace,omitempty"`

	// Provider selects the deployment target platform.
	Provider provider.Provider `yaml:"provider"`

	// Domain is the DNS name the platform is served under.
	Domain string `yaml:"domain"`

	// TradewindVersion records the engine version the document was written
	// for. Documents from other minor versions must be upgraded first.
	TradewindVersion string `yaml:"tradewind_version,omitempty"`

	// PreventDeploy blocks deploy after an upgrade until the operator has
	// reviewed the rendered changes.
	PreventDeploy bool `yaml:"prevent_deploy,omitempty"`

	// Exactly one credential block may be populated and it must match
	// Provider. Blocks for non-selected providers are a validation error.
	AmazonWebServices   *AWSCredentials   `yaml:"amazon_web_services,omitempty"`
	GoogleCloudPlatform *GCPCredentials   `yaml:"google_cloud_platform,omitempty"`
	Azure               *AzureCredentials `yaml:"azure,omitempty"`
	DigitalOcean        *DOCredentials    `yaml:"digital_ocean,omitempty"`
	Local               *LocalCluster     `yaml:"local,omitempty"`
	Existing            *ExistingCluster  `yaml:"existing,omitempty"`

	// NodeGroups sizes the three logical node groups.
	NodeGroups NodeGroups `yaml:"node_groups,omitempty"`

	// Storage sizes the logical persistent volumes.
	Storage Storage `yaml:"storage,omitempty"`

	// Environments lists the named conda environments in declared order.
	// Render output preserves this order.
	Environments []Environment `yaml:"environments,omitempty"`

	// TerraformState selects how the external executor stores its state.
	TerraformState *TerraformState `yaml:"terraform_state,omitempty"`

	// Keycloak configures the identity provider deployment.
	Keycloak Keycloak `yaml:"keycloak,omitempty"`

	// Monitoring is an optional feature toggle; absent means disabled.
	Monitoring *Monitoring `yaml:"monitoring,omitempty"`
}

// AWSCredentials is the fixed credential shape for the aws provider.
type AWSCredentials struct {
	// RoleARN is the IAM role assumed by the external executor.
	RoleARN string `yaml:"role_arn"`
	Region  string `yaml:"region"`
	// KubernetesVersion pins the EKS control plane version.
	KubernetesVersion string `yaml:"kubernetes_version,omitempty"`
}

// GCPCredentials is the fixed credential shape for the gcp provider.
type GCPCredentials struct {
	Project string `yaml:"project"`
	Region  string `yaml:"region"`
	// WorkloadIdentity enables workload identity federation for the
	// cluster service accounts.
	WorkloadIdentity  bool   `yaml:"workload_identity,omitempty"`
	KubernetesVersion string `yaml:"kubernetes_version,omitempty"`
}

// AzureCredentials is the fixed credential shape for the azure provider.
type AzureCredentials struct {
	SubscriptionID    string `yaml:"subscription_id"`
	TenantID          string `yaml:"tenant_id"`
	ClientID          string `yaml:"client_id"`
	Region            string `yaml:"region"`
	KubernetesVersion string `yaml:"kubernetes_version,omitempty"`
}

// DOCredentials is the fixed credential shape for the do provider.
type DOCredentials struct {
	// Token is a reference to the API token environment variable, never
	// the token value itself.
	Token             string `yaml:"token"`
	Region            string `yaml:"region"`
	KubernetesVersion string `yaml:"kubernetes_version,omitempty"`
}

// LocalCluster configures a local (kind) deployment target.
type LocalCluster struct {
	// KubeContext overrides the kubeconfig context to use.
	KubeContext string `yaml:"kube_context,omitempty"`
}

// ExistingCluster configures deployment onto a pre-existing cluster.
type ExistingCluster struct {
	KubeContext string `yaml:"kube_context,omitempty"`
}

// NodeGroups holds the three logical node groups every deployment has.
type NodeGroups struct {
	General NodeGroup `yaml:"general,omitempty"`
	User    NodeGroup `yaml:"user,omitempty"`
	Worker  NodeGroup `yaml:"worker,omitempty"`
}

// NodeGroup sizes one logical node group.
type NodeGroup struct {
	// Instance is the provider-specific machine type.
	Instance string `yaml:"instance,omitempty"`
	MinNodes int    `yaml:"min_nodes,omitempty"`
	MaxNodes int    `yaml:"max_nodes,omitempty"`
}

// Storage sizes the logical persistent volumes.
type Storage struct {
	// SharedFilesystem is the user-visible shared filesystem size.
	SharedFilesystem string `yaml:"shared_filesystem,omitempty"`
	// PackageCache is the conda package cache size.
	PackageCache string `yaml:"package_cache,omitempty"`
}

// Environment is one named conda environment definition.
type Environment struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// TerraformState selects the state backend variant for the external executor.
type TerraformState struct {
	// Type is remote, local, or existing.
	Type string `yaml:"type"`
	// Backend names a non-standard backend when Type is existing.
	Backend string `yaml:"backend,omitempty"`
	// Config holds extra backend settings passed through verbatim.
	Config map[string]string `yaml:"config,omitempty"`
}

// Terraform state types.
const (
	StateRemote   = "remote"
	StateLocal    = "local"
	StateExisting = "existing"
)

// Keycloak configures the identity provider deployment.
type Keycloak struct {
	// InitialRootPassword seeds the admin account; usually injected via
	// the TRADEWIND__keycloak__initial_root_password override.
	InitialRootPassword string `yaml:"initial_root_password,omitempty"`

	// CustomTheme is an optional feature toggle. A nil pointer means the
	// feature is disabled; a present block must carry its required fields.
	CustomTheme *CustomTheme `yaml:"custom_theme,omitempty"`
}

// CustomTheme configures syncing a Keycloak theme from a git repository.
// The theme is delivered by an init container that clones the repository
// into a persistent volume on pod start.
type CustomTheme struct {
	Repository string `yaml:"repository"`
	Branch     string `yaml:"branch"`
	// SSHKeyPath and KnownHostsPath are only needed for private
	// repositories reached over SSH.
	SSHKeyPath     string `yaml:"ssh_key_path,omitempty"`
	KnownHostsPath string `yaml:"known_hosts_path,omitempty"`
}

// Monitoring is an optional feature toggle for the metrics stack.
type Monitoring struct {
	// Retention is how long metrics are kept, e.g. "30d".
	Retention string `yaml:"retention"`
}

// ApplyDefaults fills documented defaults for optional fields.
func (c *Config) ApplyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "dev"
	}
	if c.TradewindVersion == "" {
		c.TradewindVersion = Version
	}
	if c.Storage.SharedFilesystem == "" {
		c.Storage.SharedFilesystem = "200Gi"
	}
	if c.Storage.PackageCache == "" {
		c.Storage.PackageCache = "60Gi"
	}
	if c.TerraformState == nil {
		c.TerraformState = &TerraformState{Type: StateRemote}
	}
	if c.NodeGroups.General.MinNodes == 0 && c.NodeGroups.General.MaxNodes == 0 {
		c.NodeGroups.General = NodeGroup{MinNodes: 1, MaxNodes: 1}
	}
	if c.NodeGroups.User.MaxNodes == 0 {
		c.NodeGroups.User.MaxNodes = 5
	}
	if c.NodeGroups.Worker.MaxNodes == 0 {
		c.NodeGroups.Worker.MaxNodes = 5
	}
}

// CredentialBlocks returns the populated provider credential blocks keyed by
// the provider they belong to. Used by validation to enforce exclusivity.
func (c *Config) CredentialBlocks() map[provider.Provider]bool {
	blocks := make(map[provider.Provider]bool)
	if c.AmazonWebServices != nil {
		blocks[provider.AWS] = true
	}
	if c.GoogleCloudPlatform != nil {
		blocks[provider.GCP] = true
	}
	if c.Azure != nil {
		blocks[provider.Azure] = true
	}
	if c.DigitalOcean != nil {
		blocks[provider.DigitalOcean] = true
	}
	if c.Local != nil {
		blocks[provider.Local] = true
	}
	if c.Existing != nil {
		blocks[provider.Existing] = true
	}
	return blocks
}

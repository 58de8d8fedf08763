package stage

import (
	"fmt"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
)

// Stage identifiers. The numeric prefix mirrors the stage Number and fixes
// the on-disk directory order.
const (
	TerraformState        = "01-terraform-state"
	Infrastructure        = "02-infrastructure"
	KubernetesInitialize  = "03-kubernetes-initialize"
	KubernetesIngress     = "04-kubernetes-ingress"
	KubernetesKeycloak    = "05-kubernetes-keycloak"
	KeycloakConfiguration = "06-kubernetes-keycloak-configuration"
	KubernetesServices    = "07-kubernetes-services"
	Extensions            = "08-extensions"
)

var cloudProviders = []provider.Provider{
	provider.AWS, provider.GCP, provider.Azure, provider.DigitalOcean,
}

// Catalog returns the full stage set in declaration order. The catalog is
// static; provider and feature conditionality is resolved at render time.
func Catalog() []Stage {
	return []Stage{
		{
			Number:    1,
			ID:        TerraformState,
			Providers: cloudProviders,
			Templates: []Template{
				{Path: "aws-backend.tf", Providers: []provider.Provider{provider.AWS}},
				{Path: "gcp-backend.tf", Providers: []provider.Provider{provider.GCP}},
				{Path: "azure-backend.tf", Providers: []provider.Provider{provider.Azure}},
				{Path: "do-backend.tf", Providers: []provider.Provider{provider.DigitalOcean}},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"backend":       b.StateBackend,
					"state_name":    fmt.Sprintf("%s-%s-terraform-state", cfg.ProjectName, cfg.Namespace),
					"state_enabled": cfg.TerraformState.Type == config.StateRemote,
				}
			},
		},
		{
			Number:    2,
			ID:        Infrastructure,
			DependsOn: []string{TerraformState},
			Templates: []Template{
				{Path: "aws-eks.tf", Providers: []provider.Provider{provider.AWS}},
				{Path: "gcp-gke.tf", Providers: []provider.Provider{provider.GCP}},
				{Path: "azure-aks.tf", Providers: []provider.Provider{provider.Azure}},
				{Path: "do-doks.tf", Providers: []provider.Provider{provider.DigitalOcean}},
				{Path: "local-kind.tf", Providers: []provider.Provider{provider.Local}},
				{Path: "existing-context.tf", Providers: []provider.Provider{provider.Existing}},
				{Path: "outputs.tf"},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				groups := make(map[string]any)
				for name, value := range nodeGroupValues(cfg, b) {
					groups[name] = map[string]any{
						"key":   b.NodeGroupLabelKey,
						"value": value,
					}
				}
				return map[string]any{
					"cluster_name":     fmt.Sprintf("%s-%s", cfg.ProjectName, cfg.Namespace),
					"node_selectors":   groups,
					"kubeconfig_path":  fmt.Sprintf("%s/kubeconfig", Infrastructure),
					"autoscaling":      b.Autoscaling,
					"shared_fs_remote": b.SharedFilesystem != provider.NFSServer,
				}
			},
		},
		{
			Number:    3,
			ID:        KubernetesInitialize,
			DependsOn: []string{Infrastructure},
			Templates: []Template{
				{Path: "namespace.yaml"},
				{Path: "shared-filesystem.yaml"},
				{Path: "autoscaler.yaml", Providers: cloudProviders},
				{Path: "initialize-overrides.yaml", UserEditable: true},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"namespace":         cfg.Namespace,
					"shared_filesystem": string(b.SharedFilesystem),
				}
			},
		},
		{
			Number:    4,
			ID:        KubernetesIngress,
			DependsOn: []string{KubernetesInitialize},
			Templates: []Template{
				{Path: "traefik.yaml"},
				{Path: "ingress-overrides.yaml", UserEditable: true},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"endpoint":   cfg.Domain,
					"http_port":  80,
					"https_port": 443,
				}
			},
		},
		{
			Number:    5,
			ID:        KubernetesKeycloak,
			DependsOn: []string{KubernetesIngress},
			Templates: []Template{
				{Path: "keycloak.yaml"},
				{Path: "theme-sync.yaml", Feature: FeatureCustomTheme},
				{Path: "keycloak-overrides.yaml", UserEditable: true},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"keycloak_url": fmt.Sprintf("https://%s/auth", cfg.Domain),
					"realm":        cfg.ProjectName,
				}
			},
		},
		{
			Number:    6,
			ID:        KeycloakConfiguration,
			DependsOn: []string{KubernetesKeycloak},
			Templates: []Template{
				{Path: "realm.yaml"},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"realm_id": cfg.ProjectName,
					"groups":   []string{"admin", "developer", "analyst"},
				}
			},
		},
		{
			Number:    7,
			ID:        KubernetesServices,
			DependsOn: []string{KeycloakConfiguration},
			Templates: []Template{
				{Path: "jupyterhub.yaml"},
				{Path: "dask-gateway.yaml"},
				{Path: "conda-store.yaml"},
				{Path: "monitoring-values.yaml", Feature: FeatureMonitoring},
				{Path: "services-overrides.yaml", UserEditable: true},
			},
			Outputs: func(cfg *config.Config, b provider.Bindings) map[string]any {
				return map[string]any{
					"jupyterhub_url":  fmt.Sprintf("https://%s/", cfg.Domain),
					"dask_gateway":    fmt.Sprintf("https://%s/gateway", cfg.Domain),
					"conda_store_url": fmt.Sprintf("https://%s/conda-store", cfg.Domain),
				}
			},
		},
		{
			Number:    8,
			ID:        Extensions,
			DependsOn: []string{KubernetesServices},
			Templates: []Template{
				{Path: "extensions.yaml"},
			},
		},
	}
}

// nodeGroupValues maps the logical node group names to the label value that
// selects them on the active provider.
func nodeGroupValues(cfg *config.Config, b provider.Bindings) map[string]string {
	if !b.Provider.Cloud() {
		// Local and existing clusters have no managed node groups; every
		// logical group selects linux nodes.
		return map[string]string{"general": "linux", "user": "linux", "worker": "linux"}
	}
	return map[string]string{"general": "general", "user": "user", "worker": "worker"}
}

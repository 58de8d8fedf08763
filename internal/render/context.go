// Package render turns the validated configuration into the per-stage file
// trees consumed by the external executor. Rendering is a pure function of
// the configuration document; it never reads live infrastructure.
package render

import (
	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
)

// nodeGroupOrder fixes the emission order of the logical node groups.
var nodeGroupOrder = []string{"general", "user", "worker"}

// BuildContext assembles the template data for one stage. The same context
// shape is shared by every stage; upstream outputs accumulate under
// "outputs" keyed by stage ID.
func BuildContext(cfg *config.Config, b provider.Bindings, features map[string]bool, outputs map[string]map[string]any) map[string]any {
	data := map[string]any{
		"project":           cfg.ProjectName,
		"namespace":         cfg.Namespace,
		"domain":            cfg.Domain,
		"provider":          string(cfg.Provider),
		"tradewind_version": cfg.TradewindVersion,
		"prevent_deploy":    cfg.PreventDeploy,

		"node_group_label_key": b.NodeGroupLabelKey,
		"node_groups":          nodeGroupContexts(cfg, b),
		"autoscaling":          b.Autoscaling,
		"shared_fs_variant":    string(b.SharedFilesystem),
		"state_backend":        b.StateBackend,

		"storage": map[string]any{
			"shared_filesystem": cfg.Storage.SharedFilesystem,
			"package_cache":     cfg.Storage.PackageCache,
		},
		"environments": environmentContexts(cfg),
		"features":     features,
		"credentials":  credentialContext(cfg),
		"keycloak":     keycloakContext(cfg),
		"outputs":      outputs,
	}

	if cfg.TerraformState != nil {
		data["terraform_state"] = map[string]any{
			"type":    cfg.TerraformState.Type,
			"backend": cfg.TerraformState.Backend,
			"config":  cfg.TerraformState.Config,
		}
	}
	if cfg.Monitoring != nil {
		data["monitoring"] = map[string]any{"retention": cfg.Monitoring.Retention}
	}
	return data
}

// nodeGroupContexts emits the node groups in fixed order with the provider's
// selector label attached to each.
func nodeGroupContexts(cfg *config.Config, b provider.Bindings) []map[string]any {
	groups := map[string]config.NodeGroup{
		"general": cfg.NodeGroups.General,
		"user":    cfg.NodeGroups.User,
		"worker":  cfg.NodeGroups.Worker,
	}

	out := make([]map[string]any, 0, len(nodeGroupOrder))
	for _, name := range nodeGroupOrder {
		g := groups[name]
		labelValue := name
		if !b.Provider.Cloud() {
			labelValue = "linux"
		}
		out = append(out, map[string]any{
			"name":        name,
			"instance":    g.Instance,
			"min_nodes":   g.MinNodes,
			"max_nodes":   g.MaxNodes,
			"label_key":   b.NodeGroupLabelKey,
			"label_value": labelValue,
		})
	}
	return out
}

// environmentContexts preserves the declared environment order.
func environmentContexts(cfg *config.Config) []map[string]any {
	out := make([]map[string]any, 0, len(cfg.Environments))
	for _, env := range cfg.Environments {
		out = append(out, map[string]any{
			"name":         env.Name,
			"channels":     env.Channels,
			"dependencies": env.Dependencies,
		})
	}
	return out
}

// credentialContext exposes the active provider's credential block fields.
// Only references and identifiers appear here; secret values stay in the
// operator's environment.
func credentialContext(cfg *config.Config) map[string]any {
	switch {
	case cfg.AmazonWebServices != nil:
		return map[string]any{
			"role_arn":           cfg.AmazonWebServices.RoleARN,
			"region":             cfg.AmazonWebServices.Region,
			"kubernetes_version": cfg.AmazonWebServices.KubernetesVersion,
		}
	case cfg.GoogleCloudPlatform != nil:
		return map[string]any{
			"project":            cfg.GoogleCloudPlatform.Project,
			"region":             cfg.GoogleCloudPlatform.Region,
			"workload_identity":  cfg.GoogleCloudPlatform.WorkloadIdentity,
			"kubernetes_version": cfg.GoogleCloudPlatform.KubernetesVersion,
		}
	case cfg.Azure != nil:
		return map[string]any{
			"subscription_id":    cfg.Azure.SubscriptionID,
			"tenant_id":          cfg.Azure.TenantID,
			"client_id":          cfg.Azure.ClientID,
			"region":             cfg.Azure.Region,
			"kubernetes_version": cfg.Azure.KubernetesVersion,
		}
	case cfg.DigitalOcean != nil:
		return map[string]any{
			"token":              cfg.DigitalOcean.Token,
			"region":             cfg.DigitalOcean.Region,
			"kubernetes_version": cfg.DigitalOcean.KubernetesVersion,
		}
	case cfg.Local != nil:
		return map[string]any{"kube_context": cfg.Local.KubeContext}
	case cfg.Existing != nil:
		return map[string]any{"kube_context": cfg.Existing.KubeContext}
	default:
		return map[string]any{}
	}
}

func keycloakContext(cfg *config.Config) map[string]any {
	kc := map[string]any{
		"initial_root_password": cfg.Keycloak.InitialRootPassword,
	}
	if theme := cfg.Keycloak.CustomTheme; theme != nil {
		kc["custom_theme"] = map[string]any{
			"repository":       theme.Repository,
			"branch":           theme.Branch,
			"ssh_key_path":     theme.SSHKeyPath,
			"known_hosts_path": theme.KnownHostsPath,
		}
	}
	return kc
}

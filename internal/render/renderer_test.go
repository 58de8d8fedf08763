package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/stage"
)

func testConfig(p provider.Provider) *config.Config {
	cfg := &config.Config{
		ProjectName: "datalab",
		Provider:    p,
		Domain:      "datalab.example.com",
		NodeGroups: config.NodeGroups{
			General: config.NodeGroup{Instance: "m5.xlarge", MinNodes: 1, MaxNodes: 1},
			User:    config.NodeGroup{Instance: "m5.large", MaxNodes: 5},
			Worker:  config.NodeGroup{Instance: "m5.large", MaxNodes: 5},
		},
	}
	switch p {
	case provider.AWS:
		cfg.AmazonWebServices = &config.AWSCredentials{RoleARN: "arn:aws:iam::1:role/x", Region: "us-east-1"}
	case provider.GCP:
		cfg.GoogleCloudPlatform = &config.GCPCredentials{Project: "datalab-123456", Region: "us-central1"}
	case provider.Azure:
		cfg.Azure = &config.AzureCredentials{
			SubscriptionID: "00000000-0000-0000-0000-000000000000",
			TenantID:       "11111111-1111-1111-1111-111111111111",
			ClientID:       "22222222-2222-2222-2222-222222222222",
			Region:         "eastus",
		}
	case provider.DigitalOcean:
		cfg.DigitalOcean = &config.DOCredentials{Token: "DIGITALOCEAN_TOKEN", Region: "nyc3"}
	case provider.Local:
		cfg.Local = &config.LocalCluster{}
	case provider.Existing:
		cfg.Existing = &config.ExistingCluster{KubeContext: "kind-datalab"}
	}
	cfg.ApplyDefaults()
	return cfg
}

func findStage(t *testing.T, id string) stage.Stage {
	t.Helper()
	for _, s := range stage.Catalog() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("stage %s not in catalog", id)
	return stage.Stage{}
}

func renderData(cfg *config.Config, outputs map[string]map[string]any) (map[string]any, provider.Bindings) {
	bindings, err := provider.Resolve(cfg.Provider)
	if err != nil {
		panic(err)
	}
	if outputs == nil {
		outputs = map[string]map[string]any{}
	}
	return BuildContext(cfg, bindings, stage.Features(cfg), outputs), bindings
}

func TestRenderStageIsDeterministic(t *testing.T) {
	cfg := testConfig(provider.GCP)
	data, _ := renderData(cfg, nil)
	s := findStage(t, stage.Infrastructure)
	r := New()

	first, err := r.RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)
	second, err := r.RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].RelPath, second[i].RelPath)
		assert.Equal(t, string(first[i].Content), string(second[i].Content))
	}
}

func TestRenderStageProviderExclusivity(t *testing.T) {
	cfg := testConfig(provider.AWS)
	data, _ := renderData(cfg, nil)
	s := findStage(t, stage.Infrastructure)

	files, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	assert.Contains(t, paths, "aws-eks.tf")
	assert.NotContains(t, paths, "gcp-gke.tf")
	assert.NotContains(t, paths, "azure-aks.tf")
	assert.NotContains(t, paths, "do-doks.tf")
}

func TestRenderStageFeatureAbsence(t *testing.T) {
	cfg := testConfig(provider.GCP)
	data, _ := renderData(cfg, nil)
	s := findStage(t, stage.KubernetesKeycloak)

	files, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)

	for _, f := range files {
		assert.NotEqual(t, "theme-sync.yaml", f.RelPath)
		if f.RelPath == "keycloak.yaml" {
			assert.NotContains(t, string(f.Content), "initContainers",
				"disabled feature leaves no trace in shared templates")
		}
	}
}

func TestRenderStageFeatureEnabled(t *testing.T) {
	cfg := testConfig(provider.GCP)
	cfg.Keycloak.CustomTheme = &config.CustomTheme{
		Repository: "https://github.com/example/theme.git",
		Branch:     "main",
	}
	data, _ := renderData(cfg, nil)
	s := findStage(t, stage.KubernetesKeycloak)

	files, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)

	var sawThemeSync bool
	for _, f := range files {
		if f.RelPath == "theme-sync.yaml" {
			sawThemeSync = true
			assert.Contains(t, string(f.Content), "https://github.com/example/theme.git")
		}
		if f.RelPath == "keycloak.yaml" {
			assert.Contains(t, string(f.Content), "initContainers")
		}
	}
	assert.True(t, sawThemeSync)
}

func TestRenderStageMissingVariable(t *testing.T) {
	cfg := testConfig(provider.GCP)
	data, _ := renderData(cfg, nil)
	delete(data, "domain")
	s := findStage(t, stage.KubernetesKeycloak)

	_, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, stage.KubernetesKeycloak, renderErr.StageID)
	assert.Equal(t, "domain", renderErr.Variable)
	assert.Contains(t, err.Error(), stage.KubernetesKeycloak)
}

func TestRenderStageConsumesUpstreamOutputs(t *testing.T) {
	cfg := testConfig(provider.GCP)
	outputs := map[string]map[string]any{
		stage.KubernetesKeycloak: {
			"keycloak_url": "https://datalab.example.com/auth",
			"realm":        "datalab",
		},
	}
	data, _ := renderData(cfg, outputs)
	s := findStage(t, stage.KeycloakConfiguration)

	files, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, string(files[0].Content), "https://datalab.example.com/auth")
}

func TestRenderStageMarksUserEditableFiles(t *testing.T) {
	cfg := testConfig(provider.GCP)
	data, _ := renderData(cfg, nil)
	s := findStage(t, stage.KubernetesIngress)

	files, err := New().RenderStage(s, cfg.Provider, stage.Features(cfg), data)
	require.NoError(t, err)

	editable := map[string]bool{}
	for _, f := range files {
		editable[f.RelPath] = f.UserEditable
	}
	assert.False(t, editable["traefik.yaml"])
	assert.True(t, editable["ingress-overrides.yaml"])
}

func TestRenderAllStagesAllProviders(t *testing.T) {
	outputs := map[string]map[string]any{}
	for _, s := range stage.Catalog() {
		outputs[s.ID] = map[string]any{
			"keycloak_url": "https://datalab.example.com/auth",
			"realm":        "datalab",
		}
	}

	for _, p := range provider.All() {
		cfg := testConfig(p)
		data, _ := renderData(cfg, outputs)
		r := New()
		for _, s := range stage.Catalog() {
			if !s.AppliesTo(p) {
				continue
			}
			files, err := r.RenderStage(s, p, stage.Features(cfg), data)
			require.NoError(t, err, "stage %s provider %s", s.ID, p)
			require.NotEmpty(t, files, "stage %s provider %s", s.ID, p)
			for _, f := range files {
				assert.False(t, strings.HasSuffix(f.RelPath, ".tmpl"))
				assert.NotEmpty(t, f.Content)
			}
		}
	}
}

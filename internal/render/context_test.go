package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/stage"
)

func TestBuildContextInjectsNodeGroupLabels(t *testing.T) {
	cfg := testConfig(provider.AWS)
	data, bindings := renderData(cfg, nil)

	assert.Equal(t, "eks.amazonaws.com/nodegroup", data["node_group_label_key"])

	groups, ok := data["node_groups"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, groups, 3)
	assert.Equal(t, "general", groups[0]["name"])
	assert.Equal(t, "user", groups[1]["name"])
	assert.Equal(t, "worker", groups[2]["name"])
	for _, g := range groups {
		assert.Equal(t, bindings.NodeGroupLabelKey, g["label_key"])
		assert.Equal(t, g["name"], g["label_value"], "cloud providers select groups by name")
	}
}

func TestBuildContextLocalProviderSelectsLinuxNodes(t *testing.T) {
	cfg := testConfig(provider.Local)
	data, _ := renderData(cfg, nil)

	groups := data["node_groups"].([]map[string]any)
	for _, g := range groups {
		assert.Equal(t, "kubernetes.io/os", g["label_key"])
		assert.Equal(t, "linux", g["label_value"])
	}
}

func TestBuildContextPreservesEnvironmentOrder(t *testing.T) {
	cfg := testConfig(provider.GCP)
	cfg.Environments = []config.Environment{
		{Name: "zeta", Dependencies: []string{"python=3.12"}},
		{Name: "alpha"},
	}
	data, _ := renderData(cfg, nil)

	envs := data["environments"].([]map[string]any)
	require.Len(t, envs, 2)
	assert.Equal(t, "zeta", envs[0]["name"])
	assert.Equal(t, "alpha", envs[1]["name"])
}

func TestBuildContextFeatureToggles(t *testing.T) {
	cfg := testConfig(provider.GCP)
	data, _ := renderData(cfg, nil)
	features := data["features"].(map[string]bool)
	assert.False(t, features[stage.FeatureMonitoring])
	_, present := data["monitoring"]
	assert.False(t, present, "disabled features leave no context keys behind")

	cfg.Monitoring = &config.Monitoring{Retention: "30d"}
	data, _ = renderData(cfg, nil)
	features = data["features"].(map[string]bool)
	assert.True(t, features[stage.FeatureMonitoring])
	assert.Equal(t, map[string]any{"retention": "30d"}, data["monitoring"])
}

func TestToYamlSortsMapKeys(t *testing.T) {
	out, err := toYaml(map[string]any{"zeta": 1, "alpha": 2, "mid": 3})
	require.NoError(t, err)
	assert.Equal(t, "alpha: 2\nmid: 3\nzeta: 1", out)
}

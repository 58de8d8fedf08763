package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/provider"
)

const minimalDoc = `
project_name: datalab
provider: gcp
domain: datalab.example.com
google_cloud_platform:
  project: datalab-123456
  region: us-central1
`

func TestParseMinimalDocument(t *testing.T) {
	cfg, issues, err := Parse([]byte(minimalDoc), LoadOptions{})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.NotNil(t, cfg)

	assert.Equal(t, "datalab", cfg.ProjectName)
	assert.Equal(t, provider.GCP, cfg.Provider)
	assert.Equal(t, "dev", cfg.Namespace, "namespace default applied")
	assert.Equal(t, "200Gi", cfg.Storage.SharedFilesystem, "storage default applied")
	require.NotNil(t, cfg.TerraformState)
	assert.Equal(t, StateRemote, cfg.TerraformState.Type)
}

func TestParseRejectsUnknownTopLevelKeys(t *testing.T) {
	doc := minimalDoc + `
porvider: aws
extra_stuff: true
`
	cfg, issues, err := Parse([]byte(doc), LoadOptions{})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Len(t, issues, 2)
	assert.Equal(t, "extra_stuff", issues[0].Path)
	assert.Equal(t, "porvider", issues[1].Path)
	for _, issue := range issues {
		assert.Equal(t, "unknown configuration key", issue.Reason)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	cfg, issues, err := Parse([]byte("project_name: [unclosed"), LoadOptions{})
	require.NoError(t, err)
	assert.Nil(t, cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "(document)", issues[0].Path)
}

func TestParseEnvOverridesWin(t *testing.T) {
	doc := minimalDoc + `
keycloak:
  initial_root_password: from-document
`
	cfg, issues, err := Parse([]byte(doc), LoadOptions{
		Environ: []string{
			"TRADEWIND__keycloak__initial_root_password=from-env",
			"TRADEWIND__namespace=prod",
			"UNRELATED=ignored",
		},
	})
	require.NoError(t, err)
	require.Empty(t, issues)

	assert.Equal(t, "from-env", cfg.Keycloak.InitialRootPassword)
	assert.Equal(t, "prod", cfg.Namespace)
}

func TestParseOverlayUnderEnv(t *testing.T) {
	cfg, issues, err := Parse([]byte(minimalDoc), LoadOptions{
		Overlay: map[string]any{
			"keycloak": map[string]any{"initial_root_password": "from-overlay"},
			"domain":   "overlay.example.com",
		},
		Environ: []string{"TRADEWIND__domain=env.example.com"},
	})
	require.NoError(t, err)
	require.Empty(t, issues)

	assert.Equal(t, "from-overlay", cfg.Keycloak.InitialRootPassword)
	assert.Equal(t, "env.example.com", cfg.Domain, "environment beats overlay")
}

func TestParseOverridesKeepScalarTypes(t *testing.T) {
	cfg, issues, err := Parse([]byte(minimalDoc), LoadOptions{
		Environ: []string{
			"TRADEWIND__prevent_deploy=true",
			"TRADEWIND__node_groups__worker__max_nodes=10",
		},
	})
	require.NoError(t, err)
	require.Empty(t, issues)

	assert.True(t, cfg.PreventDeploy)
	assert.Equal(t, 10, cfg.NodeGroups.Worker.MaxNodes)
}

func TestParseOverridesAreDeterministic(t *testing.T) {
	environ := []string{
		"TRADEWIND__namespace=b",
		"TRADEWIND__domain=x.example.com",
	}
	overrides := ParseOverrides(environ)
	require.Len(t, overrides, 2)
	// Sorted by key: domain before namespace.
	assert.Equal(t, []string{"domain"}, overrides[0].Path)
	assert.Equal(t, []string{"namespace"}, overrides[1].Path)
}

func TestParseEnvironmentsPreserveOrder(t *testing.T) {
	doc := minimalDoc + `
environments:
  - name: zeta
  - name: alpha
  - name: mid
`
	cfg, issues, err := Parse([]byte(doc), LoadOptions{})
	require.NoError(t, err)
	require.Empty(t, issues)

	require.Len(t, cfg.Environments, 3)
	assert.Equal(t, "zeta", cfg.Environments[0].Name)
	assert.Equal(t, "alpha", cfg.Environments[1].Name)
	assert.Equal(t, "mid", cfg.Environments[2].Name)
}

func TestUpgradeRenamesLegacyKeysAndReparses(t *testing.T) {
	doc := `
project_name: datalab
provider: do
domain: datalab.example.com
tradewind_version: 0.3.1
digitalocean:
  token: DIGITALOCEAN_TOKEN
  region: nyc3
`
	upgraded, result, err := Upgrade([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "0.3.1", result.FromVersion)
	assert.Contains(t, result.Renamed, "digitalocean -> digital_ocean")

	cfg, issues, err := Parse(upgraded, LoadOptions{})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.NotNil(t, cfg.DigitalOcean)
	assert.Equal(t, "nyc3", cfg.DigitalOcean.Region)
	assert.Equal(t, Version, cfg.TradewindVersion)
}

func TestUpgradeNoopAtCurrentVersion(t *testing.T) {
	doc := "project_name: datalab\ntradewind_version: " + Version + "\n"
	upgraded, result, err := Upgrade([]byte(doc))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, doc, string(upgraded))
}

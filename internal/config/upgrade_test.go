package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestUpgradeCurrentVersionUnchanged(t *testing.T) {
	doc := []byte("project_name: datalab\ntradewind_version: " + Version + "\n")

	out, result, err := Upgrade(doc)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, doc, out)
}

func TestUpgradeRenamesLegacyKeys(t *testing.T) {
	doc := []byte(`project_name: datalab
tradewind_version: "0.3.0"
digitalocean:
  token: tok
  region: nyc3
conda_environments:
  - name: analysis
    channels: [conda-forge]
    dependencies: [python=3.11]
default_images:
  jupyterhub: some/image:tag
`)

	out, result, err := Upgrade(doc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "0.3.0", result.FromVersion)
	assert.Equal(t, []string{
		"conda_environments -> environments",
		"digitalocean -> digital_ocean",
	}, result.Renamed)
	assert.Equal(t, []string{"default_images"}, result.Dropped)

	raw := make(map[string]any)
	require.NoError(t, yaml.Unmarshal(out, &raw))
	assert.Equal(t, Version, raw["tradewind_version"])
	assert.Contains(t, raw, "digital_ocean")
	assert.Contains(t, raw, "environments")
	assert.NotContains(t, raw, "digitalocean")
	assert.NotContains(t, raw, "default_images")
}

func TestUpgradeKeepsExistingNewKey(t *testing.T) {
	doc := []byte(`project_name: datalab
tradewind_version: "0.3.0"
digitalocean:
  token: old
digital_ocean:
  token: new
`)

	out, _, err := Upgrade(doc)
	require.NoError(t, err)

	raw := make(map[string]any)
	require.NoError(t, yaml.Unmarshal(out, &raw))
	block, ok := raw["digital_ocean"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new", block["token"])
}

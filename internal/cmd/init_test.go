package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
)

func TestScaffoldIsValidForEveryProvider(t *testing.T) {
	for _, p := range provider.All() {
		t.Run(string(p), func(t *testing.T) {
			doc, err := scaffold("datalab", p, "datalab.example.com")
			require.NoError(t, err)

			cfg, issues, err := config.Parse(doc, config.LoadOptions{})
			require.NoError(t, err)
			require.Empty(t, issues, "scaffold parses cleanly")
			require.NotNil(t, cfg)

			assert.Empty(t, config.Validate(cfg), "scaffold passes validation")
			assert.Equal(t, p, cfg.Provider)
			assert.Equal(t, config.Version, cfg.TradewindVersion)
		})
	}
}

func TestScaffoldIncludesCredentialBlock(t *testing.T) {
	doc, err := scaffold("datalab", provider.AWS, "datalab.example.com")
	require.NoError(t, err)

	cfg, _, err := config.Parse(doc, config.LoadOptions{})
	require.NoError(t, err)
	require.NotNil(t, cfg.AmazonWebServices)
	assert.Equal(t, "us-east-1", cfg.AmazonWebServices.Region)
	assert.Nil(t, cfg.GoogleCloudPlatform)
}

package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
)

func TestCheckCredentials(t *testing.T) {
	bindings, err := provider.Resolve(provider.AWS)
	require.NoError(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "x")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "y")
	// AWS_DEFAULT_REGION deliberately unset.
	t.Setenv("AWS_DEFAULT_REGION", "")
	results := CheckCredentials(bindings)
	require.Len(t, results, 3)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.True(t, byName["credential: AWS_ACCESS_KEY_ID"].OK)
	assert.True(t, byName["credential: AWS_DEFAULT_REGION"].OK,
		"empty but set variables still count as present")
}

func TestCheckCredentialsLocalProviderHasNone(t *testing.T) {
	bindings, err := provider.Resolve(provider.Local)
	require.NoError(t, err)
	assert.Empty(t, CheckCredentials(bindings))
}

func TestCheckThemeDisabled(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, CheckTheme(context.Background(), cfg))
}

func TestCheckThemeUnreachable(t *testing.T) {
	cfg := &config.Config{}
	cfg.Keycloak.CustomTheme = &config.CustomTheme{
		Repository: t.TempDir() + "/missing",
		Branch:     "main",
	}

	results := CheckTheme(context.Background(), cfg)
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.NotEmpty(t, results[0].Detail)
}

func TestFailed(t *testing.T) {
	assert.False(t, Failed(nil))
	assert.False(t, Failed([]Result{{OK: true, Fatal: true}}))
	assert.False(t, Failed([]Result{{OK: false, Fatal: false}}))
	assert.True(t, Failed([]Result{{OK: false, Fatal: true}}))
}

package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644))
	}
}

func TestHasTerraformFiles(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, hasTerraformFiles(dir))

	writeFiles(t, dir, "gcp-gke.tf", "outputs.tf")
	assert.True(t, hasTerraformFiles(dir))
}

func TestPartitionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"jupyterhub.yaml",
		"dask-gateway.yaml",
		"conda-store.yaml",
		"monitoring-values.yaml",
		"services-overrides.yaml",
		"realm.yaml",
		"notes.txt",
	)

	manifests, values, err := partitionFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"realm.yaml"}, manifests)
	assert.Equal(t, []string{
		"conda-store.yaml",
		"dask-gateway.yaml",
		"jupyterhub.yaml",
		"monitoring-values.yaml",
	}, values)
}

func TestPartitionFilesMissingDirectory(t *testing.T) {
	_, _, err := partitionFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

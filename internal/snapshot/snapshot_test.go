package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStageFile(t *testing.T, root, stageDir, name, content string) {
	t.Helper()
	dir := filepath.Join(root, stageDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCreateEmptyRootIsNoop(t *testing.T) {
	name, err := Create(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestCreateAndList(t *testing.T) {
	root := t.TempDir()
	writeStageFile(t, root, "02-infrastructure", "gcp-gke.tf", "resource {}\n")

	name, err := Create(root)
	require.NoError(t, err)
	require.NotEmpty(t, name)

	snapshots, err := List(root)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, name, snapshots[0].Name)

	copied := filepath.Join(snapshots[0].Path, "02-infrastructure", "gcp-gke.tf")
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "resource {}\n", string(data))
}

func TestRestoreBringsBackPreviousTree(t *testing.T) {
	root := t.TempDir()
	writeStageFile(t, root, "02-infrastructure", "gcp-gke.tf", "before\n")

	name, err := Create(root)
	require.NoError(t, err)

	writeStageFile(t, root, "02-infrastructure", "gcp-gke.tf", "after\n")
	writeStageFile(t, root, "02-infrastructure", "extra.tf", "extra\n")

	require.NoError(t, Restore(root, name))

	data, err := os.ReadFile(filepath.Join(root, "02-infrastructure", "gcp-gke.tf"))
	require.NoError(t, err)
	assert.Equal(t, "before\n", string(data))

	_, err = os.Stat(filepath.Join(root, "02-infrastructure", "extra.tf"))
	assert.True(t, os.IsNotExist(err), "restore swaps the whole stage directory")
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	err := Restore(t.TempDir(), "snapshot-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCleanupKeepsNewestSnapshots(t *testing.T) {
	root := t.TempDir()
	writeStageFile(t, root, "02-infrastructure", "main.tf", "x\n")

	for range [MaxSnapshots + 3]struct{}{} {
		_, err := Create(root)
		require.NoError(t, err)
	}

	snapshots, err := List(root)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(snapshots), MaxSnapshots)
}

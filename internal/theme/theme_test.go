package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-labs/tradewind/internal/config"
)

// initThemeRepo creates a local repository with a single commit on master.
func initThemeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "theme.properties")
	require.NoError(t, os.WriteFile(path, []byte("parent=keycloak\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("theme.properties")
	require.NoError(t, err)
	_, err = wt.Commit("add theme", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestVerifyBranchNilThemeIsNoop(t *testing.T) {
	assert.NoError(t, VerifyBranch(context.Background(), nil))
}

func TestVerifyBranchFound(t *testing.T) {
	repo := initThemeRepo(t)
	theme := &config.CustomTheme{Repository: repo, Branch: "master"}
	assert.NoError(t, VerifyBranch(context.Background(), theme))
}

func TestVerifyBranchMissing(t *testing.T) {
	repo := initThemeRepo(t)
	theme := &config.CustomTheme{Repository: repo, Branch: "does-not-exist"}

	err := VerifyBranch(context.Background(), theme)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestVerifyBranchUnreachableRepository(t *testing.T) {
	theme := &config.CustomTheme{
		Repository: filepath.Join(t.TempDir(), "missing"),
		Branch:     "main",
	}
	assert.Error(t, VerifyBranch(context.Background(), theme))
}

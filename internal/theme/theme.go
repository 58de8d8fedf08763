// Package theme verifies that a configured Keycloak custom theme repository
// is reachable before a deploy depends on it. The render path never touches
// the network; verification runs only from doctor and deploy preflight.
package theme

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/tradewind-labs/tradewind/internal/config"
)

// VerifyBranch lists the remote's references and confirms the configured
// branch exists. The repository is never cloned.
func VerifyBranch(ctx context.Context, theme *config.CustomTheme) error {
	if theme == nil {
		return nil
	}

	auth, err := authMethod(theme)
	if err != nil {
		return err
	}

	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{theme.Repository},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: auth})
	if err != nil {
		return fmt.Errorf("list %s: %w", theme.Repository, err)
	}

	want := plumbing.NewBranchReferenceName(theme.Branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return nil
		}
	}
	return fmt.Errorf("branch %q not found in %s", theme.Branch, theme.Repository)
}

// authMethod builds SSH key auth when the theme configures one; HTTPS
// repositories need no auth method.
func authMethod(theme *config.CustomTheme) (transport.AuthMethod, error) {
	if theme.SSHKeyPath == "" {
		return nil, nil
	}
	keys, err := gitssh.NewPublicKeysFromFile("git", theme.SSHKeyPath, "")
	if err != nil {
		return nil, fmt.Errorf("load ssh key %s: %w", theme.SSHKeyPath, err)
	}
	return keys, nil
}

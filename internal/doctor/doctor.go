// Package doctor provides environment checks for the external tools and
// credentials a deployment needs. The render path never requires any of
// them; doctor exists so failures surface before a deploy, not during one.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/theme"
)

// BinaryCheck describes one external binary and its purpose.
type BinaryCheck struct {
	Name        string
	Required    bool // false = warning only
	InstallHint string
}

// requiredBinaries must be present for deploy and destroy to function.
var requiredBinaries = []BinaryCheck{
	{
		Name:        "terraform",
		Required:    true,
		InstallHint: "Install terraform: https://developer.hashicorp.com/terraform/install",
	},
	{
		Name:        "kubectl",
		Required:    true,
		InstallHint: "Install kubectl: https://kubernetes.io/docs/tasks/tools/",
	},
	{
		Name:        "helm",
		Required:    true,
		InstallHint: "Install helm: https://helm.sh/docs/intro/install/",
	},
}

// optionalBinaries enhance functionality but are not strictly required.
var optionalBinaries = []BinaryCheck{
	{
		Name:        "sops",
		Required:    false,
		InstallHint: "Install sops: brew install sops",
	},
	{
		Name:        "git",
		Required:    false,
		InstallHint: "Install git: https://git-scm.com/downloads",
	},
}

// Result is one completed check.
type Result struct {
	Name   string
	OK     bool
	Fatal  bool
	Detail string
}

// CheckBinaries probes required and optional binaries on PATH.
func CheckBinaries() []Result {
	var results []Result
	for _, bin := range append(append([]BinaryCheck{}, requiredBinaries...), optionalBinaries...) {
		r := Result{Name: "binary: " + bin.Name, OK: true, Fatal: bin.Required}
		if _, err := exec.LookPath(bin.Name); err != nil {
			r.OK = false
			r.Detail = bin.InstallHint
		}
		results = append(results, r)
	}
	return results
}

// CheckCredentials verifies the environment variables the configured
// provider's executor needs. Values are never read or printed.
func CheckCredentials(b provider.Bindings) []Result {
	var results []Result
	for _, name := range b.CredentialEnvVars {
		r := Result{Name: "credential: " + name, OK: true, Fatal: true}
		if _, set := os.LookupEnv(name); !set {
			r.OK = false
			r.Detail = fmt.Sprintf("%s is not set in the environment", name)
		}
		results = append(results, r)
	}
	return results
}

// CheckTheme verifies the configured Keycloak theme repository is reachable
// and carries the configured branch. Skipped when the feature is disabled.
func CheckTheme(ctx context.Context, cfg *config.Config) []Result {
	ct := cfg.Keycloak.CustomTheme
	if ct == nil {
		return nil
	}
	r := Result{Name: "theme: " + ct.Repository, OK: true}
	if err := theme.VerifyBranch(ctx, ct); err != nil {
		r.OK = false
		r.Detail = err.Error()
	}
	return []Result{r}
}

// Run executes every check for the given configuration.
func Run(ctx context.Context, cfg *config.Config) ([]Result, error) {
	bindings, err := provider.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var results []Result
	results = append(results, CheckBinaries()...)
	results = append(results, CheckCredentials(bindings)...)
	results = append(results, CheckTheme(ctx, cfg)...)
	return results, nil
}

// Failed reports whether any fatal check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.OK && r.Fatal {
			return true
		}
	}
	return false
}

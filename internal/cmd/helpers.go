package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/secrets"
	"github.com/tradewind-labs/tradewind/internal/ui"
)

// loadConfig locates, layers, and parses the configuration document. The
// returned issues cover schema problems only; callers run config.Validate
// separately when they need cross-field checks.
func loadConfig(ctx context.Context, secretFiles []string, envFile string) (string, *config.Config, config.IssueList, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, nil, err
	}

	if envFile != "" {
		if err := config.LoadDotenv(envFile); err != nil {
			return "", nil, nil, fmt.Errorf("load env file: %w", err)
		}
	}

	var overlay map[string]any
	if len(secretFiles) > 0 {
		overlay, err = secrets.NewDecryptor().DecryptMultiple(ctx, secretFiles)
		if err != nil {
			return "", nil, nil, err
		}
	}

	cfg, issues, err := config.LoadFile(cfgPath, config.LoadOptions{
		Overlay: overlay,
		Environ: os.Environ(),
	})
	if err != nil {
		return "", nil, nil, err
	}
	return cfgPath, cfg, issues, nil
}

// loadValidatedConfig loads the document and requires it to pass validation,
// printing every finding and exiting when it does not.
func loadValidatedConfig(ctx context.Context, secretFiles []string, envFile string) (string, *config.Config) {
	cfgPath, cfg, issues, err := loadConfig(ctx, secretFiles, envFile)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if cfg != nil {
		issues = append(issues, config.Validate(cfg)...)
	}
	if len(issues) > 0 {
		ui.Error("configuration has %d problem(s):", len(issues))
		for _, issue := range issues {
			ui.Issue(issue.Path, issue.Reason)
		}
		os.Exit(1)
	}
	return cfgPath, cfg
}

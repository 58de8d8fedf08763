// Package executor drives the external tools that turn rendered stage
// directories into running infrastructure: terraform for the provisioning
// stages, kubectl and helm for the manifest stages.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tradewind-labs/tradewind/internal/stage"
)

// Runner executes stages against an output root.
type Runner struct {
	// Root is the rendered output directory.
	Root string

	Logger *slog.Logger

	// Stdout and Stderr receive the external tool output. Nil streams
	// default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner for the given output root.
func New(root string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Root: root, Logger: logger, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Deploy applies every stage in order. The first failure stops the run;
// completed stages stay applied.
func (r *Runner) Deploy(ctx context.Context, stages []stage.Stage) error {
	for _, s := range stages {
		if err := r.ApplyStage(ctx, s); err != nil {
			return fmt.Errorf("deploy stage %s: %w", s.ID, err)
		}
	}
	return nil
}

// Destroy tears stages down in reverse order so dependents disappear before
// their dependencies.
func (r *Runner) Destroy(ctx context.Context, stages []stage.Stage) error {
	for i := len(stages) - 1; i >= 0; i-- {
		if err := r.DestroyStage(ctx, stages[i]); err != nil {
			return fmt.Errorf("destroy stage %s: %w", stages[i].ID, err)
		}
	}
	return nil
}

// helmChart names the chart one rendered values file configures.
type helmChart struct {
	release string
	chart   string
}

// helmCharts maps rendered values files to the release they configure.
var helmCharts = map[string]helmChart{
	"jupyterhub.yaml":        {release: "jupyterhub", chart: "jupyterhub/jupyterhub"},
	"dask-gateway.yaml":      {release: "dask-gateway", chart: "dask/dask-gateway"},
	"conda-store.yaml":       {release: "conda-store", chart: "conda-store/conda-store"},
	"monitoring-values.yaml": {release: "monitoring", chart: "prometheus-community/kube-prometheus-stack"},
}

// ApplyStage applies one rendered stage directory.
func (r *Runner) ApplyStage(ctx context.Context, s stage.Stage) error {
	dir := filepath.Join(r.Root, s.ID)

	if hasTerraformFiles(dir) {
		r.Logger.Info("applying terraform stage", "stage", s.ID)
		if err := r.run(ctx, dir, "terraform", "init", "-input=false"); err != nil {
			return err
		}
		return r.run(ctx, dir, "terraform", "apply", "-auto-approve", "-input=false")
	}

	manifests, values, err := partitionFiles(dir)
	if err != nil {
		return err
	}
	r.Logger.Info("applying manifest stage", "stage", s.ID,
		"manifests", len(manifests), "charts", len(values))
	for _, m := range manifests {
		if err := r.run(ctx, dir, "kubectl", "apply", "-f", m); err != nil {
			return err
		}
	}
	for _, v := range values {
		chart := helmCharts[v]
		if err := r.run(ctx, dir, "helm", "upgrade", "--install", chart.release, chart.chart, "-f", v); err != nil {
			return err
		}
	}
	return nil
}

// DestroyStage tears down one rendered stage directory.
func (r *Runner) DestroyStage(ctx context.Context, s stage.Stage) error {
	dir := filepath.Join(r.Root, s.ID)

	if hasTerraformFiles(dir) {
		r.Logger.Info("destroying terraform stage", "stage", s.ID)
		return r.run(ctx, dir, "terraform", "destroy", "-auto-approve", "-input=false")
	}

	manifests, values, err := partitionFiles(dir)
	if err != nil {
		return err
	}
	for i := len(values) - 1; i >= 0; i-- {
		chart := helmCharts[values[i]]
		if err := r.run(ctx, dir, "helm", "uninstall", "--ignore-not-found", chart.release); err != nil {
			return err
		}
	}
	// Delete manifests in reverse creation order.
	for i := len(manifests) - 1; i >= 0; i-- {
		if err := r.run(ctx, dir, "kubectl", "delete", "--ignore-not-found", "-f", manifests[i]); err != nil {
			return err
		}
	}
	return nil
}

// run executes one external command in dir, surfacing stderr in the error.
func (r *Runner) run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout

	var stderr bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// hasTerraformFiles reports whether dir contains any .tf file.
func hasTerraformFiles(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	return err == nil && len(matches) > 0
}

// partitionFiles splits a stage directory into Kubernetes manifests and Helm
// values files, each sorted by name. Override files are operator inputs and
// belong to neither set.
func partitionFiles(dir string) (manifests, values []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read stage directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		if strings.HasSuffix(name, "-overrides.yaml") {
			continue
		}
		if _, ok := helmCharts[name]; ok {
			values = append(values, name)
			continue
		}
		manifests = append(manifests, name)
	}
	sort.Strings(manifests)
	sort.Strings(values)
	return manifests, values, nil
}

// LookPath verifies an external binary is on PATH.
func LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found on PATH", name)
	}
	return nil
}

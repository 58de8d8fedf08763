// Package engine drives the render pipeline: provider resolution, stage
// ordering, template rendering, and output synchronization.
package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/render"
	"github.com/tradewind-labs/tradewind/internal/stage"
	"github.com/tradewind-labs/tradewind/internal/syncer"
)

// Engine renders a validated configuration into the output directory.
type Engine struct {
	cfg      *config.Config
	bindings provider.Bindings
	root     string
	logger   *slog.Logger
	renderer *render.Renderer
}

// New builds an Engine for a validated configuration. The output root holds
// one directory per stage plus the engine state directory.
func New(cfg *config.Config, outputRoot string, logger *slog.Logger) (*Engine, error) {
	bindings, err := provider.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		bindings: bindings,
		root:     outputRoot,
		logger:   logger,
		renderer: render.New(),
	}, nil
}

// Bindings returns the resolved provider bindings.
func (e *Engine) Bindings() provider.Bindings { return e.bindings }

// Plan returns the stages that apply to the configured provider, in
// execution order.
func (e *Engine) Plan() ([]stage.Stage, error) {
	ordered, err := stage.Order(stage.Catalog())
	if err != nil {
		return nil, err
	}
	var applicable []stage.Stage
	for _, s := range ordered {
		if s.AppliesTo(e.cfg.Provider) {
			applicable = append(applicable, s)
		}
	}
	return applicable, nil
}

// StageResult is the sync outcome for one stage.
type StageResult struct {
	ID     string
	Result *syncer.Result
}

// Summary is the outcome of a full render.
type Summary struct {
	Stages []StageResult
}

// Written counts files created or updated across all stages.
func (s *Summary) Written() int {
	n := 0
	for _, st := range s.Stages {
		n += len(st.Result.Written)
	}
	return n
}

// Orphaned counts orphaned files across all stages.
func (s *Summary) Orphaned() int {
	n := 0
	for _, st := range s.Stages {
		n += len(st.Result.Orphaned)
	}
	return n
}

// Render renders every applicable stage into the output root. Stage outputs
// accumulate as each stage completes, so later templates can reference
// earlier results. The manifest is saved after every stage; an error leaves
// completed stages fully recorded on disk.
func (e *Engine) Render() (*Summary, error) {
	plan, err := e.Plan()
	if err != nil {
		return nil, err
	}

	manifest, err := syncer.LoadManifest(e.root)
	if err != nil {
		return nil, err
	}
	sync := syncer.New(e.root, e.logger)
	features := stage.Features(e.cfg)
	outputs := make(map[string]map[string]any)

	summary := &Summary{}
	for _, s := range plan {
		e.logger.Info("rendering stage", "stage", s.ID)
		data := render.BuildContext(e.cfg, e.bindings, features, outputs)
		files, err := e.renderer.RenderStage(s, e.cfg.Provider, features, data)
		if err != nil {
			return nil, err
		}

		result, err := sync.SyncStage(manifest, s.ID, files)
		if err != nil {
			return nil, fmt.Errorf("sync stage %s: %w", s.ID, err)
		}
		if err := manifest.Save(e.root); err != nil {
			return nil, err
		}
		summary.Stages = append(summary.Stages, StageResult{ID: s.ID, Result: result})

		if s.Outputs != nil {
			outputs[s.ID] = s.Outputs(e.cfg, e.bindings)
		}
	}

	// Stages that dropped out of the plan entirely, e.g. after a provider
	// switch, leave their managed files behind as orphans too.
	active := make(map[string]bool, len(plan))
	for _, s := range plan {
		active[s.ID] = true
	}
	if orphans := sync.OrphanInactiveStages(manifest, active); len(orphans) > 0 {
		if err := manifest.Save(e.root); err != nil {
			return nil, err
		}
		byStage := make(map[string][]string)
		for _, rel := range orphans {
			id := manifest.Files[rel].Stage
			byStage[id] = append(byStage[id], rel)
		}
		ids := make([]string, 0, len(byStage))
		for id := range byStage {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			summary.Stages = append(summary.Stages, StageResult{
				ID:     id,
				Result: &syncer.Result{Orphaned: byStage[id]},
			})
		}
	}
	return summary, nil
}

// DryRun renders every applicable stage in memory and returns the files per
// stage without touching the output directory.
func (e *Engine) DryRun() (map[string][]render.File, error) {
	plan, err := e.Plan()
	if err != nil {
		return nil, err
	}

	features := stage.Features(e.cfg)
	outputs := make(map[string]map[string]any)
	rendered := make(map[string][]render.File, len(plan))
	for _, s := range plan {
		data := render.BuildContext(e.cfg, e.bindings, features, outputs)
		files, err := e.renderer.RenderStage(s, e.cfg.Provider, features, data)
		if err != nil {
			return nil, err
		}
		rendered[s.ID] = files
		if s.Outputs != nil {
			outputs[s.ID] = s.Outputs(e.cfg, e.bindings)
		}
	}
	return rendered, nil
}

// Prune deletes orphaned managed files recorded in the manifest and saves
// the updated manifest.
func (e *Engine) Prune() ([]string, error) {
	manifest, err := syncer.LoadManifest(e.root)
	if err != nil {
		return nil, err
	}
	removed, err := syncer.New(e.root, e.logger).Prune(manifest)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		if err := manifest.Save(e.root); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

// Package stage defines the static catalog of infrastructure stages and the
// dependency graph that produces their deterministic render order.
package stage

import (
	"github.com/tradewind-labs/tradewind/internal/config"
	"github.com/tradewind-labs/tradewind/internal/provider"
)

// Feature names used to gate templates on configuration toggles.
const (
	FeatureCustomTheme = "keycloak_custom_theme"
	FeatureMonitoring  = "monitoring"
)

// Template describes one file a stage renders. Conditionality is data-driven:
// a template is rendered only when the active provider is in Providers (nil
// means all providers) and its owning Feature (empty means none) is enabled.
type Template struct {
	// Path is the output path relative to the stage directory. The
	// template source lives under the same path in the stage's template
	// set, with a .tmpl suffix.
	Path string

	// Providers restricts the template to a provider subset; nil means
	// every provider.
	Providers []provider.Provider

	// Feature names the configuration toggle that owns this template.
	Feature string

	// UserEditable marks override files: seeded on first render, never
	// regenerated afterwards.
	UserEditable bool
}

// AppliesTo reports whether the template is rendered for the given provider
// and enabled feature set.
func (t Template) AppliesTo(p provider.Provider, features map[string]bool) bool {
	if t.Feature != "" && !features[t.Feature] {
		return false
	}
	if t.Providers == nil {
		return true
	}
	for _, candidate := range t.Providers {
		if candidate == p {
			return true
		}
	}
	return false
}

// Stage is one ordered phase of the render pipeline.
type Stage struct {
	// Number is the numeric prefix fixing relative order between
	// independent stages.
	Number int

	// ID is the unique stage identifier; also the output directory name.
	ID string

	// DependsOn lists predecessor stage IDs.
	DependsOn []string

	// Providers restricts the whole stage to a provider subset; nil means
	// every provider.
	Providers []provider.Provider

	// Templates is the stage's template set.
	Templates []Template

	// Outputs computes the variables this stage contributes to downstream
	// stages. Values are declarative references, not live infrastructure
	// reads; rendering never calls out to a cloud.
	Outputs func(cfg *config.Config, b provider.Bindings) map[string]any
}

// AppliesTo reports whether the stage renders at all for the given provider.
func (s Stage) AppliesTo(p provider.Provider) bool {
	if s.Providers == nil {
		return true
	}
	for _, candidate := range s.Providers {
		if candidate == p {
			return true
		}
	}
	return false
}

// Features derives the enabled feature set from a configuration.
func Features(cfg *config.Config) map[string]bool {
	return map[string]bool{
		FeatureCustomTheme: cfg.Keycloak.CustomTheme != nil,
		FeatureMonitoring:  cfg.Monitoring != nil,
	}
}

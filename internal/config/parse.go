package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// knownTopLevelKeys is the closed set of keys the document may carry.
// Anything else is rejected so typos fail loudly instead of being ignored.
var knownTopLevelKeys = map[string]bool{
	"project_name":          true,
	"namespace":             true,
	"provider":              true,
	"domain":                true,
	"tradewind_version":     true,
	"prevent_deploy":        true,
	"amazon_web_services":   true,
	"google_cloud_platform": true,
	"azure":                 true,
	"digital_ocean":         true,
	"local":                 true,
	"existing":              true,
	"node_groups":           true,
	"storage":               true,
	"environments":          true,
	"terraform_state":       true,
	"keycloak":              true,
	"monitoring":            true,
}

// LoadOptions carries the override layers applied on top of the document.
// Precedence, lowest to highest: document, Overlay, Environ.
type LoadOptions struct {
	// Overlay is an optional nested map merged over the document, e.g.
	// decrypted secrets.
	Overlay map[string]any

	// Environ holds "KEY=value" entries; keys of the form
	// TRADEWIND__<section>__<key> override matching document fields.
	Environ []string
}

// Parse decodes and layers a configuration document. Schema findings are
// accumulated into the returned IssueList rather than failing on the first;
// the returned Config is usable for further validation even when issues are
// present. The error return is reserved for internal failures.
func Parse(data []byte, opts LoadOptions) (*Config, IssueList, error) {
	var issues IssueList

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		issues = append(issues, Issue{Path: "(document)", Reason: fmt.Sprintf("not valid YAML: %v", err)})
		return nil, issues, nil
	}

	if opts.Overlay != nil {
		mergeInto(raw, opts.Overlay)
	}

	for _, override := range ParseOverrides(opts.Environ) {
		setNested(raw, override.Path, override.Value)
	}

	// Fail-closed schema: reject unknown top-level keys, in stable order.
	var unknown []string
	for key := range raw {
		if !knownTopLevelKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		issues = append(issues, Issue{Path: key, Reason: "unknown configuration key"})
		delete(raw, key)
	}

	merged, err := yaml.Marshal(raw)
	if err != nil {
		return nil, issues, fmt.Errorf("re-encode configuration: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(merged))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		issues = append(issues, Issue{Path: "(document)", Reason: err.Error()})
		return nil, issues, nil
	}

	cfg.ApplyDefaults()
	return cfg, issues, nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string, opts LoadOptions) (*Config, IssueList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read configuration: %w", err)
	}
	return Parse(data, opts)
}

// mergeInto recursively merges src into dst, src winning on conflicts.
func mergeInto(dst, src map[string]any) {
	for key, srcVal := range src {
		if srcMap, srcOk := srcVal.(map[string]any); srcOk {
			if dstMap, dstOk := dst[key].(map[string]any); dstOk {
				mergeInto(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}

// setNested sets a value at a nested key path, creating intermediate maps.
// A non-map value encountered on the way is replaced; the override wins.
func setNested(dst map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	for _, key := range path[:len(path)-1] {
		next, ok := dst[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[key] = next
		}
		dst = next
	}
	dst[path[len(path)-1]] = value
}

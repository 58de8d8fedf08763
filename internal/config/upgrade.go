package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// legacyKeyRenames maps top-level configuration keys from older document
// versions to their current names. An empty value drops the key.
var legacyKeyRenames = map[string]string{
	"digitalocean":       "digital_ocean",
	"conda_environments": "environments",
	"default_images":     "", // dropped: image pinning moved into environments
}

// UpgradeResult describes what an upgrade changed.
type UpgradeResult struct {
	// FromVersion is the document version before the upgrade.
	FromVersion string
	// Renamed lists "old -> new" key renames that were applied.
	Renamed []string
	// Dropped lists keys removed because the field no longer exists.
	Dropped []string
}

// Upgrade rewrites a configuration document from an older version to the
// current one: legacy keys are renamed or dropped and tradewind_version is
// set to the running release. Documents already at the current version are
// returned unchanged with a nil result.
func Upgrade(data []byte) ([]byte, *UpgradeResult, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse configuration: %w", err)
	}

	fromVersion, _ := raw["tradewind_version"].(string)
	if IsVersionAccepted(fromVersion) {
		return data, nil, nil
	}

	result := &UpgradeResult{FromVersion: fromVersion}
	for oldKey, newKey := range legacyKeyRenames {
		value, present := raw[oldKey]
		if !present {
			continue
		}
		delete(raw, oldKey)
		if newKey == "" {
			result.Dropped = append(result.Dropped, oldKey)
			continue
		}
		// Never clobber a value already present under the new name.
		if _, exists := raw[newKey]; !exists {
			raw[newKey] = value
		}
		result.Renamed = append(result.Renamed, fmt.Sprintf("%s -> %s", oldKey, newKey))
	}

	raw["tradewind_version"] = Version
	sort.Strings(result.Renamed)
	sort.Strings(result.Dropped)

	upgraded, err := yaml.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("re-encode configuration: %w", err)
	}
	return upgraded, result, nil
}

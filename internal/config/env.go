package config

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Override is one environment-derived configuration override.
type Override struct {
	// Path is the nested field path, e.g. ["keycloak", "initial_root_password"].
	Path []string
	// Value is the decoded scalar value.
	Value any
}

// ParseOverrides extracts configuration overrides from "KEY=value" entries.
// Keys follow the convention TRADEWIND__<section>__<key>, with double
// underscores separating nesting levels. Key segments are lowercased to
// match document field names. Results are sorted by key for deterministic
// application.
func ParseOverrides(environ []string) []Override {
	prefix := EnvPrefix + "__"

	var keys []string
	values := make(map[string]string)
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
		values[key] = value
	}
	sort.Strings(keys)

	overrides := make([]Override, 0, len(keys))
	for _, key := range keys {
		segments := strings.Split(strings.TrimPrefix(key, prefix), "__")
		path := make([]string, 0, len(segments))
		for _, s := range segments {
			if s == "" {
				continue
			}
			path = append(path, strings.ToLower(s))
		}
		if len(path) == 0 {
			continue
		}
		overrides = append(overrides, Override{Path: path, Value: decodeScalar(values[key])})
	}
	return overrides
}

// decodeScalar interprets an environment value as YAML so numbers and
// booleans keep their type, falling back to the raw string.
func decodeScalar(value string) any {
	var decoded any
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil {
		return value
	}
	if decoded == nil {
		return value
	}
	return decoded
}

// LoadDotenv loads a .env-style file into the process environment without
// overriding variables that are already set.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

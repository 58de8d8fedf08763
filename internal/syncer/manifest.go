// Package syncer reconciles rendered stage files with the output directory.
// A manifest under the state directory records what the engine wrote so later
// runs can tell managed files, user edits, and orphans apart.
package syncer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tradewind-labs/tradewind/internal/fileutil"
)

// StateDirName is the engine state directory under the output root.
const StateDirName = ".tradewind"

// manifestName is the manifest file inside the state directory.
const manifestName = "manifest.yaml"

// manifestVersion is bumped when the manifest schema changes shape.
const manifestVersion = 1

// FileClass distinguishes engine-owned files from user-editable ones.
type FileClass string

// File classes.
const (
	// ClassManaged files are overwritten on every render.
	ClassManaged FileClass = "managed"
	// ClassUser files are seeded once and never touched again.
	ClassUser FileClass = "user"
)

// FileEntry records one file the engine has written.
type FileEntry struct {
	// SHA256 is the content hash recorded at the last sync: what the
	// engine wrote for managed files, what is on disk for user files.
	SHA256 string `yaml:"sha256"`

	// Stage is the ID of the stage that produced the file.
	Stage string `yaml:"stage"`

	// Class is managed or user.
	Class FileClass `yaml:"class"`

	// Orphaned marks a managed file no longer produced by any stage.
	// Orphans stay on disk until an explicit prune.
	Orphaned bool `yaml:"orphaned,omitempty"`
}

// Manifest is the engine's record of the output directory.
type Manifest struct {
	Version int `yaml:"version"`

	// Files maps output-root-relative paths (slash-separated) to their
	// entries.
	Files map[string]FileEntry `yaml:"files"`
}

// NewManifest returns an empty manifest at the current version.
func NewManifest() *Manifest {
	return &Manifest{Version: manifestVersion, Files: make(map[string]FileEntry)}
}

// Paths returns the tracked paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// manifestPath returns the manifest location under root.
func manifestPath(root string) string {
	return filepath.Join(root, StateDirName, manifestName)
}

// LoadManifest reads the manifest under root. A missing, corrupt, or
// incompatible manifest is treated as no prior state: the engine falls back
// to a full first-run sync rather than refusing to proceed.
func LoadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return NewManifest(), nil
	}
	if m.Version != manifestVersion || m.Files == nil {
		return NewManifest(), nil
	}
	return &m, nil
}

// Save writes the manifest atomically under root, creating the state
// directory on first use.
func (m *Manifest) Save(root string) error {
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := fileutil.WriteFileAtomic(manifestPath(root), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

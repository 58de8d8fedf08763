package syncer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/tradewind-labs/tradewind/internal/fileutil"
	"github.com/tradewind-labs/tradewind/internal/render"
)

// Syncer writes rendered stage files under an output root and keeps the
// manifest in step with what is on disk.
type Syncer struct {
	// Root is the output directory holding one subdirectory per stage.
	Root string

	Logger *slog.Logger
}

// New returns a Syncer rooted at root.
func New(root string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{Root: root, Logger: logger}
}

// Result summarizes one stage sync. Paths are output-root relative.
type Result struct {
	// Written files were created or had changed content.
	Written []string
	// Unchanged files already matched the rendered content.
	Unchanged []string
	// Preserved user-editable files existed and were left alone.
	Preserved []string
	// Orphaned managed files were produced by an earlier run of this
	// stage but not by this one. They stay on disk until pruned.
	Orphaned []string
}

// SyncStage reconciles one stage's rendered files with disk and updates m
// in place. The caller saves the manifest after each stage so a failure
// mid-run leaves the completed stages fully recorded.
func (s *Syncer) SyncStage(m *Manifest, stageID string, files []render.File) (*Result, error) {
	result := &Result{}
	rendered := make(map[string]bool, len(files))

	for _, f := range files {
		rel := path.Join(stageID, f.RelPath)
		rendered[rel] = true
		full := filepath.Join(s.Root, filepath.FromSlash(rel))

		if f.UserEditable {
			if _, err := os.Stat(full); err == nil {
				// The user owns the content now; the manifest tracks the
				// on-disk hash so a lost manifest still picks the file up.
				onDisk, err := fileutil.HashFile(full)
				if err != nil {
					return nil, fmt.Errorf("hash %s: %w", rel, err)
				}
				m.Files[rel] = FileEntry{SHA256: onDisk, Stage: stageID, Class: ClassUser}
				result.Preserved = append(result.Preserved, rel)
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("stat %s: %w", rel, err)
			}
			if err := writeRendered(full, f.Content); err != nil {
				return nil, err
			}
			m.Files[rel] = FileEntry{
				SHA256: fileutil.HashBytes(f.Content),
				Stage:  stageID,
				Class:  ClassUser,
			}
			result.Written = append(result.Written, rel)
			continue
		}

		hash := fileutil.HashBytes(f.Content)
		if entry, ok := m.Files[rel]; ok && entry.SHA256 == hash {
			if onDisk, err := fileutil.HashFile(full); err == nil && onDisk == hash {
				entry.Orphaned = false
				m.Files[rel] = entry
				result.Unchanged = append(result.Unchanged, rel)
				continue
			}
		}
		if err := writeRendered(full, f.Content); err != nil {
			return nil, err
		}
		m.Files[rel] = FileEntry{SHA256: hash, Stage: stageID, Class: ClassManaged}
		result.Written = append(result.Written, rel)
	}

	// Managed files from earlier runs of this stage that no template
	// produced anymore become orphans. Never delete them here; removal is
	// an explicit prune.
	for rel, entry := range m.Files {
		if entry.Stage != stageID || entry.Class != ClassManaged || rendered[rel] {
			continue
		}
		if !entry.Orphaned {
			entry.Orphaned = true
			m.Files[rel] = entry
			s.Logger.Warn("orphaned file left on disk", "path", rel, "stage", stageID)
		}
		result.Orphaned = append(result.Orphaned, rel)
	}

	sort.Strings(result.Written)
	sort.Strings(result.Unchanged)
	sort.Strings(result.Preserved)
	sort.Strings(result.Orphaned)
	return result, nil
}

// OrphanInactiveStages marks managed files belonging to stages outside the
// active set as orphans. A stage leaves the active set when a configuration
// change removes it from the plan, e.g. switching to a provider with no
// remote state stage. Returns the affected paths in sorted order.
func (s *Syncer) OrphanInactiveStages(m *Manifest, active map[string]bool) []string {
	var orphaned []string
	for rel, entry := range m.Files {
		if entry.Class != ClassManaged || active[entry.Stage] {
			continue
		}
		if !entry.Orphaned {
			entry.Orphaned = true
			m.Files[rel] = entry
			s.Logger.Warn("orphaned file left on disk", "path", rel, "stage", entry.Stage)
		}
		orphaned = append(orphaned, rel)
	}
	sort.Strings(orphaned)
	return orphaned
}

// Prune deletes every orphaned managed file from disk and drops it from the
// manifest. Returns the removed paths in sorted order.
func (s *Syncer) Prune(m *Manifest) ([]string, error) {
	var removed []string
	for rel, entry := range m.Files {
		if entry.Class != ClassManaged || !entry.Orphaned {
			continue
		}
		full := filepath.Join(s.Root, filepath.FromSlash(rel))
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove %s: %w", rel, err)
		}
		delete(m.Files, rel)
		removed = append(removed, rel)
		s.Logger.Info("pruned orphaned file", "path", rel)
	}
	sort.Strings(removed)
	return removed, nil
}

func writeRendered(full string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", full, err)
	}
	if err := fileutil.WriteFileAtomic(full, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}

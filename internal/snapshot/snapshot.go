// Package snapshot preserves rendered stage trees so a bad render or deploy
// can be rolled back.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradewind-labs/tradewind/internal/fileutil"
	"github.com/tradewind-labs/tradewind/internal/syncer"
)

const (
	// Prefix is the prefix for snapshot directory names.
	Prefix = "snapshot-"
	// dateFormat includes nanoseconds to prevent same-second collisions.
	dateFormat = "20060102-150405.000000000"
	// MaxSnapshots is how many snapshots are retained before the oldest
	// are removed.
	MaxSnapshots = 20
)

// Info holds metadata about one snapshot.
type Info struct {
	Name    string
	Path    string
	Created time.Time
}

func snapshotsDir(outputRoot string) string {
	return filepath.Join(outputRoot, syncer.StateDirName, "snapshots")
}

// Create copies every stage directory under outputRoot into a new snapshot.
// Returns the snapshot name, or an empty string when there is nothing to
// snapshot yet.
func Create(outputRoot string) (string, error) {
	stages, err := stageDirs(outputRoot)
	if err != nil {
		return "", err
	}
	if len(stages) == 0 {
		return "", nil
	}

	name := Prefix + time.Now().Format(dateFormat)
	dest := filepath.Join(snapshotsDir(outputRoot), name)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	for _, stageDir := range stages {
		src := filepath.Join(outputRoot, stageDir)
		if err := fileutil.CopyDir(src, filepath.Join(dest, stageDir)); err != nil {
			os.RemoveAll(dest)
			return "", fmt.Errorf("snapshot stage %s: %w", stageDir, err)
		}
	}

	// Copy the manifest alongside so a restore brings sync state back too.
	manifestSrc := filepath.Join(outputRoot, syncer.StateDirName, "manifest.yaml")
	if _, err := os.Stat(manifestSrc); err == nil {
		if err := fileutil.CopyFile(manifestSrc, filepath.Join(dest, "manifest.yaml")); err != nil {
			os.RemoveAll(dest)
			return "", fmt.Errorf("snapshot manifest: %w", err)
		}
	}

	if err := cleanup(outputRoot); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old snapshots: %v\n", err)
	}
	return name, nil
}

// List returns available snapshots, newest first.
func List(outputRoot string) ([]Info, error) {
	entries, err := os.ReadDir(snapshotsDir(outputRoot))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshots directory: %w", err)
	}

	var snapshots []Info
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}
		path := filepath.Join(snapshotsDir(outputRoot), entry.Name())

		created, err := time.Parse(dateFormat, strings.TrimPrefix(entry.Name(), Prefix))
		if err != nil {
			info, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}
			created = info.ModTime()
		}
		snapshots = append(snapshots, Info{Name: entry.Name(), Path: path, Created: created})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Created.After(snapshots[j].Created)
	})
	return snapshots, nil
}

// Restore replaces the stage directories under outputRoot with the contents
// of the named snapshot. The current tree is swapped out whole, so a failure
// partway never leaves a mixed state.
func Restore(outputRoot, name string) error {
	src := filepath.Join(snapshotsDir(outputRoot), name)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", name)
	}

	restoreID := uuid.New().String()[:8]
	staging := filepath.Join(outputRoot, syncer.StateDirName, "restore-"+restoreID)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := fileutil.CopyDir(filepath.Join(src, entry.Name()), filepath.Join(staging, entry.Name())); err != nil {
			return fmt.Errorf("stage snapshot copy: %w", err)
		}
	}

	// Swap each staged stage directory into place.
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		target := filepath.Join(outputRoot, entry.Name())
		old := target + ".old-" + restoreID
		if _, err := os.Stat(target); err == nil {
			if err := os.Rename(target, old); err != nil {
				return fmt.Errorf("move aside %s: %w", entry.Name(), err)
			}
		}
		if err := os.Rename(filepath.Join(staging, entry.Name()), target); err != nil {
			os.Rename(old, target)
			return fmt.Errorf("restore %s: %w", entry.Name(), err)
		}
		os.RemoveAll(old)
	}

	// Bring the manifest back in step with the restored tree.
	manifestSrc := filepath.Join(src, "manifest.yaml")
	if _, err := os.Stat(manifestSrc); err == nil {
		manifestDest := filepath.Join(outputRoot, syncer.StateDirName, "manifest.yaml")
		if err := fileutil.CopyFile(manifestSrc, manifestDest); err != nil {
			return fmt.Errorf("restore manifest: %w", err)
		}
	}
	return nil
}

// cleanup removes the oldest snapshots beyond the retention limit.
func cleanup(outputRoot string) error {
	snapshots, err := List(outputRoot)
	if err != nil {
		return err
	}
	for _, old := range snapshots[min(len(snapshots), MaxSnapshots):] {
		if err := os.RemoveAll(old.Path); err != nil {
			return fmt.Errorf("remove snapshot %s: %w", old.Name, err)
		}
	}
	return nil
}

// stageDirs lists the stage output directories directly under outputRoot,
// skipping the engine state directory.
func stageDirs(outputRoot string) ([]string, error) {
	entries, err := os.ReadDir(outputRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output root: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == syncer.StateDirName {
			continue
		}
		dirs = append(dirs, entry.Name())
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Package lock serializes the operations that mutate an output tree.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tradewind-labs/tradewind/internal/syncer"
)

// lockFileName is the single lock file under the state directory.
const lockFileName = "tradewind.lock"

// Lock is an advisory file lock covering one output root. Every mutating
// operation takes the same lock, so a render cannot race a prune or deploy.
type Lock struct {
	path      string
	operation string
	file      *os.File
}

// New creates a lock on the output root's state directory for the named
// operation. The operation appears in conflict messages, not the lock path.
func New(outputRoot, operation string) *Lock {
	return &Lock{
		path:      filepath.Join(outputRoot, syncer.StateDirName, lockFileName),
		operation: operation,
	}
}

// Acquire takes the lock without blocking. A lock held by another process is
// an error naming the operation that holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if err == syscall.EWOULDBLOCK {
			return fmt.Errorf("another %s operation is already running", l.holderOperation())
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// Record the holder for conflict messages and stuck-lock debugging.
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%s %d\n", l.operation, os.Getpid())

	l.file = f
	return nil
}

// holderOperation reads the operation recorded by the current lock holder.
func (l *Lock) holderOperation() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "tradewind"
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "tradewind"
	}
	return fields[0]
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}

// WithLock runs fn while holding the lock, releasing it on return.
func WithLock(outputRoot, operation string, fn func() error) error {
	lock := New(outputRoot, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}

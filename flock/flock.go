// Package flock serializes runs on the same episode output directory with an
// advisory file lock.
package flock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/yzsnstotz/tlvc"
)

// LockFileName is created inside the episode output directory.
const LockFileName = ".step2.lock"

// Locker holds the lock of one episode output directory.
type Locker struct {
	path string
	lock *flock.Flock
}

// NewLocker returns a Locker for the output directory dir.
func NewLocker(dir string) *Locker {
	path := filepath.Join(dir, LockFileName)
	return &Locker{path: path, lock: flock.New(path)}
}

// Path returns the lock file path.
func (l *Locker) Path() string {
	return l.path
}

// Lock creates the output directory if needed and takes the lock without
// waiting. Returns ECONFLICT if another run holds it.
func (l *Locker) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return tlvc.Errorf(tlvc.ECONFLICT, "another run holds %s", l.path)
	}
	return nil
}

// Unlock releases the lock.
func (l *Locker) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Package lock provides a scoped, exclusive, cross-process lock on a file.
//
// The lock is advisory: it serializes curator processes (and goroutines
// within one process) that agree to take it. Acquisition blocks without
// timeout. The lock file itself is never removed.
package lock

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// Locker acquires an exclusive lock. The returned unlock func releases it
// and must be called exactly once.
type Locker interface {
	Lock() (unlock func() error, err error)
}

// FileLock is a Locker backed by an OS file lock on Path
// (flock on unix, LockFileEx on windows).
type FileLock struct {
	Path string
}

// NewFileLock returns a lock on the given lock-file path.
func NewFileLock(path string) *FileLock {
	return &FileLock{Path: path}
}

// OS file locks belong to an open file description, so two goroutines in
// one process holding separate descriptors would not exclude each other on
// every platform. A process-wide mutex per lock path covers that case.
var (
	processMu    sync.Mutex
	processLocks = map[string]*sync.Mutex{}
)

func processMutex(path string) *sync.Mutex {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	processMu.Lock()
	defer processMu.Unlock()
	mu, ok := processLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		processLocks[key] = mu
	}
	return mu
}

// Lock blocks until the exclusive lock is held.
// Returns E_LOCK_FAILED if the lock file cannot be opened or locked.
func (l *FileLock) Lock() (func() error, error) {
	mu := processMutex(l.Path)
	mu.Lock()

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		mu.Unlock()
		return nil, errors.WrapWithDetails(errors.ELockFailed, "failed to open lock file", err,
			map[string]string{"lock_file": l.Path})
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		mu.Unlock()
		return nil, errors.WrapWithDetails(errors.ELockFailed, "failed to acquire lock", err,
			map[string]string{"lock_file": l.Path})
	}

	var once sync.Once
	var unlockErr error
	return func() error {
		once.Do(func() {
			if err := unlockFile(f); err != nil {
				unlockErr = errors.WrapWithDetails(errors.ELockFailed, "failed to release lock", err,
					map[string]string{"lock_file": l.Path})
			}
			if err := f.Close(); err != nil && unlockErr == nil {
				unlockErr = errors.WrapWithDetails(errors.ELockFailed, "failed to close lock file", err,
					map[string]string{"lock_file": l.Path})
			}
			mu.Unlock()
		})
		return unlockErr
	}, nil
}

// ProcessLock serializes goroutines of this process only. It backs stores
// on in-memory filesystems, where no OS file exists to lock.
type ProcessLock struct {
	Path string
}

// NewProcessLock returns an in-process lock keyed by path.
func NewProcessLock(path string) *ProcessLock {
	return &ProcessLock{Path: path}
}

// Lock blocks until the lock is held. It never fails.
func (l *ProcessLock) Lock() (func() error, error) {
	mu := processMutex(l.Path)
	mu.Lock()
	var once sync.Once
	return func() error {
		once.Do(mu.Unlock)
		return nil
	}, nil
}

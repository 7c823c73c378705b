package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockFileName sits next to the cache file
const LockFileName = ".meta.lock"

// Locker guards the check/regenerate/refresh sequence of one project root
type Locker interface {
	Acquire(scriptsDir string) (release func() error, err error)
}

// FileLocker locks <scriptsDir>/.meta.lock on the real filesystem
type FileLocker struct{}

func (FileLocker) Acquire(scriptsDir string) (func() error, error) {
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %w", ErrIO, scriptsDir, err)
	}
	lock := NewLockFile(filepath.Join(scriptsDir, LockFileName))
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	return lock.Release, nil
}

// LockFile is an exclusive, non-blocking OS lock held through an open file. The lock is
// tied to the open file, so it goes away with the process even after a crash.
type LockFile struct {
	path string
	file *os.File
}

func NewLockFile(path string) *LockFile {
	return &LockFile{path: path}
}

// Acquire fails with ErrLocked while another LockFile on the same path is held
func (l *LockFile) Acquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("%w: failed to open lock file: %w", ErrIO, err)
	}

	held, err := tryLockFile(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to lock %s: %w", ErrIO, l.path, err)
	}
	if !held {
		f.Close()
		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}

	l.file = f
	return nil
}

// Release unlocks and closes the lock file. The file itself stays on disk; removing it
// would let a waiting process lock an unlinked inode.
func (l *LockFile) Release() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	unlockErr := unlockFile(f)
	if err := f.Close(); err != nil {
		return err
	}
	return unlockErr
}

func (l *LockFile) held() bool {
	return l.file != nil
}

//go:build !windows

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

var lockFile *os.File

// EnsureSingleInstance takes an exclusive lock on the lock file.
// Returns ErrAlreadyRunning if another instance holds it.
func EnsureSingleInstance() error {
	lockPath := getLockFilePath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	// Non-blocking; the lock is held as long as the file stays open
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return alreadyRunning()
	}

	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	lockFile = f
	return nil
}

// ReleaseSingleInstance releases the lock file
func ReleaseSingleInstance() {
	if lockFile == nil {
		return
	}
	_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
	lockFile.Close()
	os.Remove(getLockFilePath())
	lockFile = nil
}

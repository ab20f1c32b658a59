package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAlreadyRunning is returned when another keytray holds the instance lock
var ErrAlreadyRunning = errors.New("another instance of keytray is already running")

func getLockFilePath() string {
	if dir := ConfigDir(); dir != "" {
		return filepath.Join(dir, "keytray.lock")
	}
	return filepath.Join(os.TempDir(), "keytray.lock")
}

// alreadyRunning wraps ErrAlreadyRunning with the PID the running instance
// wrote to the lock file, when there is one
func alreadyRunning() error {
	data, err := os.ReadFile(getLockFilePath())
	if err != nil {
		return ErrAlreadyRunning
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return ErrAlreadyRunning
	}
	return fmt.Errorf("%w (pid %s)", ErrAlreadyRunning, pid)
}

//go:build windows

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

var lockHandle windows.Handle

// EnsureSingleInstance takes a named mutex.
// Returns ErrAlreadyRunning if another instance holds it.
func EnsureSingleInstance() error {
	mutexName, err := windows.UTF16PtrFromString("Local\\keytray-single-instance")
	if err != nil {
		return fmt.Errorf("failed to create mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if handle != 0 {
				windows.CloseHandle(handle)
			}
			return alreadyRunning()
		}
		return fmt.Errorf("failed to create mutex: %w", err)
	}

	// WAIT_OBJECT_0 means we own the mutex, WAIT_TIMEOUT that another process does
	event, err := windows.WaitForSingleObject(handle, 0)
	if err != nil || (event != windows.WAIT_OBJECT_0 && event != windows.WAIT_ABANDONED) {
		windows.CloseHandle(handle)
		return alreadyRunning()
	}

	lockHandle = handle
	writePIDFile()
	return nil
}

// ReleaseSingleInstance releases the mutex
func ReleaseSingleInstance() {
	if lockHandle != 0 {
		windows.ReleaseMutex(lockHandle)
		windows.CloseHandle(lockHandle)
		lockHandle = 0
	}
	os.Remove(getLockFilePath())
}

func writePIDFile() {
	pidPath := getLockFilePath()
	if err := os.MkdirAll(filepath.Dir(pidPath), 0755); err != nil {
		return
	}
	_ = os.WriteFile(pidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0600)
}

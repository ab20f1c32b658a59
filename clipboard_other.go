//go:build !darwin && !windows && !linux

package main

import (
	"fmt"
	"runtime"
)

func copyToClipboardPlatform(text string) error {
	return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
}

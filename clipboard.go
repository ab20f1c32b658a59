package main

import (
	"fmt"
	"os/exec"
	"strings"
)

// copyToClipboard places text on the system clipboard
func copyToClipboard(text string) error {
	return copyToClipboardPlatform(text)
}

// pipeToCommand runs name with text on stdin
func pipeToCommand(text string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

//go:build linux

package main

import (
	"errors"
	"os/exec"
)

// clipboardTools are tried in order; wl-copy only works under Wayland
var clipboardTools = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
}

func copyToClipboardPlatform(text string) error {
	var errs []error
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			continue
		}
		if tool[0] == "wl-copy" {
			if v, ok := lookupEnv("WAYLAND_DISPLAY"); !ok || v == "" {
				continue
			}
		}
		err := pipeToCommand(text, tool[0], tool[1:]...)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errors.New("no clipboard tool found (install wl-clipboard, xclip or xsel)")
	}
	return errors.Join(errs...)
}

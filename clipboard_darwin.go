//go:build darwin

package main

func copyToClipboardPlatform(text string) error {
	return pipeToCommand(text, "pbcopy")
}

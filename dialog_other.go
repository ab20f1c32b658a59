//go:build !darwin && !linux && !windows

package main

func showPrompt(title, message, defaultValue string) (string, bool) {
	LogWarn("Dialogs are not supported on this platform")
	return "", false
}

func showConfirm(title, message string) bool {
	LogWarn("Dialogs are not supported on this platform")
	return false
}

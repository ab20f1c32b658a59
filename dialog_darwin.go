//go:build darwin

package main

import (
	"os/exec"
	"strings"
)

// The scripts read title, message and default from argv so no quoting is needed
const (
	promptScript = `on run argv
	set answer to display dialog (item 2 of argv) with title (item 1 of argv) default answer (item 3 of argv) buttons {"Cancel", "OK"} default button "OK"
	return text returned of answer
end run`

	confirmScript = `on run argv
	display dialog (item 2 of argv) with title (item 1 of argv) buttons {"No", "Yes"} default button "Yes" cancel button "No"
end run`
)

// showPrompt asks for one line of text. Cancel returns false.
func showPrompt(title, message, defaultValue string) (string, bool) {
	out, err := exec.Command("osascript", "-e", promptScript, title, message, defaultValue).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(out), "\r\n"), true
}

// showConfirm asks a yes/no question
func showConfirm(title, message string) bool {
	return exec.Command("osascript", "-e", confirmScript, title, message).Run() == nil
}

//go:build linux

package main

import (
	"os/exec"
	"strings"
)

// dialogTool builds the arguments for one desktop dialog program
type dialogTool struct {
	name    string
	prompt  func(title, message, defaultValue string) []string
	confirm func(title, message string) []string
}

// GTK first, then KDE
var dialogTools = []dialogTool{
	{
		name: "zenity",
		prompt: func(title, message, defaultValue string) []string {
			return []string{"--entry", "--title", title, "--text", message, "--entry-text", defaultValue}
		},
		confirm: func(title, message string) []string {
			return []string{"--question", "--title", title, "--text", message}
		},
	},
	{
		name: "kdialog",
		prompt: func(title, message, defaultValue string) []string {
			return []string{"--title", title, "--inputbox", message, defaultValue}
		},
		confirm: func(title, message string) []string {
			return []string{"--title", title, "--yesno", message}
		},
	},
}

func findDialogTool() (string, dialogTool, bool) {
	for _, tool := range dialogTools {
		if path, err := exec.LookPath(tool.name); err == nil {
			return path, tool, true
		}
	}
	LogWarn("No dialog tool found (install zenity or kdialog)")
	return "", dialogTool{}, false
}

// showPrompt asks for one line of text. Cancel returns false.
func showPrompt(title, message, defaultValue string) (string, bool) {
	path, tool, ok := findDialogTool()
	if !ok {
		return "", false
	}
	out, err := exec.Command(path, tool.prompt(title, message, defaultValue)...).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// showConfirm asks a yes/no question
func showConfirm(title, message string) bool {
	path, tool, ok := findDialogTool()
	if !ok {
		return false
	}
	return exec.Command(path, tool.confirm(title, message)...).Run() == nil
}

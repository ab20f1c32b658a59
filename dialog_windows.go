//go:build windows

package main

import (
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows"
)

const (
	mbYesNo        = 0x00000004
	mbIconQuestion = 0x00000020
	mbTopMost      = 0x00040000
	idYes          = 6
)

// The input box reads its strings from the environment so no quoting is needed
const inputBoxScript = `Add-Type -AssemblyName Microsoft.VisualBasic; ` +
	`[Microsoft.VisualBasic.Interaction]::InputBox($env:KEYTRAY_MESSAGE, $env:KEYTRAY_TITLE, $env:KEYTRAY_DEFAULT)`

// showPrompt asks for one line of text. An empty answer counts as cancel.
func showPrompt(title, message, defaultValue string) (string, bool) {
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", inputBoxScript)
	cmd.Env = append(os.Environ(),
		"KEYTRAY_TITLE="+title,
		"KEYTRAY_MESSAGE="+message,
		"KEYTRAY_DEFAULT="+defaultValue,
	)
	out, err := cmd.Output()
	if err != nil {
		LogDebug("Input box failed: %v", err)
		return "", false
	}
	text := strings.TrimRight(string(out), "\r\n")
	return text, text != ""
}

// showConfirm asks a yes/no question with a message box
func showConfirm(title, message string) bool {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return false
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return false
	}
	ret, err := windows.MessageBox(0, text, caption, mbYesNo|mbIconQuestion|mbTopMost)
	if err != nil {
		LogDebug("MessageBox failed: %v", err)
	}
	return ret == idYes
}

package main

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// openTerminal launches the shortcut's command in the configured terminal.
// The terminal field is a command template with a {cmd} placeholder.
// Examples:
//   - macOS Terminal.app: "open -a /Applications/Utilities/Terminal.app {cmd}"
//   - Linux gnome-terminal: "/usr/bin/gnome-terminal -- {cmd}"
//   - Linux alacritty: "/usr/bin/alacritty -e {cmd}"
//   - Windows cmd: "C:\\Windows\\System32\\cmd.exe /k {cmd}"
func openTerminal(entry ShortcutEntry) error {
	args, err := terminalArgs(entry.Terminal, entry.Command)
	if err != nil {
		return err
	}
	LogDebug("Opening terminal: %s", strings.Join(args, " "))
	return exec.Command(args[0], args[1:]...).Start()
}

// terminalArgs expands the template and splits it into argv. A template
// without a placeholder gets the command appended.
func terminalArgs(template, command string) ([]string, error) {
	if template == "" {
		return nil, errors.New("no terminal configured")
	}
	if command == "" {
		return nil, errors.New("no command configured")
	}

	cmdLine := template + " " + command
	if strings.Contains(template, "{cmd}") {
		cmdLine = strings.ReplaceAll(template, "{cmd}", command)
	}

	args := parseCommandLine(cmdLine)
	if len(args) == 0 {
		return nil, fmt.Errorf("invalid terminal command %q", template)
	}
	return args, nil
}

// parseCommandLine splits a command line into arguments. Single or double
// quotes group words; the other quote character is literal inside them.
func parseCommandLine(cmdLine string) []string {
	var (
		args    []string
		current strings.Builder
		quote   rune
		started bool
	)

	flush := func() {
		if started {
			args = append(args, current.String())
			current.Reset()
			started = false
		}
	}

	for _, r := range cmdLine {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			started = true
		case quote == 0 && (r == ' ' || r == '\t'):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return args
}

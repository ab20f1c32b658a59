//go:build darwin

package main

import (
	"golang.design/x/hotkey"

	"keytray/shortcut"
)

// hotkeyModifier maps a modifier label to the macOS modifier
// macOS: meta is Command, alt is Option
func hotkeyModifier(label string) hotkey.Modifier {
	switch label {
	case shortcut.LabelShift:
		return hotkey.ModShift
	case shortcut.LabelAlt:
		return hotkey.ModOption
	case shortcut.LabelMeta:
		return hotkey.ModCmd
	default:
		return hotkey.ModCtrl
	}
}

func modifierDisplayName(label string) string {
	switch label {
	case shortcut.LabelShift:
		return "Shift"
	case shortcut.LabelAlt:
		return "Option"
	case shortcut.LabelMeta:
		return "Cmd"
	default:
		return "Ctrl"
	}
}

//go:build windows

package main

import (
	"golang.design/x/hotkey"

	"keytray/shortcut"
)

// hotkeyModifier maps a modifier label to the Windows modifier
// Windows: meta is the Windows key
func hotkeyModifier(label string) hotkey.Modifier {
	switch label {
	case shortcut.LabelShift:
		return hotkey.ModShift
	case shortcut.LabelAlt:
		return hotkey.ModAlt
	case shortcut.LabelMeta:
		return hotkey.ModWin
	default:
		return hotkey.ModCtrl
	}
}

func modifierDisplayName(label string) string {
	switch label {
	case shortcut.LabelShift:
		return "Shift"
	case shortcut.LabelAlt:
		return "Alt"
	case shortcut.LabelMeta:
		return "Win"
	default:
		return "Ctrl"
	}
}

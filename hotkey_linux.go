//go:build linux

package main

import (
	"golang.design/x/hotkey"

	"keytray/shortcut"
)

// hotkeyModifier maps a modifier label to the X11 modifier
// Linux: Mod1 is typically Alt, Mod4 is Super
func hotkeyModifier(label string) hotkey.Modifier {
	switch label {
	case shortcut.LabelShift:
		return hotkey.ModShift
	case shortcut.LabelAlt:
		return hotkey.Mod1
	case shortcut.LabelMeta:
		return hotkey.Mod4
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
		return "Super"
	default:
		return "Ctrl"
	}
}

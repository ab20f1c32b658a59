package main

import (
	"errors"
	"fmt"
	"strings"

	"keytray/shortcut"
)

// globalCombo is a shortcut the OS can deliver as a global hotkey: one or
// more modifiers plus exactly one other key
type globalCombo struct {
	Mods []string // modifier labels in ctrl, shift, alt, meta order
	Key  string   // canonical key name
}

var modifierOrder = []string{
	shortcut.LabelCtrl,
	shortcut.LabelShift,
	shortcut.LabelAlt,
	shortcut.LabelMeta,
}

// modifierKeyNames maps a modifier label to the Key of the modifier's own event
var modifierKeyNames = map[string]string{
	shortcut.LabelCtrl:  "Control",
	shortcut.LabelShift: "Shift",
	shortcut.LabelAlt:   "Alt",
	shortcut.LabelMeta:  "Meta",
}

// String returns the combination in "ctrl+alt+k" form
func (g globalCombo) String() string {
	return strings.Join(append(append([]string(nil), g.Mods...), g.Key), "+")
}

// parseGlobalCombo checks that keys can be registered as an OS hotkey
func parseGlobalCombo(keys []string) (globalCombo, error) {
	combo := shortcut.NormalizeCombo(keys)
	if len(combo) == 0 {
		return globalCombo{}, errors.New("empty key combination")
	}
	if !shortcut.ValidCombo(combo) {
		return globalCombo{}, errors.New("key combination contains an empty key")
	}

	held := make(map[string]bool, len(combo))
	var g globalCombo
	for _, k := range combo {
		if _, isMod := modifierKeyNames[k]; isMod {
			held[k] = true
			continue
		}
		if g.Key != "" && g.Key != k {
			return globalCombo{}, fmt.Errorf("global hotkeys take one non-modifier key, got %q and %q", g.Key, k)
		}
		g.Key = k
	}
	if g.Key == "" {
		return globalCombo{}, errors.New("global hotkeys need a non-modifier key")
	}
	for _, mod := range modifierOrder {
		if held[mod] {
			g.Mods = append(g.Mods, mod)
		}
	}
	if len(g.Mods) == 0 {
		return globalCombo{}, fmt.Errorf("global hotkey %q needs at least one modifier", g.Key)
	}
	return g, nil
}

// comboEvents returns the key events a browser would see for the combination:
// modifiers pressed first, the key, then everything released in reverse.
// Each call returns fresh events.
func comboEvents(g globalCombo) (down []*shortcut.Event, up []*shortcut.Event) {
	flags := &shortcut.Event{}
	set := func(ev *shortcut.Event) {
		ev.CtrlKey, ev.ShiftKey, ev.AltKey, ev.MetaKey = flags.CtrlKey, flags.ShiftKey, flags.AltKey, flags.MetaKey
	}
	toggle := func(mod string, on bool) {
		switch mod {
		case shortcut.LabelCtrl:
			flags.CtrlKey = on
		case shortcut.LabelShift:
			flags.ShiftKey = on
		case shortcut.LabelAlt:
			flags.AltKey = on
		case shortcut.LabelMeta:
			flags.MetaKey = on
		}
	}

	for _, mod := range g.Mods {
		toggle(mod, true)
		ev := shortcut.NewKeyDown(modifierKeyNames[mod])
		set(ev)
		down = append(down, ev)
	}
	keyDown := shortcut.NewKeyDown(g.Key)
	set(keyDown)
	down = append(down, keyDown)

	keyUp := shortcut.NewKeyUp(g.Key)
	set(keyUp)
	up = append(up, keyUp)
	for i := len(g.Mods) - 1; i >= 0; i-- {
		toggle(g.Mods[i], false)
		ev := shortcut.NewKeyUp(modifierKeyNames[g.Mods[i]])
		set(ev)
		up = append(up, ev)
	}
	return down, up
}

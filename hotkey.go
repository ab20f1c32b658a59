package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.design/x/hotkey"

	"keytray/shortcut"
)

// hotkeyKeys maps canonical key names to OS hotkey keys
var hotkeyKeys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,

	" ": hotkey.KeySpace, "space": hotkey.KeySpace,
	"enter": hotkey.KeyReturn, "return": hotkey.KeyReturn,
	"escape": hotkey.KeyEscape, "esc": hotkey.KeyEscape,
	"tab": hotkey.KeyTab, "delete": hotkey.KeyDelete,
	"arrowleft": hotkey.KeyLeft, "left": hotkey.KeyLeft,
	"arrowright": hotkey.KeyRight, "right": hotkey.KeyRight,
	"arrowup": hotkey.KeyUp, "up": hotkey.KeyUp,
	"arrowdown": hotkey.KeyDown, "down": hotkey.KeyDown,
}

// resolveHotkey maps a combination to OS modifiers and key
func resolveHotkey(g globalCombo) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := hotkeyKeys[g.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %q cannot be used in a global hotkey", g.Key)
	}
	mods := make([]hotkey.Modifier, 0, len(g.Mods))
	for _, label := range g.Mods {
		mods = append(mods, hotkeyModifier(label))
	}
	return mods, key, nil
}

// describeHotkey renders a combination with the platform's modifier names
func describeHotkey(g globalCombo) string {
	parts := make([]string, 0, len(g.Mods)+1)
	for _, label := range g.Mods {
		parts = append(parts, modifierDisplayName(label))
	}
	key := strings.ToUpper(g.Key)
	if g.Key == " " {
		key = "Space"
	}
	return strings.Join(append(parts, key), "+")
}

// HotkeySource turns OS global hotkeys into key events on the desktop
// window's event stream
type HotkeySource struct {
	events chan<- *shortcut.Event

	mu     sync.Mutex
	active []*activeHotkey
}

type activeHotkey struct {
	combo globalCombo
	hk    *hotkey.Hotkey
	done  chan struct{}
}

// NewHotkeySource creates a source feeding events
func NewHotkeySource(events chan<- *shortcut.Event) *HotkeySource {
	return &HotkeySource{events: events}
}

// Apply unregisters the previous hotkeys and registers one hotkey per
// distinct combination of the global entries. It returns the names of the
// entries whose hotkey is live.
func (s *HotkeySource) Apply(entries []ShortcutEntry) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	var (
		live []string
		errs []error
	)
	registered := make(map[string]error)
	for _, entry := range entries {
		if !entry.Global {
			continue
		}
		g, err := parseGlobalCombo(entry.Keys)
		if err == nil {
			var seen bool
			if err, seen = registered[g.String()]; !seen {
				err = s.registerLocked(g)
				registered[g.String()] = err
			}
		}
		LogHotkeyRegistered(entry.Name, entry.Keys.String(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
			continue
		}
		live = append(live, entry.Name)
	}
	return live, errors.Join(errs...)
}

func (s *HotkeySource) registerLocked(g globalCombo) error {
	mods, key, err := resolveHotkey(g)
	if err != nil {
		return err
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", describeHotkey(g), err)
	}

	a := &activeHotkey{combo: g, hk: hk, done: make(chan struct{})}
	s.active = append(s.active, a)
	go s.forward(a)
	return nil
}

func (s *HotkeySource) forward(a *activeHotkey) {
	for {
		select {
		case <-a.done:
			return
		case <-a.hk.Keydown():
			down, _ := comboEvents(a.combo)
			s.emit(down, a.done)
		case <-a.hk.Keyup():
			_, up := comboEvents(a.combo)
			s.emit(up, a.done)
		}
	}
}

func (s *HotkeySource) emit(events []*shortcut.Event, done <-chan struct{}) {
	for _, ev := range events {
		select {
		case s.events <- ev:
		case <-done:
			return
		}
	}
}

// Stop unregisters all hotkeys
func (s *HotkeySource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *HotkeySource) stopLocked() {
	for _, a := range s.active {
		close(a.done)
		if err := a.hk.Unregister(); err != nil {
			LogDebug("Unregister hotkey %s: %v", a.combo, err)
		}
	}
	s.active = nil
}

// Count returns the number of registered hotkeys
func (s *HotkeySource) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

package shortcut

import (
	"sort"
	"strings"
)

// Modifier labels produced by the strict matcher from an event's flags.
const (
	LabelCtrl  = "ctrl"
	LabelShift = "shift"
	LabelAlt   = "alt"
	LabelMeta  = "meta"
)

// Canonical key names of the modifier keys themselves, as carried in
// Event.Key. Releasing one of these resets the extended matcher.
const (
	KeyControl = "control"
	KeyShift   = "shift"
	KeyAlt     = "alt"
	KeyMeta    = "meta"
)

var modifierKeys = map[string]struct{}{
	KeyMeta:    {},
	KeyControl: {},
	KeyAlt:     {},
	KeyShift:   {},
}

// Canonical returns the canonical (lower-case) form of a key identifier.
func Canonical(key string) string {
	return strings.ToLower(key)
}

// IsModifierKey reports whether key names one of the four modifier keys.
func IsModifierKey(key string) bool {
	_, ok := modifierKeys[Canonical(key)]
	return ok
}

// NormalizeCombo lower-cases every identifier. Nothing is dropped: " " is
// the Space key and an empty identifier keeps the combination invalid.
func NormalizeCombo(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Canonical(k)
	}
	return out
}

// ValidCombo reports whether combo can ever match: it names at least one
// key and none of its identifiers is empty.
func ValidCombo(combo []string) bool {
	if len(combo) == 0 {
		return false
	}
	for _, k := range combo {
		if k == "" {
			return false
		}
	}
	return true
}

// KeyState is the set of keys the extended matcher believes are held down.
// It belongs to a single Registration and is only touched from the goroutine
// dispatching that registration's events.
type KeyState struct {
	keys map[string]struct{}
}

func newKeyState() *KeyState {
	return &KeyState{keys: make(map[string]struct{})}
}

// Add marks key as held.
func (s *KeyState) Add(key string) {
	s.keys[key] = struct{}{}
}

// Remove marks key as released.
func (s *KeyState) Remove(key string) {
	delete(s.keys, key)
}

// Clear forgets every held key.
func (s *KeyState) Clear() {
	clear(s.keys)
}

// Has reports whether key is held.
func (s *KeyState) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// HasAll reports whether every key in combo is held.
func (s *KeyState) HasAll(combo []string) bool {
	for _, k := range combo {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Len returns the number of held keys.
func (s *KeyState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the held keys in sorted order.
func (s *KeyState) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package shortcut

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configures a matcher registration.
type Options struct {
	// PreventDefault suppresses the default action of the event that
	// produces a match.
	PreventDefault bool `json:"prevent_default,omitempty" toml:"prevent_default"`
}

// Registration is a live set of listeners installed by UseShortcut or
// UseShortcutExtended. Remove tears all of them down.
type Registration struct {
	combo   []string
	state   *KeyState
	removes []func()
	once    sync.Once
}

// Remove deregisters every listener of the registration. Safe to call more
// than once and on a nil Registration.
func (r *Registration) Remove() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		for _, remove := range r.removes {
			remove()
		}
		r.removes = nil
	})
}

// Active reports whether the registration installed any listeners.
func (r *Registration) Active() bool {
	return r != nil && len(r.removes) > 0
}

// Combo returns the normalized target combination.
func (r *Registration) Combo() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.combo...)
}

// State returns the extended matcher's active key set, or nil for strict
// registrations.
func (r *Registration) State() *KeyState {
	if r == nil {
		return nil
	}
	return r.state
}

// UseShortcut installs a strict matcher on target: on every key-down, the
// event's modifier flags and key form the active set, and callback runs when
// every key of the combination is in it. Extra held modifiers do not prevent
// a match.
//
// A nil target or an invalid combination (see ValidCombo) installs nothing.
func UseShortcut(target EventTarget, keys []string, callback func(), opts Options) *Registration {
	combo := NormalizeCombo(keys)
	reg := &Registration{combo: combo}
	if isNilTarget(target) || !ValidCombo(combo) || callback == nil {
		return reg
	}

	handleKeyDown := func(ev *Event) {
		pressed := make(map[string]struct{}, 5)
		if ev.CtrlKey {
			pressed[LabelCtrl] = struct{}{}
		}
		if ev.ShiftKey {
			pressed[LabelShift] = struct{}{}
		}
		if ev.AltKey {
			pressed[LabelAlt] = struct{}{}
		}
		if ev.MetaKey {
			pressed[LabelMeta] = struct{}{}
		}
		pressed[Canonical(ev.Key)] = struct{}{}

		for _, k := range combo {
			if _, ok := pressed[k]; !ok {
				return
			}
		}

		log.WithFields(logrus.Fields{
			"combo": strings.Join(combo, "+"),
			"key":   ev.Key,
		}).Debug("shortcut matched")
		if opts.PreventDefault {
			ev.PreventDefault()
		}
		callback()
	}

	reg.removes = append(reg.removes, target.AddEventListener(KeyDown, handleKeyDown))
	log.WithField("combo", strings.Join(combo, "+")).Debug("shortcut registered")
	return reg
}

func isNilTarget(target EventTarget) bool {
	if target == nil {
		return true
	}
	w, ok := target.(*Window)
	return ok && w == nil
}

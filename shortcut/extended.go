package shortcut

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// UseShortcutExtended installs a matcher for any set of keys held down
// together, in any order. Key-down adds to the registration's KeyState and
// fires callback whenever the state holds the whole combination, so a held
// combination fires again on every key-repeat. Key-up removes the key; when
// the released key is a modifier the whole state is cleared. Blur clears the
// state as well, since the matching key-up may never arrive.
//
// A nil target or an invalid combination (see ValidCombo) installs nothing.
func UseShortcutExtended(target EventTarget, keys []string, callback func(), opts Options) *Registration {
	combo := NormalizeCombo(keys)
	reg := &Registration{combo: combo, state: newKeyState()}
	if isNilTarget(target) || !ValidCombo(combo) || callback == nil {
		return reg
	}

	state := reg.state
	comboName := strings.Join(combo, "+")

	handleKeyDown := func(ev *Event) {
		state.Add(Canonical(ev.Key))
		if !state.HasAll(combo) {
			return
		}
		log.WithFields(logrus.Fields{
			"combo": comboName,
			"held":  strings.Join(state.Keys(), "+"),
		}).Debug("extended shortcut matched")
		if opts.PreventDefault {
			ev.PreventDefault()
		}
		callback()
	}

	handleKeyUp := func(ev *Event) {
		key := Canonical(ev.Key)
		state.Remove(key)
		if IsModifierKey(key) {
			state.Clear()
		}
	}

	handleBlur := func(*Event) {
		state.Clear()
	}

	reg.removes = append(reg.removes,
		target.AddEventListener(KeyDown, handleKeyDown),
		target.AddEventListener(KeyUp, handleKeyUp),
		target.AddEventListener(Blur, handleBlur),
	)
	log.WithField("combo", comboName).Debug("extended shortcut registered")
	return reg
}

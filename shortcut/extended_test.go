package shortcut

import (
	"slices"
	"testing"
)

func TestUseShortcutExtendedAccumulatesKeys(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("a"))
	if calls != 0 {
		t.Fatalf("calls after a = %d, want 0", calls)
	}

	w.Dispatch(NewKeyDown("s"))
	if calls != 1 {
		t.Fatalf("calls after a+s = %d, want 1", calls)
	}
}

func TestUseShortcutExtendedOrderIrrelevant(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"A", "1", "m"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("M"))
	w.Dispatch(NewKeyDown("1"))
	w.Dispatch(NewKeyDown("a"))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestUseShortcutExtendedKeyUpRemoves(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("a"))
	w.Dispatch(NewKeyUp("a"))
	w.Dispatch(NewKeyDown("s"))
	if calls != 0 {
		t.Errorf("calls = %d after releasing a, want 0", calls)
	}
	if got := reg.State().Keys(); !slices.Equal(got, []string{"s"}) {
		t.Errorf("held keys = %v, want [s]", got)
	}
}

func TestUseShortcutExtendedModifierReleaseClears(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("a"))
	w.Dispatch(NewKeyDown("s"))
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// Key-ups for a and s are never delivered.
	w.Dispatch(NewKeyUp("Shift"))
	if n := reg.State().Len(); n != 0 {
		t.Fatalf("held keys after shift release = %v, want none", reg.State().Keys())
	}

	w.Dispatch(NewKeyDown("a"))
	if calls != 1 {
		t.Fatalf("calls after fresh a = %d, want 1", calls)
	}
	w.Dispatch(NewKeyDown("s"))
	if calls != 2 {
		t.Errorf("calls after fresh a+s = %d, want 2", calls)
	}
}

func TestUseShortcutExtendedEveryModifierClears(t *testing.T) {
	for _, mod := range []string{"Meta", "Control", "Alt", "Shift"} {
		t.Run(mod, func(t *testing.T) {
			w := NewWindow(Navigator{})
			reg := UseShortcutExtended(w, []string{"x", "z"}, func() {}, Options{})
			defer reg.Remove()

			w.Dispatch(NewKeyDown("x"))
			w.Dispatch(NewKeyDown("q"))
			w.Dispatch(NewKeyUp(mod))
			if n := reg.State().Len(); n != 0 {
				t.Errorf("held keys after %s release = %v, want none", mod, reg.State().Keys())
			}
		})
	}
}

func TestUseShortcutExtendedNonModifierReleaseKeepsOthers(t *testing.T) {
	w := NewWindow(Navigator{})
	reg := UseShortcutExtended(w, []string{"x", "z"}, func() {}, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("x"))
	w.Dispatch(NewKeyDown("q"))
	w.Dispatch(NewKeyUp("q"))
	if got := reg.State().Keys(); !slices.Equal(got, []string{"x"}) {
		t.Errorf("held keys = %v, want [x]", got)
	}
}

func TestUseShortcutExtendedBlurClears(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("a"))
	w.Dispatch(NewBlur())
	if n := reg.State().Len(); n != 0 {
		t.Fatalf("held keys after blur = %v, want none", reg.State().Keys())
	}

	w.Dispatch(NewKeyDown("s"))
	if calls != 0 {
		t.Errorf("calls = %d after blur then s, want 0", calls)
	}
	w.Dispatch(NewKeyDown("a"))
	if calls != 1 {
		t.Errorf("calls = %d after s then a, want 1", calls)
	}
}

func TestUseShortcutExtendedFiresOnKeyRepeat(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() { calls++ }, Options{})
	defer reg.Remove()

	w.Dispatch(NewKeyDown("a"))
	for i := 0; i < 3; i++ {
		w.Dispatch(NewKeyDown("s"))
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestUseShortcutExtendedPreventDefault(t *testing.T) {
	w := NewWindow(Navigator{})
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() {}, Options{PreventDefault: true})
	defer reg.Remove()

	first := NewKeyDown("a")
	w.Dispatch(first)
	if first.DefaultPrevented() {
		t.Error("non-matching key-down was prevented")
	}

	second := NewKeyDown("s")
	w.Dispatch(second)
	if !second.DefaultPrevented() {
		t.Error("matching key-down was not prevented")
	}

	up := NewKeyUp("s")
	w.Dispatch(up)
	if up.DefaultPrevented() {
		t.Error("key-up was prevented")
	}
}

func TestUseShortcutExtendedListeners(t *testing.T) {
	w := NewWindow(Navigator{})
	reg := UseShortcutExtended(w, []string{"a", "s"}, func() {}, Options{})

	for _, typ := range []EventType{KeyDown, KeyUp, Blur} {
		if got := w.ListenerCount(typ); got != 1 {
			t.Errorf("ListenerCount(%s) = %d, want 1", typ, got)
		}
	}

	reg.Remove()
	for _, typ := range []EventType{KeyDown, KeyUp, Blur} {
		if got := w.ListenerCount(typ); got != 0 {
			t.Errorf("ListenerCount(%s) after Remove = %d, want 0", typ, got)
		}
	}
}

func TestUseShortcutExtendedSeparateStates(t *testing.T) {
	w := NewWindow(Navigator{})
	first := UseShortcutExtended(w, []string{"a", "s"}, func() {}, Options{})
	second := UseShortcutExtended(w, []string{"a", "d"}, func() {}, Options{})
	defer first.Remove()
	defer second.Remove()

	if first.State() == second.State() {
		t.Fatal("registrations share a key state")
	}

	w.Dispatch(NewKeyDown("a"))
	second.Remove()
	w.Dispatch(NewKeyDown("s"))
	if got := first.State().Keys(); !slices.Equal(got, []string{"a", "s"}) {
		t.Errorf("first held keys = %v, want [a s]", got)
	}
	if got := second.State().Keys(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("second held keys = %v, want [a]", got)
	}
}

func TestUseShortcutExtendedEmptyCombo(t *testing.T) {
	for _, keys := range [][]string{nil, {""}, {"a", ""}} {
		w := NewWindow(Navigator{})
		calls := 0
		reg := UseShortcutExtended(w, keys, func() { calls++ }, Options{})

		if reg.Active() {
			t.Errorf("keys %q: registration is active", keys)
		}
		w.Dispatch(NewKeyDown("a"))
		w.Dispatch(NewKeyDown(""))
		if calls != 0 {
			t.Errorf("keys %q: calls = %d, want 0", keys, calls)
		}
	}
}

func TestUseShortcutExtendedSpaceKey(t *testing.T) {
	w := NewWindow(Navigator{})
	calls := 0
	UseShortcutExtended(w, []string{"a", " "}, func() { calls++ }, Options{})

	w.Dispatch(NewKeyDown("a"))
	if calls != 0 {
		t.Fatalf("calls = %d after a alone, want 0", calls)
	}
	w.Dispatch(NewKeyDown(" "))
	if calls != 1 {
		t.Errorf("calls = %d after a+space, want 1", calls)
	}
}

package shortcut

import "testing"

func TestHookReconcileReplacesOnCallbackChange(t *testing.T) {
	for _, variant := range []Variant{Strict, Extended} {
		t.Run(variant.String(), func(t *testing.T) {
			w := NewWindow(Navigator{})
			h := NewHook(w, variant)
			defer h.Close()

			var first, second int
			cb1 := func() { first++ }
			cb2 := func() { second++ }

			if !h.Reconcile([]string{"Ctrl", "S"}, cb1, Options{}) {
				t.Fatal("first Reconcile did not register")
			}
			if !h.Reconcile([]string{"Ctrl", "S"}, cb2, Options{}) {
				t.Fatal("Reconcile with a new callback did not re-register")
			}

			if got := w.ListenerCount(KeyDown); got != 1 {
				t.Fatalf("ListenerCount(KeyDown) = %d, want 1", got)
			}
			if variant == Extended {
				if got := w.ListenerCount(KeyUp) + w.ListenerCount(Blur); got != 2 {
					t.Fatalf("key-up + blur listeners = %d, want 2", got)
				}
			}

			w.Dispatch(&Event{Type: KeyDown, Key: "Control", CtrlKey: true})
			w.Dispatch(&Event{Type: KeyDown, Key: "s", CtrlKey: true})
			if first != 0 {
				t.Errorf("stale callback fired %d times", first)
			}
			if second != 1 {
				t.Errorf("current callback fired %d times, want 1", second)
			}
		})
	}
}

func TestHookReconcileUnchangedInputsKeepRegistration(t *testing.T) {
	w := NewWindow(Navigator{})
	h := NewHook(w, Extended)
	defer h.Close()

	cb := func() {}
	h.Reconcile([]string{"a", "s"}, cb, Options{})
	reg := h.Registration()

	w.Dispatch(NewKeyDown("a"))

	// Same content in a fresh slice is not a change.
	if h.Reconcile([]string{"a", "s"}, cb, Options{}) {
		t.Fatal("Reconcile with unchanged inputs re-registered")
	}
	if h.Registration() != reg {
		t.Fatal("registration replaced")
	}
	if !reg.State().Has("a") {
		t.Error("held keys lost on no-op Reconcile")
	}
}

func TestHookReconcileKeysAndOptions(t *testing.T) {
	w := NewWindow(Navigator{})
	h := NewHook(w, Strict)
	defer h.Close()

	cb := func() {}
	h.Reconcile([]string{"Ctrl", "S"}, cb, Options{})

	if !h.Reconcile([]string{"Ctrl", "D"}, cb, Options{}) {
		t.Error("key change did not re-register")
	}
	if !h.Reconcile([]string{"Ctrl", "D"}, cb, Options{PreventDefault: true}) {
		t.Error("option change did not re-register")
	}
	if got := h.Registration().Combo(); len(got) != 2 || got[1] != "d" {
		t.Errorf("Combo() = %v, want [ctrl d]", got)
	}
	if got := w.ListenerCount(KeyDown); got != 1 {
		t.Errorf("ListenerCount(KeyDown) = %d, want 1", got)
	}

	ev := &Event{Type: KeyDown, Key: "d", CtrlKey: true}
	w.Dispatch(ev)
	if !ev.DefaultPrevented() {
		t.Error("latest options not applied")
	}
}

func TestHookReconcileCallerSliceMutation(t *testing.T) {
	w := NewWindow(Navigator{})
	h := NewHook(w, Strict)
	defer h.Close()

	cb := func() {}
	keys := []string{"Ctrl", "S"}
	h.Reconcile(keys, cb, Options{})

	keys[1] = "D"
	if !h.Reconcile(keys, cb, Options{}) {
		t.Error("mutated key slice was not seen as a change")
	}
}

func TestHookClose(t *testing.T) {
	w := NewWindow(Navigator{})
	h := NewHook(w, Extended)
	calls := 0
	h.Reconcile([]string{"a", "s"}, func() { calls++ }, Options{})

	h.Close()
	for _, typ := range []EventType{KeyDown, KeyUp, Blur} {
		if got := w.ListenerCount(typ); got != 0 {
			t.Errorf("ListenerCount(%s) after Close = %d, want 0", typ, got)
		}
	}

	if h.Reconcile([]string{"a", "s"}, func() { calls++ }, Options{}) {
		t.Error("Reconcile after Close registered")
	}
	w.Dispatch(NewKeyDown("a"))
	w.Dispatch(NewKeyDown("s"))
	if calls != 0 {
		t.Errorf("calls = %d after Close, want 0", calls)
	}
}

func TestHookHeadless(t *testing.T) {
	h := NewHook(nil, Strict)
	defer h.Close()

	if !h.Reconcile([]string{"Ctrl", "S"}, func() {}, Options{}) {
		t.Fatal("first Reconcile returned false")
	}
	if h.Registration().Active() {
		t.Error("headless registration is active")
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in     string
		want   Variant
		wantOK bool
	}{
		{"", Strict, true},
		{"strict", Strict, true},
		{" Extended ", Extended, true},
		{"chord", Strict, false},
	}
	for _, tt := range tests {
		got, ok := ParseVariant(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func noop() {}

func TestFuncID(t *testing.T) {
	calls := 0
	newCallback := func() func() {
		return func() { calls++ }
	}

	a, b := newCallback(), newCallback()
	if funcID(a) == funcID(b) {
		t.Error("capturing closures from one literal share an identity")
	}
	if funcID(a) != funcID(a) {
		t.Error("closure identity is not stable")
	}
	if funcID(noop) != funcID(noop) {
		t.Error("top-level function identity is not stable")
	}
	if funcID(nil) != 0 {
		t.Error("funcID(nil) != 0")
	}
}

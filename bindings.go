package main

import (
	"sync"

	"keytray/shortcut"
)

// Binder keeps the configured shortcuts bound to one event target.
// Each entry owns a shortcut.Hook and a callback that stays the same for the
// lifetime of the binding, so re-applying an unchanged entry leaves its
// listeners alone.
type Binder struct {
	target shortcut.EventTarget
	fire   func(ShortcutEntry)

	mu     sync.Mutex
	bound  map[string]*binding
	order  []string
	closed bool
}

type binding struct {
	entry    ShortcutEntry
	hook     *shortcut.Hook
	callback func()
}

// NewBinder creates a binder for target. fire is called on the dispatching
// goroutine with the current entry whenever one of its shortcuts matches.
func NewBinder(target shortcut.EventTarget, fire func(ShortcutEntry)) *Binder {
	return &Binder{
		target: target,
		fire:   fire,
		bound:  make(map[string]*binding),
	}
}

// Apply reconciles the bindings with entries and returns the bound names in
// configuration order. Entries without a name are skipped.
func (b *Binder) Apply(entries []ShortcutEntry) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	wanted := make(map[string]ShortcutEntry, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		if _, dup := wanted[entry.Name]; dup {
			continue
		}
		wanted[entry.Name] = entry
		order = append(order, entry.Name)
	}

	for name, bd := range b.bound {
		entry, keep := wanted[name]
		if !keep || entry.Variant() != bd.hook.Variant() {
			bd.hook.Close()
			delete(b.bound, name)
		}
	}

	for _, name := range order {
		entry := wanted[name]
		bd, ok := b.bound[name]
		if !ok {
			bd = &binding{hook: shortcut.NewHook(b.target, entry.Variant())}
			bd.callback = b.callbackFor(name)
			b.bound[name] = bd
		}
		bd.entry = entry
		if bd.hook.Reconcile(entry.Keys, bd.callback, entry.Options()) {
			LogDebug("Bound shortcut %s (%s %s)", name, entry.Variant(), entry.Keys)
		}
	}

	b.order = order
	return append([]string(nil), order...)
}

func (b *Binder) callbackFor(name string) func() {
	return func() {
		b.mu.Lock()
		bd, ok := b.bound[name]
		var entry ShortcutEntry
		if ok {
			entry = bd.entry
		}
		b.mu.Unlock()

		if ok && b.fire != nil {
			b.fire(entry)
		}
	}
}

// Names returns the bound shortcut names in configuration order
func (b *Binder) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}

// Registration returns the live registration of a bound shortcut
func (b *Binder) Registration(name string) *shortcut.Registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bd, ok := b.bound[name]; ok {
		return bd.hook.Registration()
	}
	return nil
}

// Close removes every binding. Later Apply calls bind nothing.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, bd := range b.bound {
		bd.hook.Close()
		delete(b.bound, name)
	}
	b.order = nil
	b.closed = true
}

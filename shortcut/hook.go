package shortcut

import (
	"slices"
	"strings"
	"sync"
	"unsafe"
)

// Variant selects the matcher a Hook installs.
type Variant int

const (
	Strict Variant = iota
	Extended
)

func (v Variant) String() string {
	if v == Extended {
		return "extended"
	}
	return "strict"
}

// ParseVariant maps "strict" (or "") and "extended" to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, true
	case "extended":
		return Extended, true
	}
	return Strict, false
}

type hookInputs struct {
	keys     []string
	callback uintptr
	opts     Options
}

// Hook keeps at most one matcher registration alive on a target and replaces
// it when its inputs change.
type Hook struct {
	target  EventTarget
	variant Variant

	mu     sync.Mutex
	prev   *hookInputs
	reg    *Registration
	closed bool
}

// NewHook creates a Hook that installs variant matchers on target.
func NewHook(target EventTarget, variant Variant) *Hook {
	return &Hook{target: target, variant: variant}
}

// Variant returns the matcher kind the hook installs.
func (h *Hook) Variant() Variant {
	return h.variant
}

// Reconcile compares keys, callback and opts with the previous call. When
// any of them differs the old registration is removed before the new one is
// installed, and Reconcile returns true. Keys compare by content, opts by
// value and callback by funcval identity: closures that capture variables
// are distinct per evaluation, while a literal capturing nothing is one
// static funcval and compares equal to itself every time.
func (h *Hook) Reconcile(keys []string, callback func(), opts Options) bool {
	next := &hookInputs{
		keys:     slices.Clone(keys),
		callback: funcID(callback),
		opts:     opts,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.prev != nil && h.prev.equal(next) {
		return false
	}

	h.reg.Remove()
	switch h.variant {
	case Extended:
		h.reg = UseShortcutExtended(h.target, keys, callback, opts)
	default:
		h.reg = UseShortcut(h.target, keys, callback, opts)
	}
	h.prev = next
	return true
}

// Registration returns the current registration, or nil before the first
// Reconcile and after Close.
func (h *Hook) Registration() *Registration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reg
}

// Close removes the current registration. Later Reconcile calls are ignored.
func (h *Hook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reg.Remove()
	h.reg = nil
	h.prev = nil
	h.closed = true
}

func (in *hookInputs) equal(other *hookInputs) bool {
	return in.callback == other.callback &&
		in.opts == other.opts &&
		slices.Equal(in.keys, other.keys)
}

// funcID returns the address of the funcval behind fn. Go func values are
// not comparable. Capturing closures get a fresh funcval per evaluation;
// non-capturing literals and top-level functions share a static one.
func funcID(fn func()) uintptr {
	if fn == nil {
		return 0
	}
	return *(*uintptr)(unsafe.Pointer(&fn))
}

// Package shortcut detects the host operating system from navigator signals and
// matches keyboard shortcut combinations against a key/focus event stream.
package shortcut

// EventType identifies the kind of event delivered by an EventTarget.
type EventType int

const (
	KeyDown EventType = iota
	KeyUp
	Blur
)

func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "keydown"
	case KeyUp:
		return "keyup"
	case Blur:
		return "blur"
	default:
		return "unknown"
	}
}

// Event is a key or focus event. Key and the modifier flags are unset for Blur.
type Event struct {
	Type     EventType
	Key      string
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool

	defaultPrevented bool
}

// NewKeyDown returns a key-down event for key with no modifiers held.
func NewKeyDown(key string) *Event {
	return &Event{Type: KeyDown, Key: key}
}

// NewKeyUp returns a key-up event for key.
func NewKeyUp(key string) *Event {
	return &Event{Type: KeyUp, Key: key}
}

// NewBlur returns a focus-loss event.
func NewBlur() *Event {
	return &Event{Type: Blur}
}

// PreventDefault marks the event so the host skips its default action.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Package ax exposes the host accessibility introspection service: focused
// elements, their selected text, and the frontmost window identity.
package ax

import "errors"

// ErrUnavailable covers every introspection miss: no focused element, an
// attribute query refused, or a platform without a backend. Callers advance
// to the next retrieval strategy; this is never fatal.
var ErrUnavailable = errors.New("ax: introspection unavailable")

// Window is the captured identity of the process/window under focus.
type Window struct {
	PID     int
	AppName string
	Title   string
}

// Element is a UI element under introspection. Every accessor may fail for
// any element; failures mean "attribute not supported", not corruption.
type Element interface {
	// SelectedText returns the element's directly reported selection.
	SelectedText() (string, error)
	// SelectedRange returns the (start, length) of the selection within the
	// element's value.
	SelectedRange() (start, length int, err error)
	// Value returns the element's full text content.
	Value() (string, error)
	// StringForRange resolves an explicit range into a string, for elements
	// that only materialize text on demand.
	StringForRange(start, length int) (string, error)
	// Role returns the element's role name, e.g. "AXTextArea".
	Role() (string, error)
	// EditableAttribute reports an explicit editable capability when the
	// element exposes one; known is false when it does not.
	EditableAttribute() (editable, known bool)
	// ValueSettable reports whether the element's value attribute accepts
	// writes. Last-resort editability signal.
	ValueSettable() bool
}

// Introspector is the per-process entry point into the accessibility tree.
type Introspector interface {
	// FocusedElement returns the focused UI element of the process, falling
	// back to its focused or main window when no element has focus.
	FocusedElement(pid int) (Element, error)
	// FrontWindow describes the frontmost application's focused window.
	FrontWindow() (Window, error)
}

// Package activate brings a target process and its main window to front
// before a synthetic paste is delivered into it.
package activate

import "errors"

var ErrUnsupported = errors.New("activate: not supported on this platform")

type Activator interface {
	// Activate is the primary activation call.
	Activate(pid int) error
	// ForceFront is the scripting-based fallback used when Activate fails.
	// It is an explicit, logged step, not a silent retry.
	ForceFront(pid int) error
	// FocusMainWindow raises the process's main window.
	FocusMainWindow(pid int) error
}

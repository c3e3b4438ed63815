// Package keysynth synthesizes the copy and paste keyboard shortcuts.
package keysynth

import "errors"

var ErrUnsupported = errors.New("keysynth: not supported on this platform")

// Synthesizer posts synthetic keystrokes. Callers must suppress the input
// tap around these calls; the events are indistinguishable from user input.
type Synthesizer interface {
	Copy() error
	Paste() error
}

// Package capture obtains the currently selected text of the focused
// application through an ordered chain of retrieval strategies.
package capture

import (
	"errors"
	"log"
	"strings"

	"selection-watcher/src/ax"
)

// ErrNoSelection means every strategy ran and none produced meaningful text.
var ErrNoSelection = errors.New("capture: no selection")

// Retrieval sources, reported in the emitted payload.
const (
	SourceDirect    = "direct"
	SourceRange     = "range"
	SourceParam     = "param"
	SourceClipboard = "clipboard"
)

// Candidate is the transient result of one retrieval pass.
type Candidate struct {
	Text     string
	Editable bool
	Window   ax.Window
	Source   string
}

var editableRoles = map[string]bool{
	"AXTextField":   true,
	"AXTextArea":    true,
	"AXComboBox":    true,
	"AXSearchField": true,
}

// Chain runs the introspection strategies in fixed priority order. It is
// stateless; the clipboard fallback lives in Prober.
type Chain struct {
	intro ax.Introspector
}

func NewChain(intro ax.Introspector) *Chain {
	return &Chain{intro: intro}
}

// Window snapshots the frontmost window descriptor.
func (c *Chain) Window() (ax.Window, error) {
	return c.intro.FrontWindow()
}

// Introspect attempts strategies 1-3 against the frontmost application:
// direct selected-text, selected-range + value slicing, and the
// parameterized range-to-string query. The first meaningful text wins.
// Returns ErrNoSelection when the element answered but holds no selection,
// or a wrapped ax.ErrUnavailable when introspection itself failed.
func (c *Chain) Introspect() (*Candidate, error) {
	win, err := c.intro.FrontWindow()
	if err != nil {
		return nil, err
	}

	el, err := c.intro.FocusedElement(win.PID)
	if err != nil {
		return nil, err
	}

	if text, ok := directText(el); ok {
		return c.candidate(text, el, win, SourceDirect), nil
	}

	start, length, rangeErr := el.SelectedRange()
	if rangeErr == nil && length > 0 {
		if text, ok := sliceValue(el, start, length); ok {
			return c.candidate(text, el, win, SourceRange), nil
		}
		if text, err := el.StringForRange(start, length); err == nil && Meaningful(text) {
			return c.candidate(text, el, win, SourceParam), nil
		}
	}

	return nil, ErrNoSelection
}

func (c *Chain) candidate(text string, el ax.Element, win ax.Window, source string) *Candidate {
	return &Candidate{
		Text:     text,
		Editable: deriveEditable(el),
		Window:   win,
		Source:   source,
	}
}

func directText(el ax.Element) (string, bool) {
	text, err := el.SelectedText()
	if err != nil || !Meaningful(text) {
		return "", false
	}
	return text, true
}

// sliceValue reads the full value and slices the selected range out of it.
// An out-of-bounds range means "no selection", not an error: some elements
// report stale ranges while their value is mid-update.
func sliceValue(el ax.Element, start, length int) (string, bool) {
	value, err := el.Value()
	if err != nil {
		return "", false
	}
	runes := []rune(value)
	if start < 0 || length < 0 || start+length > len(runes) {
		log.Printf("capture: selected range %d+%d out of bounds for value of %d runes", start, length, len(runes))
		return "", false
	}
	text := string(runes[start : start+length])
	if !Meaningful(text) {
		return "", false
	}
	return text, true
}

// deriveEditable prefers the explicit capability attribute, then known
// editable roles, then whether the value attribute accepts writes.
func deriveEditable(el ax.Element) bool {
	if editable, known := el.EditableAttribute(); known {
		return editable
	}
	if role, err := el.Role(); err == nil && editableRoles[role] {
		return true
	}
	return el.ValueSettable()
}

// Meaningful reports whether text survives stripping whitespace and
// zero-width characters. A single-space placeholder does not qualify.
func Meaningful(text string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(stripped) != ""
}

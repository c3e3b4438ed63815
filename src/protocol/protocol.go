// Package protocol defines the line-oriented wire formats: outbound
// selection/deselection signals and inbound paste-back commands.
package protocol

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Position is an absolute top-left-origin screen coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Window identifies the process/window that owned a selection so a later
// paste-back can retarget it after focus has moved on.
type Window struct {
	AppName     string `json:"appName"`
	AppPID      int    `json:"appPID"`
	WindowTitle string `json:"windowTitle"`
}

// Signal is one output line. Struct field order is the wire order; only two
// shapes are ever produced, via Selection and Deselection.
type Signal struct {
	Text       string   `json:"text"`
	Position   Position `json:"position"`
	IsEditable *bool    `json:"isEditable,omitempty"`
	Window     *Window  `json:"window,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Selection builds the non-empty payload shape.
func Selection(text string, pos Position, editable bool, win Window, modifiers []string, source string) Signal {
	return Signal{
		Text:       text,
		Position:   pos,
		IsEditable: &editable,
		Window:     &win,
		Modifiers:  modifiers,
		Source:     source,
	}
}

// Deselection builds the empty payload shape: text "" and position only.
func Deselection(pos Position) Signal {
	return Signal{Position: pos}
}

// Command is an inbound paste-back request. AppPID is zero when the caller
// did not name a target process.
type Command struct {
	Text   string
	AppPID int
}

// ParseCommand accepts either a JSON object {"text": ..., "appPID": ...},
// a JSON string, or (legacy) a bare unquoted line that pastes into the last
// known window. Returns false for empty or text-less input.
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}

	if gjson.Valid(line) {
		parsed := gjson.Parse(line)
		switch {
		case parsed.IsObject():
			text := parsed.Get("text").String()
			if text == "" {
				return Command{}, false
			}
			return Command{Text: text, AppPID: int(parsed.Get("appPID").Int())}, true
		case parsed.Type == gjson.String:
			if parsed.String() == "" {
				return Command{}, false
			}
			return Command{Text: parsed.String()}, true
		}
	}

	return Command{Text: line}, true
}

// Package pasteback writes caller-supplied text to the clipboard and
// delivers it into the target window via a synthetic paste keystroke.
package pasteback

import (
	"log"
	"time"

	"selection-watcher/src/activate"
	"selection-watcher/src/clipboard"
	"selection-watcher/src/keysynth"
)

// Suppressor disables the input tap while synthetic keystrokes are live.
type Suppressor interface {
	Suppress()
	Resume()
}

type Executor struct {
	clip clipboard.Service
	keys keysynth.Synthesizer
	act  activate.Activator
	tap  Suppressor
	// settle is the wait between focusing the target and pasting; resume
	// is how long the tap stays suppressed after the keystroke.
	settle time.Duration
	resume time.Duration
}

func New(clip clipboard.Service, keys keysynth.Synthesizer, act activate.Activator, tap Suppressor, settle, resume time.Duration) *Executor {
	return &Executor{clip: clip, keys: keys, act: act, tap: tap, settle: settle, resume: resume}
}

// Execute performs the paste-back sequence. The ordering is part of the
// contract: the clipboard is written first, the tap is suppressed before
// any window manipulation, and it is re-armed only after a grace delay so
// the tap never observes this executor's own keystrokes. pid 0 means paste
// into whatever is frontmost. Activation failures degrade step by step:
// scripting fallback first, then a best-effort paste anyway.
func (e *Executor) Execute(text string, pid int) error {
	if err := e.clip.Write(text); err != nil {
		return err
	}

	e.tap.Suppress()
	defer time.AfterFunc(e.resume, e.tap.Resume)

	if pid > 0 {
		if err := e.act.Activate(pid); err != nil {
			log.Printf("pasteback: direct activation of pid %d failed: %v; forcing frontmost via scripting", pid, err)
			if err := e.act.ForceFront(pid); err != nil {
				log.Printf("pasteback: forced activation failed: %v; pasting anyway", err)
			}
		}
		if err := e.act.FocusMainWindow(pid); err != nil {
			log.Printf("pasteback: could not focus main window of pid %d: %v", pid, err)
		}
	}

	time.Sleep(e.settle)
	return e.keys.Paste()
}

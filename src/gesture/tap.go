package gesture

import (
	"log"
	"sort"
	"sync/atomic"
	"time"

	gohook "github.com/robotn/gohook"
)

// modifierRawcodes maps raw key codes to modifier names, covering both the
// macOS virtual keycodes and the Windows VK codes gohook reports.
var modifierRawcodes = map[uint16]string{
	56: "shift", 60: "shift", 160: "shift", 161: "shift",
	59: "control", 62: "control", 162: "control", 163: "control",
	58: "option", 61: "option", 164: "option", 165: "option",
	54: "command", 55: "command", 91: "command", 92: "command",
}

// Tap pumps global pointer and modifier-key events from gohook into a
// Classifier. While suppressed it drops pointer events so the watcher never
// reacts to its own synthetic keystrokes; modifier tracking continues so the
// locked-in modifier set cannot desync.
type Tap struct {
	classifier *Classifier
	retry      time.Duration
	suppress   atomic.Int32
	done       chan struct{}

	// pump-goroutine state
	mods map[string]bool
}

func NewTap(c *Classifier, retry time.Duration) *Tap {
	return &Tap{
		classifier: c,
		retry:      retry,
		done:       make(chan struct{}),
		mods:       make(map[string]bool),
	}
}

// Suppress makes the tap ignore pointer events until a matching Resume.
// Suppression counts: a probe's delayed resume cannot re-arm the tap while a
// paste-back still holds it suppressed.
func (t *Tap) Suppress() { t.suppress.Add(1) }

// Resume releases one Suppress. Unbalanced calls clamp at zero.
func (t *Tap) Resume() {
	if t.suppress.Add(-1) < 0 {
		t.suppress.Store(0)
	}
}

// Start installs the global hook on a background goroutine. Installation
// failure (commonly missing accessibility permission) is retried on a fixed
// interval forever; until it succeeds the watcher is inert but alive.
func (t *Tap) Start() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("tap: PANIC in event pump: %v", r)
			}
		}()

		for {
			select {
			case <-t.done:
				return
			default:
			}

			evChan := gohook.Start()
			if evChan == nil {
				log.Printf("tap: gohook.Start() returned nil channel; retrying in %v (accessibility permission missing?)", t.retry)
				t.sleep()
				continue
			}
			log.Printf("tap: global input hook installed")

			t.pump(evChan)

			select {
			case <-t.done:
				return
			default:
				log.Printf("tap: event channel closed; reinstalling in %v", t.retry)
				t.sleep()
			}
		}
	}()
}

// Stop tears the hook down.
func (t *Tap) Stop() {
	close(t.done)
	gohook.End()
}

func (t *Tap) sleep() {
	select {
	case <-time.After(t.retry):
	case <-t.done:
	}
}

func (t *Tap) pump(evChan chan gohook.Event) {
	for ev := range evChan {
		select {
		case <-t.done:
			return
		default:
		}

		switch ev.Kind {
		case gohook.KeyDown, gohook.KeyUp:
			if name, ok := modifierRawcodes[ev.Rawcode]; ok {
				t.mods[name] = ev.Kind == gohook.KeyDown
			}
		case gohook.MouseDown, gohook.MouseDrag, gohook.MouseUp, gohook.MouseMove:
			if t.suppress.Load() > 0 {
				continue
			}
			t.classifier.Feed(PointerEvent{
				Kind:      pointerKind(ev.Kind),
				X:         float64(ev.X),
				Y:         float64(ev.Y),
				Clicks:    int(ev.Clicks),
				Modifiers: t.modifierSet(),
			})
		}
	}
}

func pointerKind(kind uint8) PointerKind {
	switch kind {
	case gohook.MouseDown:
		return PointerDown
	case gohook.MouseDrag:
		return PointerDrag
	case gohook.MouseUp:
		return PointerUp
	default:
		return PointerMove
	}
}

func (t *Tap) modifierSet() []string {
	var out []string
	for name, pressed := range t.mods {
		if pressed {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

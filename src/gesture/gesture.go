// Package gesture classifies raw pointer events into completed gestures and
// hosts the system-wide input tap that produces them.
package gesture

import (
	"time"
)

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerDrag
	PointerUp
	PointerMove
)

// PointerEvent is one raw event from the input tap. Clicks is the
// OS-reported click-repetition count and is meaningful on PointerUp only.
type PointerEvent struct {
	Kind      PointerKind
	X, Y      float64
	Clicks    int
	Modifiers []string
}

type Kind int

const (
	Click Kind = iota
	Drag
	MultiClick
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Drag:
		return "drag"
	case MultiClick:
		return "multiClick"
	default:
		return "unknown"
	}
}

// Descriptor is a classified gesture, produced once per pointer-up and
// consumed exactly once by the coordinator.
type Descriptor struct {
	Kind       Kind
	ClickCount int
	X, Y       float64
	Modifiers  []string
	At         time.Time
}

// IsSelection reports whether this gesture may carry a text selection.
// A bare single click never does; that would hijack ordinary clicks.
func (d Descriptor) IsSelection() bool {
	return d.Kind == Drag || d.ClickCount >= 2
}

// Handler receives classified gestures and pointer movement. Implementations
// must not block: the calls arrive on the tap's delivery path.
type Handler interface {
	HandleGesture(Descriptor)
	HandleMove(x, y float64)
}

// Classifier folds the pointer event stream into gesture descriptors.
// A was-dragging flag armed on pointer-down distinguishes drags from clicks;
// the settle delay gives lagging accessibility back-ends time to publish
// their selection state before the coordinator reads it.
type Classifier struct {
	settle   time.Duration
	handler  Handler
	dragging bool
}

func NewClassifier(settle time.Duration, h Handler) *Classifier {
	return &Classifier{settle: settle, handler: h}
}

// Feed consumes one pointer event. Events must arrive from a single
// goroutine (the tap pump).
func (c *Classifier) Feed(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		c.dragging = false
	case PointerDrag:
		c.dragging = true
		c.handler.HandleMove(ev.X, ev.Y)
	case PointerMove:
		c.handler.HandleMove(ev.X, ev.Y)
	case PointerUp:
		d := Descriptor{
			Kind:       classify(c.dragging, ev.Clicks),
			ClickCount: ev.Clicks,
			X:          ev.X,
			Y:          ev.Y,
			Modifiers:  ev.Modifiers,
			At:         time.Now(),
		}
		if c.settle > 0 {
			time.AfterFunc(c.settle, func() { c.handler.HandleGesture(d) })
		} else {
			c.handler.HandleGesture(d)
		}
	}
}

func classify(dragging bool, clicks int) Kind {
	switch {
	case dragging:
		return Drag
	case clicks >= 2:
		return MultiClick
	default:
		return Click
	}
}

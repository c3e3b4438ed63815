// Package coordinator is the selection state machine. It consumes gesture
// descriptors and pointer movement, drives the retrieval chain across timed
// passes, debounces candidates into emitted selections, and cancels them on
// displacement, focus change, or an inbound paste-back.
package coordinator

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"selection-watcher/src/ax"
	"selection-watcher/src/capture"
	"selection-watcher/src/emitter"
	"selection-watcher/src/gesture"
	"selection-watcher/src/logutil"
	"selection-watcher/src/protocol"
)

type Config struct {
	Debounce        time.Duration
	PendingCancelPx float64
	ActiveCancelPx  float64
	MinLifetime     time.Duration
	PassDelays      []time.Duration
	MoveCheckEvery  time.Duration
	// FocusCheckEvery is how often the frontmost pid is compared against an
	// active selection's owner. Catches keyboard-only app switches, which
	// produce no pointer events and therefore no retrieval passes. Zero
	// disables the check.
	FocusCheckEvery time.Duration
}

// PasteBacker executes an inbound paste-back after the coordinator has
// forced itself idle.
type PasteBacker interface {
	Execute(text string, pid int) error
}

// Coordinator owns all selection state. Everything mutable lives behind its
// single Run loop; the exported handlers only post into channels.
type Coordinator struct {
	cfg    Config
	chain  *capture.Chain
	prober *capture.Prober
	pool   *capture.Pool
	emit   *emitter.Emitter
	paster PasteBacker

	gestures chan gesture.Descriptor
	moves    chan protocol.Position
	commands chan protocol.Command
	fires    chan fire
	pastes   chan pasteJob

	// loop-owned state
	seq           uint64
	gest          *gestureContext
	pending       *pendingSelection
	active        *activeSelection
	lastWindow    *protocol.Window
	pointer       protocol.Position
	lastMoveCheck time.Time
}

// gestureContext tracks the retrieval passes of the gesture currently being
// served. found stops later passes once a candidate has been taken.
type gestureContext struct {
	d          gesture.Descriptor
	verifyOnly bool
	found      bool
	passes     int
}

type pendingSelection struct {
	text      string
	editable  bool
	window    protocol.Window
	source    string
	anchor    protocol.Position
	modifiers []string
	createdAt time.Time
}

type activeSelection struct {
	text      string
	anchor    protocol.Position
	window    protocol.Window
	modifiers []string
	emittedAt time.Time
}

type fireKind int

const (
	firePass fireKind = iota
	fireDebounce
	fireProbe
)

// fire is a timer or probe completion posted back into the loop. The seq it
// carries must match the coordinator's current sequence or it is a no-op;
// that is how callbacks from superseded gestures die.
type fire struct {
	kind fireKind
	seq  uint64
	pass int
	text string
	err  error
}

// pasteJob is one paste-back handed to the executor goroutine. Execution
// involves settle sleeps and possibly an osascript exec, so it must not run
// on the loop.
type pasteJob struct {
	text string
	pid  int
}

func New(cfg Config, chain *capture.Chain, emit *emitter.Emitter) *Coordinator {
	if len(cfg.PassDelays) == 0 {
		cfg.PassDelays = []time.Duration{0}
	}
	return &Coordinator{
		cfg:      cfg,
		chain:    chain,
		emit:     emit,
		gestures: make(chan gesture.Descriptor, 8),
		moves:    make(chan protocol.Position, 1),
		commands: make(chan protocol.Command, 1),
		fires:    make(chan fire, 8),
		pastes:   make(chan pasteJob, 1),
	}
}

// SetFallback wires the clipboard-copy probe. Without it, empty
// introspection passes simply end the gesture. Call before Run.
func (c *Coordinator) SetFallback(prober *capture.Prober, pool *capture.Pool) {
	c.prober = prober
	c.pool = pool
}

// SetPasteBacker wires the paste-back executor. Call before Run.
func (c *Coordinator) SetPasteBacker(p PasteBacker) {
	c.paster = p
}

// HandleGesture implements gesture.Handler. Never blocks; a full queue
// drops the gesture rather than stalling the tap's delivery path.
func (c *Coordinator) HandleGesture(d gesture.Descriptor) {
	select {
	case c.gestures <- d:
	default:
		log.Printf("coordinator: gesture queue full, dropping %s", d.Kind)
	}
}

// HandleMove implements gesture.Handler. Movement is high-frequency and
// lossy by design: only the latest position matters.
func (c *Coordinator) HandleMove(x, y float64) {
	select {
	case c.moves <- protocol.Position{X: x, Y: y}:
	default:
	}
}

// Dispatch marshals an inbound command onto the coordinator loop. Called
// from the stdin drain goroutine; this is the only cross-context handoff.
func (c *Coordinator) Dispatch(cmd protocol.Command) {
	c.commands <- cmd
}

// Run processes events until ctx is cancelled. All state transitions happen
// here, single-threaded.
func (c *Coordinator) Run(ctx context.Context) error {
	go c.pasteWorker(ctx)

	var focusC <-chan time.Time
	if c.cfg.FocusCheckEvery > 0 {
		ticker := time.NewTicker(c.cfg.FocusCheckEvery)
		defer ticker.Stop()
		focusC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-c.gestures:
			c.onGesture(d)
		case pos := <-c.moves:
			c.onMove(pos)
		case cmd := <-c.commands:
			c.onCommand(cmd)
		case <-focusC:
			c.onFocusCheck()
		case f := <-c.fires:
			if f.seq != c.seq {
				continue // stale callback from a superseded gesture
			}
			switch f.kind {
			case firePass:
				c.runPass(f.pass)
			case fireDebounce:
				c.onDebounce()
			case fireProbe:
				c.onProbeResult(f)
			}
		}
	}
}

func (c *Coordinator) onGesture(d gesture.Descriptor) {
	c.seq++
	c.pending = nil
	c.pointer = protocol.Position{X: d.X, Y: d.Y}

	if !d.IsSelection() {
		if c.active == nil {
			return // a bare single click never triggers retrieval
		}
		// One verification pass: the click may have dismissed the live
		// selection, which must surface as a deselection signal.
		c.gest = &gestureContext{d: d, verifyOnly: true, passes: 1}
		c.schedulePass(c.seq, 0, 0)
		return
	}

	log.Printf("coordinator: %s at (%.0f,%.0f) clicks=%d mods=%v", d.Kind, d.X, d.Y, d.ClickCount, d.Modifiers)
	c.gest = &gestureContext{d: d, passes: len(c.cfg.PassDelays)}
	for i, delay := range c.cfg.PassDelays {
		c.schedulePass(c.seq, i, delay)
	}
}

func (c *Coordinator) schedulePass(seq uint64, pass int, delay time.Duration) {
	time.AfterFunc(delay, func() {
		c.fires <- fire{kind: firePass, seq: seq, pass: pass}
	})
}

func (c *Coordinator) runPass(pass int) {
	g := c.gest
	if g == nil || g.found {
		return
	}
	last := pass == g.passes-1

	cand, err := c.chain.Introspect()
	if cand != nil {
		// A live selection owned by a different process means focus moved.
		if c.active != nil && cand.Window.PID != c.active.window.AppPID {
			c.deselect(c.pointer)
		}
		g.found = true
		if g.verifyOnly {
			return // single clicks never promote text
		}
		c.handleCandidate(cand, g)
		return
	}
	if !last {
		return // a later pass may still catch the updated tree
	}

	if g.verifyOnly {
		if errors.Is(err, capture.ErrNoSelection) && c.active != nil {
			c.deselect(c.pointer)
		}
		return
	}

	// Final introspection pass came up empty: fall back to the clipboard
	// probe, off-loop. Its sleeps must not stall movement handling.
	if c.pool == nil || c.prober == nil {
		c.finishEmpty()
		return
	}
	seq := c.seq
	submitted := c.pool.Submit(c.prober, func(text string, perr error) {
		c.fires <- fire{kind: fireProbe, seq: seq, text: text, err: perr}
	})
	if !submitted {
		log.Printf("coordinator: clipboard probe refused, queue busy")
		c.finishEmpty()
	}
}

func (c *Coordinator) onProbeResult(f fire) {
	g := c.gest
	if g == nil || g.found {
		return
	}
	if f.err != nil {
		log.Printf("coordinator: clipboard fallback yielded nothing: %v", f.err)
		c.finishEmpty()
		return
	}

	// The probe returns bare text; window identity comes from a fresh
	// snapshot and editability is unknowable through the clipboard.
	cand := &capture.Candidate{Text: f.text, Source: capture.SourceClipboard}
	if win, werr := c.chain.Window(); werr == nil {
		cand.Window = win
	}
	g.found = true
	c.handleCandidate(cand, g)
}

// finishEmpty closes out a gesture whose every strategy came up empty. If a
// selection was live this is a deselection, not a silent no-op.
func (c *Coordinator) finishEmpty() {
	if c.active != nil {
		c.deselect(c.pointer)
	}
}

func (c *Coordinator) handleCandidate(cand *capture.Candidate, g *gestureContext) {
	if c.active != nil && c.active.text == cand.Text {
		return // unchanged selection, nothing to re-emit
	}

	win := toWindow(cand.Window)
	c.lastWindow = &win
	c.pending = &pendingSelection{
		text:      cand.Text,
		editable:  cand.Editable,
		window:    win,
		source:    cand.Source,
		anchor:    protocol.Position{X: g.d.X, Y: g.d.Y},
		modifiers: g.d.Modifiers,
		createdAt: time.Now(),
	}
	log.Printf("coordinator: candidate %q via %s, debouncing %v", logutil.Sanitize(cand.Text), cand.Source, c.cfg.Debounce)

	seq := c.seq
	time.AfterFunc(c.cfg.Debounce, func() {
		c.fires <- fire{kind: fireDebounce, seq: seq}
	})
}

func (c *Coordinator) onDebounce() {
	p := c.pending
	if p == nil {
		return
	}
	c.pending = nil

	if dist(c.pointer, p.anchor) > c.cfg.PendingCancelPx {
		log.Printf("coordinator: candidate dropped, pointer strayed before debounce fired")
		return
	}

	c.active = &activeSelection{
		text:      p.text,
		anchor:    p.anchor,
		window:    p.window,
		modifiers: p.modifiers,
		emittedAt: time.Now(),
	}
	c.emit.Emit(protocol.Selection(p.text, p.anchor, p.editable, p.window, p.modifiers, p.source))
}

func (c *Coordinator) onMove(pos protocol.Position) {
	c.pointer = pos

	now := time.Now()
	if now.Sub(c.lastMoveCheck) < c.cfg.MoveCheckEvery {
		return
	}
	c.lastMoveCheck = now

	if c.pending != nil && dist(pos, c.pending.anchor) > c.cfg.PendingCancelPx {
		log.Printf("coordinator: pending candidate cancelled by movement")
		c.seq++ // kills the debounce timer and any remaining passes
		c.pending = nil
		c.gest = nil
	}

	if c.active != nil &&
		now.Sub(c.active.emittedAt) >= c.cfg.MinLifetime &&
		dist(pos, c.active.anchor) > c.cfg.ActiveCancelPx {
		log.Printf("coordinator: selection cancelled, pointer moved away")
		c.deselect(pos)
	}
}

// onCommand forces the machine idle, then hands off to the paste-back
// executor. The deselection (when one is due) is emitted before the
// clipboard is touched.
func (c *Coordinator) onCommand(cmd protocol.Command) {
	log.Printf("coordinator: paste-back command, %d chars, pid=%d", len(cmd.Text), cmd.AppPID)
	c.seq++
	c.gest = nil
	c.pending = nil
	if c.active != nil {
		c.deselect(c.pointer)
	}

	pid := cmd.AppPID
	if pid == 0 && c.lastWindow != nil {
		pid = c.lastWindow.AppPID
	}
	if c.paster == nil {
		return
	}
	select {
	case c.pastes <- pasteJob{text: cmd.Text, pid: pid}:
	default:
		log.Printf("coordinator: paste-back dropped, executor busy")
	}
}

// pasteWorker serializes paste-back execution off the loop. Settle sleeps
// and activation scripting otherwise stall gesture and movement handling.
func (c *Coordinator) pasteWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-c.pastes:
			if err := c.paster.Execute(j.text, j.pid); err != nil {
				log.Printf("coordinator: paste-back failed: %v", err)
			}
		}
	}
}

// onFocusCheck deselects when another application has taken the front while
// a selection is active. Pointer-driven passes cannot see a Cmd+Tab switch.
func (c *Coordinator) onFocusCheck() {
	if c.active == nil {
		return
	}
	win, err := c.chain.Window()
	if err != nil {
		return
	}
	if win.PID != c.active.window.AppPID {
		log.Printf("coordinator: focus moved to pid %d, deselecting", win.PID)
		c.deselect(c.pointer)
	}
}

func (c *Coordinator) deselect(pos protocol.Position) {
	c.active = nil
	c.emit.Emit(protocol.Deselection(pos))
}

func toWindow(w ax.Window) protocol.Window {
	return protocol.Window{AppName: w.AppName, AppPID: w.PID, WindowTitle: w.Title}
}

func dist(a, b protocol.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

package capture

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"selection-watcher/src/clipboard"
	"selection-watcher/src/keysynth"
)

// ErrBusy means another clipboard probe holds the mutual-exclusion flag.
var ErrBusy = errors.New("capture: clipboard probe already running")

// ErrClipboardTimeout means the synthetic copy never changed the clipboard
// within the bounded polling window. The original content is restored
// regardless; callers treat this as absence of a selection, not a failure.
var ErrClipboardTimeout = errors.New("capture: clipboard copy timed out")

// Suppressor disables the input tap around synthetic keystrokes.
type Suppressor interface {
	Suppress()
	Resume()
}

const pollInterval = 20 * time.Millisecond

// ProbeConfig bounds the fallback's waits. Every wait here is finite.
type ProbeConfig struct {
	Attempts int
	Timeout  time.Duration
	Backoff  time.Duration
	// ResumeGrace delays tap re-enablement past the probe so trailing
	// synthetic key events cannot leak back in.
	ResumeGrace time.Duration
}

// Prober is the last-resort retrieval strategy: synthesize a copy keystroke
// and watch the clipboard change counter for the result.
type Prober struct {
	clip clipboard.Service
	keys keysynth.Synthesizer
	tap  Suppressor
	cfg  ProbeConfig
	busy atomic.Bool
}

func NewProber(clip clipboard.Service, keys keysynth.Synthesizer, tap Suppressor, cfg ProbeConfig) *Prober {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	return &Prober{clip: clip, keys: keys, tap: tap, cfg: cfg}
}

// Probe runs one clipboard-copy fallback. The sequence is deliberate:
// suppress the tap, snapshot and clear the clipboard, synthesize Cmd+C,
// poll the change counter, then unconditionally restore the snapshot and
// re-arm the tap after a grace delay.
func (p *Prober) Probe() (string, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer p.busy.Store(false)

	p.tap.Suppress()
	defer time.AfterFunc(p.cfg.ResumeGrace, p.tap.Resume)

	saved := p.clip.Read()
	// Clear first so stale content can never be mistaken for a fresh copy.
	if err := p.clip.Write(""); err != nil {
		return "", err
	}
	base := p.clip.ChangeCount()

	defer func() {
		if err := p.clip.Write(saved); err != nil {
			log.Printf("capture: failed to restore clipboard: %v", err)
		}
	}()

	if err := p.keys.Copy(); err != nil {
		return "", err
	}

	changed := false
	for attempt := 0; attempt < p.cfg.Attempts && !changed; attempt++ {
		if attempt > 0 {
			time.Sleep(p.cfg.Backoff)
		}
		changed = p.waitForChange(base, p.cfg.Timeout)
	}
	if !changed {
		log.Printf("capture: clipboard unchanged after %d poll attempts", p.cfg.Attempts)
		return "", ErrClipboardTimeout
	}

	text := p.clip.Read()
	if !Meaningful(text) {
		return "", ErrNoSelection
	}
	return text, nil
}

// waitForChange watches for the synthetic copy to land. The change counter
// alone is not enough: the watch feeding it polls the pasteboard on its own
// interval and can lag a real change past this whole window, so content
// leaving the cleared state counts as a change too.
func (p *Prober) waitForChange(base uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if p.clip.ChangeCount() != base || p.clip.Read() != "" {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClip is an in-memory clipboard with the same change-counter contract
// as the system service: every content change bumps the counter.
type fakeClip struct {
	mu       sync.Mutex
	content  string
	count    uint64
	writeErr error
	writes   []string
}

func (c *fakeClip) Read() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *fakeClip) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.content = text
	c.count++
	c.writes = append(c.writes, text)
	return nil
}

func (c *fakeClip) ChangeCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// set mimics an out-of-process clipboard change, e.g. the OS completing a
// synthetic copy.
func (c *fakeClip) set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
	c.count++
}

// setQuiet changes content without moving the counter, like a real change
// the watch-based counter has not polled yet.
func (c *fakeClip) setQuiet(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
}

type fakeKeys struct {
	copyFn   func() error
	pasteErr error
}

func (k *fakeKeys) Copy() error {
	if k.copyFn != nil {
		return k.copyFn()
	}
	return nil
}

func (k *fakeKeys) Paste() error { return k.pasteErr }

type fakeSuppressor struct {
	mu     sync.Mutex
	events []string
}

func (s *fakeSuppressor) Suppress() { s.record("suppress") }
func (s *fakeSuppressor) Resume()   { s.record("resume") }

func (s *fakeSuppressor) record(ev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeSuppressor) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func quickProbeConfig() ProbeConfig {
	return ProbeConfig{
		Attempts:    2,
		Timeout:     60 * time.Millisecond,
		Backoff:     10 * time.Millisecond,
		ResumeGrace: 10 * time.Millisecond,
	}
}

func TestProbeCapturesAndRestores(t *testing.T) {
	clip := &fakeClip{content: "previous clipboard"}
	tap := &fakeSuppressor{}
	keys := &fakeKeys{copyFn: func() error {
		clip.set("the selection")
		return nil
	}}
	p := NewProber(clip, keys, tap, quickProbeConfig())

	text, err := p.Probe()
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if text != "the selection" {
		t.Errorf("text = %q, want %q", text, "the selection")
	}
	if got := clip.Read(); got != "previous clipboard" {
		t.Errorf("clipboard after probe = %q, want the original restored", got)
	}

	// The clipboard must have been cleared before the copy so stale content
	// cannot be mistaken for a fresh one.
	clip.mu.Lock()
	firstWrite := clip.writes[0]
	clip.mu.Unlock()
	if firstWrite != "" {
		t.Errorf("first write = %q, want a clear", firstWrite)
	}

	events := tap.snapshot()
	if len(events) == 0 || events[0] != "suppress" {
		t.Fatalf("tap events = %v, want suppress first", events)
	}

	// Resume arrives only after the grace delay.
	time.Sleep(60 * time.Millisecond)
	events = tap.snapshot()
	if events[len(events)-1] != "resume" {
		t.Errorf("tap events after grace = %v, want trailing resume", events)
	}
}

func TestProbeSeesCopyBeforeCounterCatchesUp(t *testing.T) {
	clip := &fakeClip{content: "previous clipboard"}
	keys := &fakeKeys{copyFn: func() error {
		clip.setQuiet("landed silently")
		return nil
	}}
	p := NewProber(clip, keys, &fakeSuppressor{}, quickProbeConfig())

	text, err := p.Probe()
	if err != nil {
		t.Fatalf("Probe with a lagging counter: %v", err)
	}
	if text != "landed silently" {
		t.Errorf("text = %q, want the copied content", text)
	}
	if got := clip.Read(); got != "previous clipboard" {
		t.Errorf("clipboard after probe = %q, want the original restored", got)
	}
}

func TestProbeTimeoutStillRestores(t *testing.T) {
	clip := &fakeClip{content: "keep me"}
	p := NewProber(clip, &fakeKeys{}, &fakeSuppressor{}, quickProbeConfig())

	_, err := p.Probe()
	if !errors.Is(err, ErrClipboardTimeout) {
		t.Fatalf("err = %v, want ErrClipboardTimeout", err)
	}
	if got := clip.Read(); got != "keep me" {
		t.Errorf("clipboard after timeout = %q, want the original restored", got)
	}
}

func TestProbeWhitespaceResultIsNoSelection(t *testing.T) {
	clip := &fakeClip{content: "keep me"}
	keys := &fakeKeys{copyFn: func() error {
		clip.set("   ")
		return nil
	}}
	p := NewProber(clip, keys, &fakeSuppressor{}, quickProbeConfig())

	_, err := p.Probe()
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
	if got := clip.Read(); got != "keep me" {
		t.Errorf("clipboard = %q, want the original restored", got)
	}
}

func TestProbeRejectsOverlap(t *testing.T) {
	clip := &fakeClip{}
	cfg := quickProbeConfig()
	cfg.Attempts = 1
	cfg.Timeout = 300 * time.Millisecond
	p := NewProber(clip, &fakeKeys{}, &fakeSuppressor{}, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Probe() // stalls in the polling window
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := p.Probe(); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping probe: err = %v, want ErrBusy", err)
	}
	<-done
}

func TestProbeCopyFailurePropagates(t *testing.T) {
	clip := &fakeClip{content: "keep me"}
	keys := &fakeKeys{copyFn: func() error { return errors.New("tap denied") }}
	p := NewProber(clip, keys, &fakeSuppressor{}, quickProbeConfig())

	if _, err := p.Probe(); err == nil {
		t.Fatal("expected synthesis failure to propagate")
	}
	if got := clip.Read(); got != "keep me" {
		t.Errorf("clipboard = %q, want the original restored", got)
	}
}

func TestPoolRunsOneProbeAtATime(t *testing.T) {
	clip := &fakeClip{}
	cfg := quickProbeConfig()
	cfg.Attempts = 1
	cfg.Timeout = 100 * time.Millisecond
	p := NewProber(clip, &fakeKeys{}, &fakeSuppressor{}, cfg)

	pool := NewPool()
	defer pool.Close()

	var completions atomic.Int32
	cb := func(string, error) { completions.Add(1) }

	if !pool.Submit(p, cb) {
		t.Fatal("first submit refused")
	}
	// The first job may still sit in the queue slot until the worker takes
	// it; keep trying until the second lands. Once it does, the worker is
	// mid-probe on the first and the slot is held by the second.
	landed := false
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); {
		if pool.Submit(p, cb) {
			landed = true
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !landed {
		t.Fatal("second submit never accepted")
	}
	if pool.Submit(p, cb) {
		t.Error("submit accepted with the queue slot occupied")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if completions.Load() >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if n := completions.Load(); n != 2 {
		t.Errorf("completions = %d, want 2", n)
	}
}

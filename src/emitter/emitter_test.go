package emitter

import (
	"bytes"
	"strings"
	"testing"

	"selection-watcher/src/protocol"
)

func TestEmitWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	if !e.Emit(protocol.Deselection(protocol.Position{X: 1, Y: 2})) {
		t.Fatal("expected first emit to write")
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("expected trailing newline, got %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", out)
	}
}

func TestEmitSuppressesConsecutiveDuplicates(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	win := protocol.Window{AppName: "Notes", AppPID: 501}
	sel := protocol.Selection("foo", protocol.Position{X: 5, Y: 6}, true, win, nil, "direct")

	if !e.Emit(sel) {
		t.Fatal("first emit suppressed")
	}
	if e.Emit(sel) {
		t.Error("identical payload was not suppressed")
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Errorf("expected 1 line, got %d", lines)
	}

	// A different payload must go through, and the original becomes
	// emittable again afterwards.
	if !e.Emit(protocol.Deselection(protocol.Position{X: 5, Y: 6})) {
		t.Error("changed payload was suppressed")
	}
	if !e.Emit(sel) {
		t.Error("payload after an intervening change was suppressed")
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

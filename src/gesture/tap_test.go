package gesture

import (
	"testing"
	"time"
)

func TestSuppressionNests(t *testing.T) {
	tap := NewTap(NewClassifier(0, &recordingHandler{}), time.Second)

	// Two holders, e.g. a probe's delayed resume still pending when a
	// paste-back suppresses again. One release must not re-arm the tap.
	tap.Suppress()
	tap.Suppress()
	tap.Resume()
	if tap.suppress.Load() <= 0 {
		t.Fatal("tap re-armed while a holder remains")
	}
	tap.Resume()
	if tap.suppress.Load() != 0 {
		t.Fatalf("suppress count = %d after balanced releases, want 0", tap.suppress.Load())
	}
}

func TestSuppressionClampsUnbalancedResume(t *testing.T) {
	tap := NewTap(NewClassifier(0, &recordingHandler{}), time.Second)

	tap.Resume() // stray release, nothing held
	if tap.suppress.Load() != 0 {
		t.Fatalf("suppress count = %d after stray resume, want 0", tap.suppress.Load())
	}

	tap.Suppress()
	if tap.suppress.Load() <= 0 {
		t.Error("suppression broken after a stray resume")
	}
}

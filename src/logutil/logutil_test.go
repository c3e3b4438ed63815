package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFileRotatesAtLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	rf, err := openRotatingFile(path, 64)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 3; i++ {
		if _, err := rf.Write([]byte(line)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	// Two writes exceed the limit, so one rotation must have happened.
	archived, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("expected first archive: %v", err)
	}
	if len(archived) == 0 {
		t.Error("archive is empty")
	}
	base, err := os.Stat(path)
	if err != nil {
		t.Fatalf("base file missing after rotation: %v", err)
	}
	if base.Size() > 64 {
		t.Errorf("base file size %d exceeds the limit", base.Size())
	}
}

func TestRotatingFileShiftsArchives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	rf, err := openRotatingFile(path, 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Each numbered write overflows the tiny limit, forcing a rotation per
	// write after the first.
	for _, payload := range []string{"first....", "second...", "third....", "fourth...", "fifth...."} {
		if _, err := rf.Write([]byte(payload)); err != nil {
			t.Fatalf("write %q: %v", payload, err)
		}
	}

	for n := 1; n <= maxArchives; n++ {
		if _, err := os.Stat(rf.archive(n)); err != nil {
			t.Errorf("archive %d missing: %v", n, err)
		}
	}
	if _, err := os.Stat(rf.archive(maxArchives + 1)); err == nil {
		t.Errorf("archive %d exists beyond the retention window", maxArchives+1)
	}

	// Newest archive holds the most recently rotated content.
	newest, err := os.ReadFile(rf.archive(1))
	if err != nil {
		t.Fatalf("read newest archive: %v", err)
	}
	if string(newest) != "fourth..." {
		t.Errorf("newest archive = %q, want %q", newest, "fourth...")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"two\nlines", "two\\nlines"},
		{"tab\there", "tab\\there"},
		{"bell\x07", "bell?"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100) + "..."},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

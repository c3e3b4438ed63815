// Package logutil routes the stdlib logger into a size-rotated debug file.
// Logs are discarded unless file logging is enabled: stdout carries the
// signal protocol and must never receive a log line.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	logFileName  = "selection_watcher_debug.log"
	maxSizeBytes = 10 * 1024 * 1024
	maxArchives  = 3
)

// Setup configures the global logger. With file logging off everything goes
// to io.Discard.
func Setup(enableFileLogging bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	rf, err := openRotatingFile(logFileName, maxSizeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(rf)
}

// rotatingFile appends to path and rotates to numbered archives once the
// tracked size would exceed the limit. Single-writer; the stdlib logger
// serializes Write calls itself.
type rotatingFile struct {
	path  string
	limit int64
	f     *os.File
	size  int64
}

func openRotatingFile(path string, limit int64) (*rotatingFile, error) {
	rf := &rotatingFile{path: path, limit: limit}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	rf.f = f
	rf.size = st.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	if rf.size+int64(len(p)) > rf.limit {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.f.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate shifts path -> path.1 -> ... -> path.N, dropping the oldest, and
// reopens a fresh base file.
func (rf *rotatingFile) rotate() error {
	rf.f.Close()
	os.Remove(rf.archive(maxArchives))
	for n := maxArchives; n > 1; n-- {
		os.Rename(rf.archive(n-1), rf.archive(n))
	}
	os.Rename(rf.path, rf.archive(1))
	return rf.open()
}

func (rf *rotatingFile) archive(n int) string {
	return fmt.Sprintf("%s.%d", rf.path, n)
}

// Sanitize truncates text and escapes control characters so selection
// content cannot inject lines into the log.
func Sanitize(text string) string {
	const maxLogLength = 100
	if len(text) > maxLogLength {
		text = text[:maxLogLength] + "..."
	}

	sanitized := ""
	for _, r := range text {
		if r == '\n' || r == '\r' {
			sanitized += "\\n"
		} else if r == '\t' {
			sanitized += "\\t"
		} else if r < 32 || r == 127 {
			sanitized += "?"
		} else {
			sanitized += string(r)
		}
	}
	return sanitized
}

// Package emitter serializes signals onto the output stream, one JSON object
// per line, suppressing consecutive duplicates.
package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"selection-watcher/src/protocol"
)

type Emitter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the signal if its serialized form differs from the previously
// emitted line. Returns whether a line was written.
func (e *Emitter) Emit(sig protocol.Signal) bool {
	b, err := json.Marshal(sig)
	if err != nil {
		log.Printf("emitter: marshal failed: %v", err)
		return false
	}
	line := string(b)

	e.mu.Lock()
	defer e.mu.Unlock()
	if line == e.last {
		log.Printf("emitter: suppressed duplicate payload (%d bytes)", len(line))
		return false
	}
	e.last = line
	fmt.Fprintln(e.w, line)
	return true
}

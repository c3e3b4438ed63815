// Package clipboard wraps the system clipboard behind a small service with
// the change counter the retrieval fallback polls against.
package clipboard

import (
	"context"
	"sync"
	"sync/atomic"

	xclipboard "golang.design/x/clipboard"
)

// Service is the clipboard as the watcher sees it. ChangeCount increases
// monotonically whenever the content changes, from any process.
type Service interface {
	Read() string
	Write(text string) error
	ChangeCount() uint64
}

// Init initializes the system clipboard and starts the change watcher.
func Init() (Service, error) {
	if err := xclipboard.Init(); err != nil {
		return nil, err
	}
	s := &systemService{}
	ch := xclipboard.Watch(context.Background(), xclipboard.FmtText)
	go func() {
		for range ch {
			s.count.Add(1)
		}
	}()
	return s, nil
}

type systemService struct {
	writeMu sync.Mutex
	count   atomic.Uint64
}

func (s *systemService) Read() string {
	return string(xclipboard.Read(xclipboard.FmtText))
}

// Write performs a mutex-guarded clipboard write to prevent corruption under
// parallel writes. The counter is bumped immediately so pollers see our own
// writes without waiting for the watcher to catch up.
func (s *systemService) Write(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	xclipboard.Write(xclipboard.FmtText, []byte(text))
	s.count.Add(1)
	return nil
}

func (s *systemService) ChangeCount() uint64 {
	return s.count.Load()
}

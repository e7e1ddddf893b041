package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rezepte/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports session changes made by the login flow.
// It watches the parent directory so atomic replaces and deletions of the
// session file are seen as well as in-place writes.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	last        Session
	pendingAt   time.Time
	debounceDur time.Duration
	updates     chan Session
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closeOnce   sync.Once
}

// NewWatcher creates a watcher for the session file at path. current is the
// session already known to the caller; only differing sessions are emitted.
func NewWatcher(path string, current Session) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        filepath.Clean(path),
		dir:         filepath.Dir(filepath.Clean(path)),
		last:        current,
		debounceDur: 100 * time.Millisecond,
		updates:     make(chan Session, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Updates delivers the latest session after each settled change. Only the
// newest value is kept if the reader falls behind.
func (w *Watcher) Updates() <-chan Session {
	return w.updates
}

// Start begins watching. It is non-blocking and idempotent.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0700); err != nil {
		logging.SessionWarn("session watcher: cannot create %s: %v", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Session("session watcher: watching %s", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for its goroutine to exit and closes the
// Updates channel.
func (w *Watcher) Stop() {
	defer w.closeOnce.Do(func() { close(w.updates) })

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		logging.SessionWarn("session watcher: close failed: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pendingAt = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.SessionWarn("session watcher error: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

// flush reloads the file once events have settled for debounceDur.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pendingAt = time.Time{}
	w.mu.Unlock()

	s, err := Load(w.path)
	if err != nil {
		logging.SessionWarn("session watcher: %v", err)
		return
	}

	w.mu.Lock()
	if s == w.last {
		w.mu.Unlock()
		return
	}
	w.last = s
	w.mu.Unlock()

	logging.Session("session changed: mode=%s user=%d", s.Mode(), s.UserID)
	select {
	case <-w.updates:
	default:
	}
	w.updates <- s
}

package session

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/logging"
)

// DefaultDebounce is how long the session file must stay quiet before a
// reload.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reloads a Store when its file is edited outside the process.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *Store
	file     string
	logger   *zap.Logger
	debounce time.Duration
	pending  time.Time // zero when nothing is pending
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	// OnReload, if set, is called after every reload attempt triggered by the
	// watcher. changed is false when the file matched the loaded session.
	OnReload func(changed bool, err error)
}

// NewWatcher returns a watcher for store's file. It does nothing until Start.
func NewWatcher(store *Store, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	file, err := filepath.Abs(store.Path())
	if err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		store:    store,
		file:     file,
		logger:   logging.OrNop(logger),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the directory holding the session file; editors replace files
// rather than write them in place, so the file itself is not watched. Start
// does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.file)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching session file", zap.String("path", w.file))

	go w.run(ctx)
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("session watcher error", zap.Error(err))

		case now := <-tick.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && now.Sub(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if due {
				w.reload()
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.file {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("session file event", zap.String("op", ev.Op.String()))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) reload() {
	changed, err := w.store.reload()
	if err != nil {
		// The file may be mid-edit; keep serving the last good session.
		w.logger.Warn("session reload failed", zap.String("path", w.file), zap.Error(err))
	}
	if w.OnReload != nil {
		w.OnReload(changed, err)
	}
}

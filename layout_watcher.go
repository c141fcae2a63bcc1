package main

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LayoutWatcher reloads the slot layout when its file changes on disk.
// The parent directory is watched so editors that replace the file on save
// are still seen.
type LayoutWatcher struct {
	watcher     *fsnotify.Watcher
	service     *Service
	path        string
	debounceDur time.Duration
	log         *zap.Logger

	mu        sync.Mutex
	pendingAt time.Time
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewLayoutWatcher(path string, service *Service) (*LayoutWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	return &LayoutWatcher{
		watcher:     watcher,
		service:     service,
		path:        abs,
		debounceDur: 200 * time.Millisecond,
		log:         logger.Named("layout"),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine. Stop must be called to release it.
func (lw *LayoutWatcher) Start(ctx context.Context) error {
	if err := lw.watcher.Add(filepath.Dir(lw.path)); err != nil {
		return err
	}
	lw.log.Info("watching layout", zap.String("path", lw.path))
	go lw.run(ctx)
	return nil
}

func (lw *LayoutWatcher) Stop() {
	lw.stopOnce.Do(func() {
		close(lw.stopCh)
		<-lw.doneCh
		if err := lw.watcher.Close(); err != nil {
			lw.log.Error("failed to close watcher", zap.Error(err))
		}
	})
}

func (lw *LayoutWatcher) run(ctx context.Context) {
	defer close(lw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lw.stopCh:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			lw.handleEvent(event)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.log.Error("watcher error", zap.Error(err))
		case <-ticker.C:
			lw.processPending()
		}
	}
}

func (lw *LayoutWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != lw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	lw.mu.Lock()
	lw.pendingAt = time.Now()
	lw.mu.Unlock()
}

// processPending reloads once the last event has settled past the debounce window.
func (lw *LayoutWatcher) processPending() {
	lw.mu.Lock()
	if lw.pendingAt.IsZero() || time.Since(lw.pendingAt) < lw.debounceDur {
		lw.mu.Unlock()
		return
	}
	lw.pendingAt = time.Time{}
	lw.mu.Unlock()

	layout, err := loadLayout(lw.path)
	if err != nil {
		// Keep serving the previous layout.
		lw.log.Warn("ignoring invalid layout", zap.Error(err))
		return
	}
	lw.service.SetLayout(layout)
	lw.log.Info("layout reloaded", zap.Int("card_slots", len(layout.Card)), zap.Int("profile_slots", len(layout.Profile)))
}

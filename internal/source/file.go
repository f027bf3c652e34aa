// Package source feeds conversation snapshots to the viewer: from a
// transcript file on disk, or from a NATS JetStream subject.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// FileSource serves a transcript file as a stream of snapshots. The file is
// re-read whenever it changes on disk. Only the newest window of items is
// exposed; LoadOlder widens the window by one page.
type FileSource struct {
	path     string
	pageSize int

	mu    sync.Mutex
	full  *conversation.Snapshot
	limit int

	watcher *fsnotify.Watcher
	out     chan *conversation.Snapshot
	done    chan struct{}
	stopped chan struct{}
}

// NewFileSource loads path and prepares a source exposing pageSize items at
// a time. A pageSize of zero or less exposes everything.
func NewFileSource(path string, pageSize int) (*FileSource, error) {
	snap, err := conversation.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{
		path:     path,
		pageSize: pageSize,
		full:     snap,
		limit:    pageSize,
		out:      make(chan *conversation.Snapshot, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Snapshots returns the channel new snapshots are delivered on. Only the
// latest undelivered snapshot is kept.
func (s *FileSource) Snapshots() <-chan *conversation.Snapshot {
	return s.out
}

// Current returns the windowed snapshot.
func (s *FileSource) Current() *conversation.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.full, s.limit)
}

// Start emits the current snapshot and begins watching the file. The parent
// directory is watched so editors that replace the file on save are seen.
func (s *FileSource) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", s.path, err)
	}
	s.watcher = w
	s.emit(s.Current())

	go s.eventLoop()
	logger.Info("Watching transcript %s", s.path)
	return nil
}

// Stop shuts down the watcher and event loop.
func (s *FileSource) Stop() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	<-s.stopped
	return s.watcher.Close()
}

// LoadOlder widens the window by one page and emits the result. It reports
// whether any items were added.
func (s *FileSource) LoadOlder(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	if s.pageSize <= 0 || s.limit >= len(s.full.Items) {
		s.mu.Unlock()
		return false, nil
	}
	s.limit += s.pageSize
	snap := window(s.full, s.limit)
	s.mu.Unlock()

	logger.Debug("Loaded older items for %s: window %d", s.path, len(snap.Items))
	s.emit(snap)
	return true, nil
}

// Reload re-reads the transcript and emits it.
func (s *FileSource) Reload() error {
	snap, err := conversation.LoadSnapshot(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if snap.ThreadID != s.full.ThreadID || snap.WorkspaceID != s.full.WorkspaceID {
		s.limit = s.pageSize
	}
	s.full = snap
	cur := window(s.full, s.limit)
	s.mu.Unlock()

	s.emit(cur)
	return nil
}

// emit delivers snap, replacing an undelivered older snapshot.
func (s *FileSource) emit(snap *conversation.Snapshot) {
	for {
		select {
		case s.out <- snap:
			return
		default:
		}
		select {
		case <-s.out:
		default:
		}
	}
}

// eventLoop processes fsnotify events until Stop is called. Bursts of
// writes are coalesced into a single reload.
func (s *FileSource) eventLoop() {
	defer close(s.stopped)

	target := filepath.Clean(s.path)
	timer := time.NewTimer(debounceInterval)
	timer.Stop()

	for {
		select {
		case <-s.done:
			timer.Stop()
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounceInterval)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				logger.Warn("Reloading transcript %s: %v", s.path, err)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Transcript watcher error: %v", err)
		}
	}
}

// window returns a shallow copy of snap holding its last limit items.
func window(snap *conversation.Snapshot, limit int) *conversation.Snapshot {
	out := *snap
	if limit > 0 && len(snap.Items) > limit {
		out.Items = snap.Items[len(snap.Items)-limit:]
	}
	return &out
}

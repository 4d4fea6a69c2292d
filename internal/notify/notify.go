// Package notify backs the invalidation-tag fan-out: it watches one
// file path on disk and turns filesystem change
// events into invalidation tags for external poller clients, since the
// store itself only returns an Invalidate tag list inline with each
// committed write.
package notify

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Taj-Howe/planner-kernel/internal/log"
)

// Watcher fans out filesystem change events on the watched file as
// invalidation tags.
type Watcher struct {
	fsw *fsnotify.Watcher
	out chan string
}

// New watches the file at path (through a watch on its parent directory)
// and emits its basename on every write/create/rename of that file.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, out: make(chan string, 16)}
	go w.pump(path)
	return w, nil
}

func (w *Watcher) pump(watched string) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				close(w.out)
				return
			}
			if ev.Name != watched {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.out <- filepath.Base(ev.Name):
			default:
				log.L().Warnw("notify: dropped invalidation event, channel full", "path", ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.L().Errorw("notify: watcher error", "err", err)
		}
	}
}

// Events returns the channel of invalidated file basenames. Closed
// once Close is called and the underlying watcher drains.
func (w *Watcher) Events() <-chan string { return w.out }

// Close stops watching and releases the underlying inotify/kqueue handle.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run blocks relaying events to onInvalidate until ctx is canceled or the
// watcher closes.
func (w *Watcher) Run(ctx context.Context, onInvalidate func(tag string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case tag, ok := <-w.out:
			if !ok {
				return
			}
			onInvalidate(tag)
		}
	}
}

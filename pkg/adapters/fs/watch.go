package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/pkg/core"
)

// Watch reports note files created, modified or removed by any process,
// including this one. The channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// The root is watched too, so a notes directory swapped in by
	// ReplaceAll is picked up again.
	for _, dir := range []string{r.Path, r.notesPath()} {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	known, err := r.knownIDs()
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	w := &noteWatcher{repo: r, watcher: watcher, events: events, known: known}
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return w.run(ctx)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.config.Logger.Error("note watcher stopped", "error", err)
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(err)
		}
	}))

	return events, nil
}

type noteWatcher struct {
	repo    *Repository
	watcher *fsnotify.Watcher
	events  chan<- core.Event
	// known tracks ids seen on disk, to tell a modification (an atomic
	// rename over an existing file) from a creation.
	known map[int64]bool
}

func (r *Repository) knownIDs() (map[int64]bool, error) {
	ids, err := r.discover()
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

func (w *noteWatcher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.handle(ctx, event) {
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.config.Logger.Error("fsnotify error", "error", err)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(err)
			}
		}
	}
}

// handle maps one fsnotify event. It returns false once ctx is done.
func (w *noteWatcher) handle(ctx context.Context, event fsnotify.Event) bool {
	if filepath.Clean(event.Name) == w.repo.notesPath() && event.Has(fsnotify.Create) {
		_ = w.watcher.Add(w.repo.notesPath())
		return w.rescan(ctx)
	}

	if filepath.Dir(event.Name) != w.repo.notesPath() {
		return true
	}
	if ok, _ := doublestar.Match(notePattern, filepath.Base(event.Name)); !ok {
		return true
	}
	id, ok := parseID(event.Name)
	if !ok {
		return true
	}

	var typ core.EventType
	switch {
	case event.Has(fsnotify.Create):
		typ = core.EventCreate
		if w.known[id] {
			typ = core.EventModify
		}
		w.known[id] = true
	case event.Has(fsnotify.Write):
		typ = core.EventModify
		w.known[id] = true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A replaced notes directory reports its old files under the same
		// names; only a file that is really gone counts.
		if _, err := os.Stat(w.repo.notePath(id)); err == nil {
			return true
		}
		typ = core.EventDelete
		delete(w.known, id)
	default:
		return true
	}
	return w.send(ctx, core.Event{Type: typ, ID: id, Timestamp: time.Now().Unix()})
}

// rescan diffs the notes directory against known after it was replaced
// wholesale.
func (w *noteWatcher) rescan(ctx context.Context) bool {
	current, err := w.repo.knownIDs()
	if err != nil {
		w.repo.config.Logger.Error("rescan failed", "error", err)
		return true
	}
	now := time.Now().Unix()
	for id := range w.known {
		if !current[id] {
			if !w.send(ctx, core.Event{Type: core.EventDelete, ID: id, Timestamp: now}) {
				return false
			}
		}
	}
	for id := range current {
		typ := core.EventCreate
		if w.known[id] {
			typ = core.EventModify
		}
		if !w.send(ctx, core.Event{Type: typ, ID: id, Timestamp: now}) {
			return false
		}
	}
	w.known = current
	return true
}

func (w *noteWatcher) send(ctx context.Context, e core.Event) bool {
	w.repo.recordEvent()
	select {
	case w.events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

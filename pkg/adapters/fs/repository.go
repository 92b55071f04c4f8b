// Package fs implements core.Repository on plain files: one Markdown file
// with YAML frontmatter per note, so a store can be read, diffed and synced
// with ordinary tools.
//
// Layout:
//
//	<root>/notes/<id>.md       one note
//	<root>/.jotter/meta.yaml   format version and id counter
package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/jotter/pkg/core"
)

const (
	// DefaultSystemDir holds metadata that is not a note.
	DefaultSystemDir = ".jotter"
	notesDir         = "notes"
	noteExt          = ".md"
	notePattern      = "*" + noteExt
)

// Repository implements core.Repository using the filesystem.
type Repository struct {
	Path   string
	config Config
	cache  *cache

	// mu guards writes and the fields below. Reads take it shared.
	mu            sync.RWMutex
	meta          meta
	initialized   bool
	destroyed     bool
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	SystemDir string // e.g. ".jotter"
	Logger    *slog.Logger
	// ErrorHandler receives failures of the background watcher.
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository. Nothing touches
// the disk until the first call.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		cache:  newCache(),
	}
}

func (r *Repository) notesPath() string { return filepath.Join(r.Path, notesDir) }
func (r *Repository) systemPath() string {
	return filepath.Join(r.Path, r.config.SystemDir)
}
func (r *Repository) metaPath() string { return filepath.Join(r.systemPath(), "meta.yaml") }

func (r *Repository) notePath(id int64) string {
	return filepath.Join(r.notesPath(), strconv.FormatInt(id, 10)+noteExt)
}

// parseID extracts the id from a note file name such as "12.md".
func parseID(name string) (int64, bool) {
	base := filepath.Base(name)
	if isTempFile(base) || !strings.HasSuffix(base, noteExt) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(base, noteExt), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Initialize creates the directory layout and loads meta.yaml.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initLocked()
}

func (r *Repository) initLocked() error {
	if r.destroyed {
		return core.ErrDestroyed
	}
	if r.initialized {
		return nil
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", r.Path)
		}
	}
	for _, dir := range []string{r.notesPath(), r.systemPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	m, found, err := loadMeta(r.metaPath())
	if err != nil {
		return err
	}
	if !found {
		// Existing note files (copied in, or a lost meta.yaml) still bound the counter.
		ids, err := r.discover()
		if err != nil {
			return err
		}
		m = meta{Version: FormatVersion, NextID: 1}
		for _, id := range ids {
			if id >= m.NextID {
				m.NextID = id + 1
			}
		}
		if err := saveMeta(r.metaPath(), m); err != nil {
			return err
		}
	}

	r.meta = m
	r.initialized = true
	r.config.Logger.Debug("file store opened", "path", r.Path, "next_id", m.NextID)
	return nil
}

// readyShared takes the read lock, initializing the store first if needed.
func (r *Repository) readyShared() (release func(), err error) {
	r.mu.RLock()
	if r.destroyed {
		r.mu.RUnlock()
		return nil, core.ErrDestroyed
	}
	if r.initialized {
		return r.mu.RUnlock, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	if err := r.initLocked(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()
	return r.readyShared()
}

// discover lists the ids of all note files.
func (r *Repository) discover() ([]int64, error) {
	matches, err := doublestar.Glob(os.DirFS(r.notesPath()), notePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		if id, ok := parseID(m); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Repository) readNote(path string) (core.Note, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.Note{}, err
	}
	if n, ok := r.cache.Get(path, info); ok {
		return n, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.Note{}, err
	}
	n, err := unmarshalNote(data)
	if err != nil {
		return core.Note{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	// The file name is authoritative for the id.
	if id, ok := parseID(path); ok {
		n.ID = id
	}
	r.cache.Set(path, info, n)
	return n, nil
}

func (r *Repository) writeNote(n core.Note) error {
	data, err := marshalNote(n)
	if err != nil {
		return fmt.Errorf("failed to serialize note %d: %w", n.ID, err)
	}
	path := r.notePath(n.ID)
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	r.cache.Delete(path)
	return nil
}

// Insert stores a new note. A zero ID takes the next counter value.
func (r *Repository) Insert(ctx context.Context, n core.Note) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return 0, err
	}

	if n.ID == 0 {
		n.ID = r.meta.NextID
	}
	if _, err := os.Stat(r.notePath(n.ID)); err == nil {
		return 0, fmt.Errorf("note %d already exists", n.ID)
	}

	if n.ID >= r.meta.NextID {
		next := r.meta
		next.NextID = n.ID + 1
		if err := saveMeta(r.metaPath(), next); err != nil {
			return 0, err
		}
		r.meta = next
	}
	if err := r.writeNote(n); err != nil {
		return 0, err
	}
	return n.ID, nil
}

// Get retrieves a note by its ID.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, error) {
	release, err := r.readyShared()
	if err != nil {
		return core.Note{}, err
	}
	defer release()

	n, err := r.readNote(r.notePath(id))
	if os.IsNotExist(err) {
		return core.Note{}, core.ErrNotFound
	}
	return n, err
}

// List returns all notes, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	release, err := r.readyShared()
	if err != nil {
		return nil, err
	}
	defer release()

	ids, err := r.discover()
	if err != nil {
		return nil, err
	}

	notes := make([]core.Note, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.readNote(r.notePath(id))
		if os.IsNotExist(err) {
			// Removed by another process since discovery.
			continue
		}
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

// Update replaces an existing note file.
func (r *Repository) Update(ctx context.Context, n core.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return err
	}

	if _, err := os.Stat(r.notePath(n.ID)); os.IsNotExist(err) {
		return core.ErrNotFound
	}
	return r.writeNote(n)
}

// Delete removes a note file.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return err
	}

	path := r.notePath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	r.cache.Delete(path)
	return nil
}

// Clear removes every note file. The id counter is kept.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return err
	}

	ids, err := r.discover()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := os.Remove(r.notePath(id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete note %d: %w", id, err)
		}
	}
	r.cache.Reset()
	return nil
}

// ReplaceAll writes notes into a staging directory and swaps it for the
// notes directory. If the swap fails the previous directory is restored.
func (r *Repository) ReplaceAll(ctx context.Context, notes []core.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return err
	}

	next := r.meta
	seen := make(map[int64]bool, len(notes))
	for _, n := range notes {
		if n.ID == 0 {
			continue
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate note id %d", n.ID)
		}
		seen[n.ID] = true
		if n.ID >= next.NextID {
			next.NextID = n.ID + 1
		}
	}

	staging, err := os.MkdirTemp(r.systemPath(), "staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.ID == 0 {
			n.ID = next.NextID
			next.NextID++
		}
		data, err := marshalNote(n)
		if err != nil {
			return fmt.Errorf("failed to serialize note %d: %w", n.ID, err)
		}
		if err := os.WriteFile(filepath.Join(staging, strconv.FormatInt(n.ID, 10)+noteExt), data, 0644); err != nil {
			return fmt.Errorf("failed to stage note %d: %w", n.ID, err)
		}
	}

	backup := staging + ".old"
	if err := os.Rename(r.notesPath(), backup); err != nil {
		return fmt.Errorf("failed to move current notes aside: %w", err)
	}
	if err := os.Rename(staging, r.notesPath()); err != nil {
		if restoreErr := os.Rename(backup, r.notesPath()); restoreErr != nil {
			r.config.Logger.Error("failed to restore notes after aborted replace", "backup", backup, "error", restoreErr)
		}
		return fmt.Errorf("failed to swap in new notes: %w", err)
	}
	if err := os.RemoveAll(backup); err != nil {
		r.config.Logger.Warn("failed to remove replaced notes", "path", backup, "error", err)
	}

	r.cache.Reset()
	if err := saveMeta(r.metaPath(), next); err != nil {
		return err
	}
	r.meta = next
	return nil
}

// Destroy deletes the notes and metadata, and the root if nothing else is
// left in it. Every later call returns core.ErrDestroyed.
func (r *Repository) Destroy(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return core.ErrDestroyed
	}

	for _, dir := range []string{r.notesPath(), r.systemPath()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	_ = os.Remove(r.Path)

	r.cache.Reset()
	r.destroyed = true
	r.config.Logger.Warn("file store destroyed", "path", r.Path)
	return nil
}

// SchemaVersion reports the format version from meta.yaml.
func (r *Repository) SchemaVersion(ctx context.Context) (int, error) {
	release, err := r.readyShared()
	if err != nil {
		return 0, err
	}
	defer release()
	return r.meta.Version, nil
}

// Close is a no-op: no handles stay open between calls.
func (r *Repository) Close() error {
	return nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)

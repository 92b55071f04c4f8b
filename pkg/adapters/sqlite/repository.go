// Package sqlite implements core.Repository on an embedded SQLite database.
//
// The database is opened lazily on first use and migrated to LatestVersion.
// Writes go through a single connection, so goroutines of one process are
// serialized by the driver; other processes wait on the busy timeout.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/jotter/pkg/core"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultBusyTimeout is how long a write waits for another process's lock.
const DefaultBusyTimeout = 5 * time.Second

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path        string
	MustExist   bool
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

// Repository implements core.Repository using SQLite.
type Repository struct {
	config Config

	mu        sync.RWMutex
	db        *sql.DB
	version   int
	destroyed bool
}

// NewRepository creates a new SQLite-backed repository. Nothing is opened
// until the first call.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = DefaultBusyTimeout
	}
	return &Repository{config: config}
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.config.Path
}

func (r *Repository) inMemory() bool {
	return r.config.Path == MemoryPath
}

// Initialize opens the database and migrates the schema.
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.conn(ctx)
	return err
}

// conn returns the open handle, opening and migrating it on first use.
func (r *Repository) conn(ctx context.Context) (*sql.DB, error) {
	r.mu.RLock()
	db, destroyed := r.db, r.destroyed
	r.mu.RUnlock()
	if destroyed {
		return nil, core.ErrDestroyed
	}
	if db != nil {
		return db, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil, core.ErrDestroyed
	}
	if r.db != nil {
		return r.db, nil
	}

	if !r.inMemory() {
		if r.config.MustExist {
			if _, err := os.Stat(r.config.Path); err != nil {
				return nil, fmt.Errorf("database does not exist: %s", r.config.Path)
			}
		} else if err := os.MkdirAll(filepath.Dir(r.config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", r.config.Path, r.config.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	version, err := migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	r.db, r.version = db, version
	r.config.Logger.Debug("sqlite store opened", "path", r.config.Path, "schema_version", version)
	return db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (core.Note, error) {
	var (
		n                core.Note
		created, updated int64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &created, &updated); err != nil {
		return core.Note{}, err
	}
	n.CreatedAt = time.Unix(0, created).UTC()
	n.UpdatedAt = time.Unix(0, updated).UTC()
	n.Tags = []string{}
	return n, nil
}

// encodeTimes converts the timestamps to the stored Unix nanoseconds.
// Values outside core.MinTime..core.MaxTime would wrap, so they are refused.
func encodeTimes(n core.Note) (created, updated int64, err error) {
	for _, t := range []time.Time{n.CreatedAt, n.UpdatedAt} {
		if !core.InTimeRange(t) {
			return 0, 0, fmt.Errorf("timestamp %s cannot be stored", t.Format(time.RFC3339Nano))
		}
	}
	return n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano(), nil
}

const selectNotes = `SELECT id, title, content, created_at, updated_at FROM notes`

// Insert stores a new note. A zero ID lets AUTOINCREMENT pick one.
func (r *Repository) Insert(ctx context.Context, n core.Note) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		var txErr error
		id, txErr = insertNote(ctx, tx, n)
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	return id, nil
}

func insertNote(ctx context.Context, tx *sql.Tx, n core.Note) (int64, error) {
	var id any
	if n.ID != 0 {
		id = n.ID
	}
	created, updated, err := encodeTimes(n)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, n.Title, n.Content, created, updated)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return newID, writeTags(ctx, tx, newID, n.Tags)
}

func writeTags(ctx context.Context, tx *sql.Tx, id int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
		return err
	}
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, position, tag) VALUES (?, ?, ?)`, id, i, tag); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a note by its ID.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return core.Note{}, err
	}

	n, err := scanNote(db.QueryRowContext(ctx, selectNotes+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, core.ErrNotFound
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to read note %d: %w", id, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT tag FROM note_tags WHERE note_id = ? ORDER BY position`, id)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to read tags of note %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return core.Note{}, err
		}
		n.Tags = append(n.Tags, tag)
	}
	return n, rows.Err()
}

// List returns all notes, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectNotes+` ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	notes := []core.Note{}
	index := make(map[int64]int)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[n.ID] = len(notes)
		notes = append(notes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := db.QueryContext(ctx, `SELECT note_id, tag FROM note_tags ORDER BY note_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			id  int64
			tag string
		)
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			notes[i].Tags = append(notes[i].Tags, tag)
		}
	}
	return notes, tagRows.Err()
}

// Update replaces the mutable fields of an existing note.
func (r *Repository) Update(ctx context.Context, n core.Note) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	created, updated, err := encodeTimes(n)
	if err != nil {
		return err
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE notes SET title = ?, content = ?, created_at = ?, updated_at = ? WHERE id = ?`,
			n.Title, n.Content, created, updated, n.ID)
		if err != nil {
			return fmt.Errorf("failed to update note %d: %w", n.ID, err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return core.ErrNotFound
		}
		return writeTags(ctx, tx, n.ID, n.Tags)
	})
}

// Delete removes a note and, through the foreign key, its tags.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Clear removes every note. The AUTOINCREMENT counter is kept, so ids are
// never reused.
func (r *Repository) Clear(ctx context.Context) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return withTx(ctx, db, clearAll(ctx))
}

func clearAll(ctx context.Context) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags`); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		return nil
	}
}

// ReplaceAll clears the store and inserts notes in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, notes []core.Note) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		if err := clearAll(ctx)(tx); err != nil {
			return err
		}
		for i, n := range notes {
			if _, err := insertNote(ctx, tx, n); err != nil {
				return fmt.Errorf("failed to insert note %d of %d: %w", i+1, len(notes), err)
			}
		}
		return nil
	})
}

// Destroy closes the database and deletes its files. Every later call
// returns core.ErrDestroyed.
func (r *Repository) Destroy(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return core.ErrDestroyed
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		r.db = nil
	}

	if !r.inMemory() {
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			if err := os.Remove(r.config.Path + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", r.config.Path+suffix, err)
			}
		}
	}

	r.destroyed = true
	r.config.Logger.Warn("sqlite store destroyed", "path", r.config.Path)
	return nil
}

// SchemaVersion reports PRAGMA user_version.
func (r *Repository) SchemaVersion(ctx context.Context) (int, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	return userVersion(ctx, db)
}

// Close releases the handle. The next call reopens it.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

var _ core.Repository = (*Repository)(nil)

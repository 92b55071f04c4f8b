package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage engine (SQLite, plain files, etc).
//
// Implementations report a missing record with ErrNotFound and a torn-down
// store with ErrDestroyed. Any other error is a substrate failure.
type Repository interface {
	// Initialize opens the store and migrates its schema to the current
	// version. Implementations may defer opening until the first call.
	Initialize(ctx context.Context) error

	// Insert stores a new note. A zero ID is assigned by the substrate;
	// a non-zero ID is kept as given (used by import).
	Insert(ctx context.Context, n Note) (int64, error)

	// Get retrieves a note by its ID.
	Get(ctx context.Context, id int64) (Note, error)

	// List returns all notes, most recently updated first (ties: higher ID first).
	List(ctx context.Context) ([]Note, error)

	// Update replaces the mutable fields of an existing note.
	Update(ctx context.Context, n Note) error

	// Delete removes a note. Zero removed rows is ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Clear removes every note and keeps the schema. It cannot be undone.
	Clear(ctx context.Context) error

	// ReplaceAll clears the store and inserts notes as one atomic unit: on
	// failure the previous contents survive.
	ReplaceAll(ctx context.Context, notes []Note) error

	// Destroy deletes the whole store. It cannot be undone, and every later
	// call fails with ErrDestroyed.
	Destroy(ctx context.Context) error

	// SchemaVersion reports the schema version persisted with the data.
	SchemaVersion(ctx context.Context) (int, error)

	// Close releases the handle without touching the data.
	Close() error
}

// Watchable is implemented by repositories that can observe changes made to
// the shared store, including changes from other processes.
type Watchable interface {
	// Watch streams change events until ctx is done. The channel is closed
	// when watching stops.
	Watch(ctx context.Context) (<-chan Event, error)
}

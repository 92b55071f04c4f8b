package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; migrations[i] moves the schema from
// version i to i+1. Steps are additive so existing rows survive a bump.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT    NOT NULL,
		content    TEXT    NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title);
	CREATE INDEX IF NOT EXISTS idx_notes_content ON notes(content);
	CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);
	CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);`,

	`CREATE TABLE IF NOT EXISTS note_tags (
		note_id  INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tag      TEXT    NOT NULL,
		PRIMARY KEY (note_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag);`,
}

// LatestVersion is the version a freshly migrated store reports.
var LatestVersion = len(migrations)

func userVersion(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}) (int, error) {
	var v int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// migrate brings db up to LatestVersion. Each step runs in its own
// transaction together with the version bump.
func migrate(ctx context.Context, db *sql.DB) (int, error) {
	current, err := userVersion(ctx, db)
	if err != nil {
		return 0, err
	}
	if current > len(migrations) {
		return current, fmt.Errorf("schema version %d is newer than supported version %d", current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return v, fmt.Errorf("failed to begin migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			_ = tx.Rollback()
			return v, fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			_ = tx.Rollback()
			return v, fmt.Errorf("failed to record schema version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return v, fmt.Errorf("failed to commit migration %d: %w", v+1, err)
		}
	}
	return len(migrations), nil
}

package jotter

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/validation"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Note is a public alias for the stored note.
type Note = core.Note

// Service is a public alias for the notes service.
type Service = core.Service

// --- Configuration ---

// Adapter names.
const (
	AdapterSQLite = platform.AdapterSQLite
	AdapterFS     = platform.AdapterFS
)

// Option defines a functional option for configuring jotter.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("sqlite" or "fs").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithClock replaces the time source used to stamp notes.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithLimits overrides the field limits.
func WithLimits(limits validation.Limits) Option {
	return platform.WithLimits(limits)
}

// WithEventBuffer allows specifying the size of the watch buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the store must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the temp-dir sandbox applied under go run/test.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithSystemDir sets the hidden directory name of the fs adapter (e.g. ".jotter").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithBusyTimeout sets the sqlite lock wait.
func WithBusyTimeout(d time.Duration) Option {
	return platform.WithBusyTimeout(d)
}

// WithWatcherErrorHandler receives failures of the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a new jotter Service.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// Open returns the process-wide shared service for a store.
func Open(path string, opts ...Option) (*core.Service, error) {
	return platform.Open(path, opts...)
}

// Release closes the shared service for a store without touching its data.
func Release(path string, opts ...Option) error {
	return platform.Release(path, opts...)
}

// Destroy deletes a store for good.
func Destroy(ctx context.Context, path string, opts ...Option) error {
	return platform.Destroy(ctx, path, opts...)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual path for the store based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a store root indicator.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

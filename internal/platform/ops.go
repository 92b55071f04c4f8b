package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// DefaultDatabaseName is used when the sqlite adapter is given a directory.
const DefaultDatabaseName = "jotter.db"

// Init opens the store named by uri and migrates it to the current schema.
// The 'uri' argument is adapter-specific: a database file (or directory) for
// 'sqlite', a store directory for 'fs'.
//
// It returns the configured core.Repository.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := parseOptions(opts)

	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterSQLite:
		repo = initSQLite(uri, o)
	case AdapterFS:
		repo = initFS(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// ResolvePath reports where uri ends up for the configured adapter, after
// the development sandbox is applied.
func ResolvePath(uri string, opts ...Option) string {
	return resolvePath(uri, parseOptions(opts))
}

func resolvePath(uri string, o *options) string {
	if o.adapter == AdapterSQLite {
		if uri == sqlite.MemoryPath {
			return uri
		}
		if uri == "" || !hasDatabaseExt(uri) {
			uri = filepath.Join(uri, DefaultDatabaseName)
		}
	}

	useTemp := o.forceTemp || (o.devSafety && IsDevRun())
	return ResolveStorePath(uri, useTemp)
}

func hasDatabaseExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// initSQLite handles the initialization logic for the SQLite adapter.
func initSQLite(uri string, o *options) core.Repository {
	path := resolvePath(uri, o)
	o.log().Debug("opening sqlite store", "path", path)

	return sqlite.NewRepository(sqlite.Config{
		Path:        path,
		MustExist:   o.mustExist,
		BusyTimeout: o.busyTimeout,
		Logger:      o.logger,
	})
}

// initFS handles the initialization logic for the Filesystem adapter.
func initFS(uri string, o *options) core.Repository {
	path := resolvePath(uri, o)
	o.log().Debug("opening fs store", "path", path)

	return fs.NewRepository(fs.Config{
		Path:         path,
		MustExist:    o.mustExist,
		SystemDir:    o.systemDir,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
}

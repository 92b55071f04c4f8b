package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/validation"
)

func TestInit_SQLite(t *testing.T) {
	t.Run("Directory Gets Default File", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "store")
		repo, err := Init(dir)
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })

		sq, ok := repo.(*sqlite.Repository)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, DefaultDatabaseName), sq.Path())
		_, err = os.Stat(sq.Path())
		assert.NoError(t, err)
	})

	t.Run("Explicit File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mine.sqlite")
		repo, err := Init(path, WithAdapter(AdapterSQLite))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		assert.Equal(t, path, repo.(*sqlite.Repository).Path())
	})

	t.Run("MustExist", func(t *testing.T) {
		_, err := Init(filepath.Join(t.TempDir(), "missing.db"), WithMustExist(true))
		assert.Error(t, err)
	})
}

func TestInit_FS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	repo, err := Init(dir, WithAdapter(AdapterFS), WithSystemDir(".meta"))
	require.NoError(t, err)

	_, ok := repo.(*fs.Repository)
	require.True(t, ok)
	_, err = os.Stat(filepath.Join(dir, ".meta"))
	assert.NoError(t, err)
}

func TestInit_UnknownAdapter(t *testing.T) {
	_, err := Init(t.TempDir(), WithAdapter("redis"))
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestResolvePath(t *testing.T) {
	t.Run("Sandbox Reroots Outside Paths", func(t *testing.T) {
		got := ResolvePath("/srv/notes/work.db", WithForceTemp(true))
		assert.Equal(t, filepath.Join(os.TempDir(), "jotter-dev", "work.db"), got)
	})

	t.Run("Paths Inside Temp Are Trusted", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, filepath.Join(dir, "a.db"), ResolvePath(filepath.Join(dir, "a.db")))
	})

	t.Run("Memory Is Untouched", func(t *testing.T) {
		assert.Equal(t, sqlite.MemoryPath, ResolvePath(sqlite.MemoryPath, WithForceTemp(true)))
	})

	t.Run("Safety Disabled", func(t *testing.T) {
		got := ResolvePath("notes", WithAdapter(AdapterFS), WithDevSafety(false))
		assert.Equal(t, "notes", got)
	})
}

func TestNew_WiresServiceOptions(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	svc, err := New(sqlite.MemoryPath,
		WithClock(func() time.Time { return at }),
		WithLimits(validation.Limits{TitleMax: 5}),
		WithEventBuffer(7),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	ctx := context.Background()

	_, err = svc.Create(ctx, core.Draft{Title: "too long", Content: "x"})
	assert.ErrorIs(t, err, core.ErrValidation)

	id, err := svc.Create(ctx, core.Draft{Title: "ok", Content: "x"})
	require.NoError(t, err)
	n, _, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, n.CreatedAt.Equal(at))

	st := svc.State().(core.ServiceState)
	assert.Equal(t, 7, st.EventBufferSize)
	assert.Equal(t, "sqlite", st.RepositoryType)
}

func TestNew_InjectedRepository(t *testing.T) {
	inner, err := Init(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inner.Close() })

	svc, err := New("ignored", WithRepository(inner))
	require.NoError(t, err)
	assert.Same(t, inner, svc.Repository())
}

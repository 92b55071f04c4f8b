package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/core"
)

func seedTransfer(t *testing.T) (*core.Service, *Clock) {
	t.Helper()
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	for _, d := range []core.Draft{
		{Title: "One", Content: "first", Tags: []string{"a"}},
		{Title: "Two", Content: "second", Tags: []string{"b", "работа"}},
		{Title: "Three", Content: "third"},
	} {
		_, err := svc.Create(ctx, d)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	return svc, clock
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []core.Format{core.FormatJSON, core.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			svc, _ := seedTransfer(t)
			ctx := context.Background()

			before, err := svc.List(ctx)
			require.NoError(t, err)

			data, err := svc.Export(ctx, format)
			require.NoError(t, err)

			require.NoError(t, svc.Clear(ctx))
			_, _ = svc.Create(ctx, core.Draft{Title: "stray", Content: "replaced by import"})

			count, err := svc.Import(ctx, data, format)
			require.NoError(t, err)
			assert.Equal(t, len(before), count)

			after, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, after, len(before))
			for i := range before {
				assert.Equal(t, before[i].ID, after[i].ID)
				assert.Equal(t, before[i].Title, after[i].Title)
				assert.Equal(t, before[i].Content, after[i].Content)
				assert.Equal(t, before[i].Tags, after[i].Tags)
				assert.True(t, before[i].CreatedAt.Equal(after[i].CreatedAt))
				assert.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt))
			}
		})
	}
}

func TestExport_Envelope(t *testing.T) {
	svc, clock := seedTransfer(t)

	data, err := svc.Export(context.Background(), core.FormatJSON)
	require.NoError(t, err)

	var env core.ExportData
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, core.ExportVersion, env.Version)
	assert.Equal(t, 3, env.Metadata.TotalNotes)
	assert.Equal(t, "jotter", env.Metadata.ExportedBy)
	assert.True(t, env.ExportedAt.Equal(clock.Now()))
	assert.Contains(t, string(data), `"createdAt"`)
}

func TestImport_BareList(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	payload := `[
		{"id": 5, "title": " Kept ", "content": "body", "tags": ["Work", "work"],
		 "createdAt": "2023-01-02T03:04:05Z", "updatedAt": "2023-01-03T03:04:05Z"},
		{"title": "No id", "content": "stamped now"},
		{"id": 8, "title": "Only updated", "content": "c", "updatedAt": "2020-01-01T00:00:00Z"},
		{"id": 9, "title": "Only created", "content": "c", "created_at": "2021-06-01T12:00:00Z"}
	]`
	count, err := svc.Import(ctx, []byte(payload), core.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// A lone timestamp stands for both.
	onlyUpdated, _, err := svc.Get(ctx, 8)
	require.NoError(t, err)
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, onlyUpdated.CreatedAt.Equal(want))
	assert.True(t, onlyUpdated.UpdatedAt.Equal(want))

	onlyCreated, _, err := svc.Get(ctx, 9)
	require.NoError(t, err)
	want = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, onlyCreated.CreatedAt.Equal(want))
	assert.True(t, onlyCreated.UpdatedAt.Equal(want))

	kept, found, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Kept", kept.Title)
	assert.Equal(t, []string{"work"}, kept.Tags)
	assert.True(t, kept.CreatedAt.Equal(time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)))

	notes, err := svc.Search(ctx, core.SearchOptions{Query: "stamped"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.NotEqual(t, int64(5), notes[0].ID)
	assert.True(t, notes[0].CreatedAt.Equal(clock.Now()))
}

func TestImport_YAMLSnakeCase(t *testing.T) {
	svc, _, _ := newTestService(t)

	payload := `
version: "1.0"
notes:
  - id: 3
    title: From YAML
    content: body
    tags: [x]
    created_at: 2024-05-01T10:00:00Z
    updated_at: 2024-05-01T11:00:00Z
`
	count, err := svc.Import(context.Background(), []byte(payload), core.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	n, found, _ := svc.Get(context.Background(), 3)
	require.True(t, found)
	assert.True(t, n.UpdatedAt.Equal(time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)))
}

func TestImport_RejectsWithoutTouchingStore(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		index   int
		invalid bool
	}{
		{name: "Unparseable", payload: `{not json`, index: -1},
		{name: "Wrong Shape", payload: `"just a string"`, index: -1},
		{name: "Envelope Without Notes", payload: `{"version": "1.0"}`, index: -1},
		{name: "Record Not Object", payload: `[{"title":"ok","content":"ok"}, 3]`, index: 1},
		{name: "Empty Title", payload: `[{"title":"ok","content":"ok"}, {"title":" ","content":"x"}]`, index: 1, invalid: true},
		{name: "Tags Not List", payload: `[{"title":"t","content":"c","tags":"a, b"}]`, index: 0, invalid: true},
		{name: "Tag Not String", payload: `[{"title":"t","content":"c","tags":["a", 1]}]`, index: 0, invalid: true},
		{name: "Title Not String", payload: `[{"title":5,"content":"c"}]`, index: 0, invalid: true},
		{name: "Bad Timestamp", payload: `[{"title":"t","content":"c","createdAt":"yesterday"}]`, index: 0},
		{name: "Created Before 1677", payload: `[{"title":"t","content":"c","createdAt":"1500-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`, index: 0},
		{name: "Updated After 2262", payload: `[{"title":"t","content":"c","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2400-01-01T00:00:00Z"}]`, index: 0},
		{name: "Updated Before Created", payload: `[{"title":"t","content":"c","createdAt":"2024-01-02T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`, index: 0},
		{name: "Duplicate IDs", payload: `[{"id":1,"title":"t","content":"c"},{"id":1,"title":"u","content":"d"}]`, index: 1},
		{name: "Fractional ID", payload: `[{"id":1.5,"title":"t","content":"c"}]`, index: 0},
		{name: "Negative ID", payload: `[{"id":-1,"title":"t","content":"c"}]`, index: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := seedTransfer(t)
			ctx := context.Background()
			before, _ := svc.List(ctx)

			_, err := svc.Import(ctx, []byte(tt.payload), core.FormatJSON)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrImportFormat))

			var ierr *core.ImportFormatError
			require.True(t, errors.As(err, &ierr))
			assert.Equal(t, tt.index, ierr.Index)
			assert.Equal(t, tt.invalid, errors.Is(err, core.ErrValidation))

			after, _ := svc.List(ctx)
			assert.Equal(t, before, after)
		})
	}
}

func TestImport_EmptyEnvelopeClears(t *testing.T) {
	svc, _ := seedTransfer(t)

	count, err := svc.Import(context.Background(), []byte(`{"version":"1.0","notes":[]}`), core.FormatJSON)
	require.NoError(t, err)
	assert.Zero(t, count)

	notes, _ := svc.List(context.Background())
	assert.Empty(t, notes)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    core.Format
		wantErr bool
	}{
		{in: "", want: core.FormatJSON},
		{in: "JSON", want: core.FormatJSON},
		{in: "yml", want: core.FormatYAML},
		{in: "backup/notes.yaml", want: core.FormatYAML},
		{in: "notes.json", want: core.FormatJSON},
		{in: "csv", wantErr: true},
	}
	for _, tt := range tests {
		got, err := core.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

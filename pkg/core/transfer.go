package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/normalize"
	"github.com/aretw0/jotter/pkg/validation"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1.0"

// Format is a serialization format for Export and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name ("json", "yaml", "yml") or a file name
// with one of those extensions. An empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(v); ext != "" {
		v = strings.TrimPrefix(ext, ".")
	}
	switch v {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ExportData is the export envelope.
type ExportData struct {
	Version    string         `json:"version" yaml:"version"`
	ExportedAt time.Time      `json:"exportedAt" yaml:"exported_at"`
	Notes      []Note         `json:"notes" yaml:"notes"`
	Metadata   ExportMetadata `json:"metadata" yaml:"metadata"`
}

// ExportMetadata describes an export.
type ExportMetadata struct {
	TotalNotes int    `json:"totalNotes" yaml:"total_notes"`
	ExportedBy string `json:"exportedBy" yaml:"exported_by"`
}

// Export serializes every note into an envelope. It does not modify the store.
func (s *Service) Export(ctx context.Context, format Format) ([]byte, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("export", err)
	}

	env := ExportData{
		Version:    ExportVersion,
		ExportedAt: s.stamp(),
		Notes:      notes,
		Metadata: ExportMetadata{
			TotalNotes: len(notes),
			ExportedBy: "jotter",
		},
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(env)
	case FormatJSON, "":
		return json.MarshalIndent(env, "", "  ")
	}
	return nil, fmt.Errorf("export: unknown format %q", format)
}

// Import replaces the whole store with the notes in data. data is either an
// export envelope or a bare list of notes.
//
// Every record is checked before the store is touched; a single bad record
// rejects the whole payload with an *ImportFormatError and nothing changes.
// Ids and timestamps in the payload are kept. A record with only one
// timestamp uses it for both; one with neither is stamped with the current
// time. Missing ids are assigned by the store.
func (s *Service) Import(ctx context.Context, data []byte, format Format) (int, error) {
	records, err := decodePayload(data, format)
	if err != nil {
		return 0, &ImportFormatError{Index: -1, Err: err}
	}

	now := s.stamp()
	notes := make([]Note, 0, len(records))
	seen := make(map[int64]int, len(records))
	for i, rec := range records {
		n, err := s.importRecord(rec, now)
		if err != nil {
			return 0, &ImportFormatError{Index: i, Err: err}
		}
		if n.ID != 0 {
			if first, dup := seen[n.ID]; dup {
				return 0, &ImportFormatError{Index: i, Err: fmt.Errorf("duplicate id %d (also record %d)", n.ID, first)}
			}
			seen[n.ID] = i
		}
		notes = append(notes, n)
	}

	// Explicit ids go in first so assigned ones cannot collide with them.
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].ID != 0 && notes[j].ID == 0
	})

	s.logger.Warn("replacing all notes from import", "count", len(notes))
	if err := s.repo.ReplaceAll(ctx, notes); err != nil {
		return 0, s.storageError("import", err)
	}
	return len(notes), nil
}

func decodePayload(data []byte, format Format) ([]any, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		notes, ok := v["notes"]
		if !ok {
			return nil, errors.New(`envelope has no "notes" field`)
		}
		if notes == nil {
			return nil, nil
		}
		list, ok := notes.([]any)
		if !ok {
			return nil, errors.New(`"notes" must be a list`)
		}
		return list, nil
	}
	return nil, errors.New("payload must be a list of notes or an export envelope")
}

// importRecord validates one decoded record with the full-note rules and
// returns it normalized.
func (s *Service) importRecord(rec any, now time.Time) (Note, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return Note{}, errors.New("record must be an object")
	}

	title, titleRes := stringField(m, validation.FieldTitle, s.validator.ValidateTitle)
	content, contentRes := stringField(m, validation.FieldContent, s.validator.ValidateContent)

	tags, tagsRes, err := s.validator.ValidateTagValues(m["tags"])
	if err != nil {
		tagsRes = validation.Result{Errors: []string{err.Error()}}
	}
	if verr := buildValidationError(titleRes, contentRes, tagsRes); verr != nil {
		return Note{}, verr
	}

	id, err := idField(m["id"])
	if err != nil {
		return Note{}, err
	}
	created, hasCreated, err := timeField(m, "createdAt", "created_at")
	if err != nil {
		return Note{}, err
	}
	updated, hasUpdated, err := timeField(m, "updatedAt", "updated_at")
	if err != nil {
		return Note{}, err
	}
	switch {
	case !hasCreated && !hasUpdated:
		created, updated = now, now
	case !hasCreated:
		created = updated
	case !hasUpdated:
		updated = created
	}
	if updated.Before(created) {
		return Note{}, errors.New("updatedAt precedes createdAt")
	}

	return Note{
		ID:        id,
		Title:     normalize.Title(title),
		Content:   normalize.Content(content),
		Tags:      normalize.TagList(tags),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func stringField(m map[string]any, key string, check func(string) validation.Result) (string, validation.Result) {
	raw, present := m[key]
	if !present || raw == nil {
		return "", check("")
	}
	str, ok := raw.(string)
	if !ok {
		return "", validation.Result{Errors: []string{key + " must be a string"}}
	}
	return str, check(str)
}

func idField(v any) (int64, error) {
	var id int64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		id = int64(x)
	case int64:
		id = x
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("id %d out of range", x)
		}
		id = int64(x)
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 {
			return 0, fmt.Errorf("id %v is not an integer", x)
		}
		id = int64(x)
	default:
		return 0, fmt.Errorf("id must be a number, got %T", v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %d must be positive", id)
	}
	return id, nil
}

// timeField reads the first present key as a timestamp. found is false when
// none of the keys is set.
func timeField(m map[string]any, keys ...string) (t time.Time, found bool, err error) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			continue
		case time.Time:
			t = v.UTC()
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("%s: %w", k, err)
			}
			t = parsed.UTC()
		default:
			return time.Time{}, false, fmt.Errorf("%s must be an RFC 3339 timestamp, got %T", k, v)
		}
		if !InTimeRange(t) {
			return time.Time{}, false, fmt.Errorf("%s %s is outside %s to %s",
				k, t.Format(time.RFC3339), MinTime.Format(time.RFC3339), MaxTime.Format(time.RFC3339))
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}

package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/normalize"
	"github.com/aretw0/jotter/pkg/validation"
)

// Service handles the business logic for notes.
//
// Every mutation runs validate -> normalize -> stamp -> write. Timestamps are
// stamped here and nowhere else; drafts and patches carry none.
type Service struct {
	repo            Repository
	logger          *slog.Logger
	now             func() time.Time
	validator       *validation.Validator
	eventBufferSize int

	mu       sync.RWMutex
	watchers int
}

// NewService creates a new Service on top of repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
		validator:       validation.New(validation.DefaultLimits()),
		eventBufferSize: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// Limits returns the field limits in effect.
func (s *Service) Limits() validation.Limits {
	return s.validator.Limits()
}

// stamp returns the current time in UTC without a monotonic reading, so
// values compare equal after a round trip through storage.
func (s *Service) stamp() time.Time {
	return s.now().UTC()
}

// storageError logs a substrate failure and wraps it for the caller.
func (s *Service) storageError(op string, err error) error {
	s.logger.Error("storage operation failed", "op", op, "error", err)
	return &StorageError{Op: op, Err: err}
}

// Create validates and stores a new note and returns its id.
func (s *Service) Create(ctx context.Context, d Draft) (int64, error) {
	if verr := s.validateDraft(d); verr != nil {
		return 0, verr
	}

	now := s.stamp()
	n := Note{
		Title:     normalize.Title(d.Title),
		Content:   normalize.Content(d.Content),
		Tags:      normalize.TagList(d.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, n)
	if err != nil {
		return 0, s.storageError("create", err)
	}

	s.logger.Debug("note created", "id", id)
	return id, nil
}

// List returns every note, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("list", err)
	}
	return notes, nil
}

// Get returns the note with the given id. Absence is reported through the
// boolean, not as an error.
func (s *Service) Get(ctx context.Context, id int64) (Note, bool, error) {
	n, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, s.storageError("get", err)
	}
	return n, true, nil
}

// Update applies a partial update. Only the fields present in p are
// validated and replaced; UpdatedAt is always refreshed. Either every
// provided field is written or none is.
func (s *Service) Update(ctx context.Context, id int64, p Patch) error {
	existing, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return s.storageError("update", err)
	}

	if verr := s.validatePatch(p); verr != nil {
		return verr
	}

	updated := existing
	if p.Title != nil {
		updated.Title = normalize.Title(*p.Title)
	}
	if p.Content != nil {
		updated.Content = normalize.Content(*p.Content)
	}
	if p.Tags != nil {
		updated.Tags = normalize.TagList(*p.Tags)
	}

	now := s.stamp()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	updated.UpdatedAt = now

	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return s.storageError("update", err)
	}

	s.logger.Debug("note updated", "id", id)
	return nil
}

// Delete removes a note. Removing nothing is a NotFoundError.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return s.storageError("delete", err)
	}
	s.logger.Debug("note deleted", "id", id)
	return nil
}

// AllTags returns every distinct tag in ascending order.
func (s *Service) AllTags(ctx context.Context) ([]string, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("tags", err)
	}
	return distinctTags(notes), nil
}

// Stats summarizes the store. On an empty store every figure is zero and
// LastUpdated is nil.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, s.storageError("stats", err)
	}
	if len(notes) == 0 {
		return Stats{}, nil
	}

	st := Stats{
		TotalNotes: len(notes),
		TotalTags:  len(distinctTags(notes)),
	}
	if st.TotalTags > 0 {
		st.AverageNotesPerTag = float64(st.TotalNotes) / float64(st.TotalTags)
	}

	last := notes[0].UpdatedAt
	for _, n := range notes[1:] {
		if n.UpdatedAt.After(last) {
			last = n.UpdatedAt
		}
	}
	st.LastUpdated = &last
	return st, nil
}

// Clear removes every note. It cannot be undone.
func (s *Service) Clear(ctx context.Context) error {
	s.logger.Warn("clearing all notes")
	if err := s.repo.Clear(ctx); err != nil {
		return s.storageError("clear", err)
	}
	return nil
}

// Destroy deletes the store entirely. It cannot be undone; the service is
// unusable afterwards.
func (s *Service) Destroy(ctx context.Context) error {
	s.logger.Warn("destroying note store")
	if err := s.repo.Destroy(ctx); err != nil {
		return s.storageError("destroy", err)
	}
	return nil
}

// SchemaVersion reports the version persisted by the substrate.
func (s *Service) SchemaVersion(ctx context.Context) (int, error) {
	v, err := s.repo.SchemaVersion(ctx)
	if err != nil {
		return 0, s.storageError("schema version", err)
	}
	return v, nil
}

// Close releases the underlying store handle. The data is untouched.
func (s *Service) Close() error {
	return s.repo.Close()
}

// Watch streams change events when the repository supports it. Events are
// buffered so a slow consumer does not stall the repository's watcher.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrNotSupported
	}

	upstream, err := w.Watch(ctx)
	if err != nil {
		return nil, s.storageError("watch", err)
	}

	out := make(chan Event, s.eventBufferSize)
	s.mu.Lock()
	s.watchers++
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.watchers--
			s.mu.Unlock()
			close(out)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-upstream:
				if !ok {
					return
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Service) validateDraft(d Draft) error {
	return buildValidationError(
		s.validator.ValidateTitle(d.Title),
		s.validator.ValidateContent(d.Content),
		s.validator.ValidateTagList(d.Tags),
	)
}

func (s *Service) validatePatch(p Patch) error {
	valid := validation.Result{Valid: true}
	title, content, tags := valid, valid, valid
	if p.Title != nil {
		title = s.validator.ValidateTitle(*p.Title)
	}
	if p.Content != nil {
		content = s.validator.ValidateContent(*p.Content)
	}
	if p.Tags != nil {
		tags = s.validator.ValidateTagList(*p.Tags)
	}
	return buildValidationError(title, content, tags)
}

// buildValidationError folds per-field results into a *ValidationError, or
// returns nil when every field passed.
func buildValidationError(title, content, tags validation.Result) error {
	verr := &ValidationError{Fields: make(map[string]string)}
	for _, f := range []struct {
		name string
		res  validation.Result
	}{
		{validation.FieldTitle, title},
		{validation.FieldContent, content},
		{validation.FieldTags, tags},
	} {
		if f.res.Valid {
			continue
		}
		verr.Fields[f.name] = f.res.Errors[0]
		verr.Problems = append(verr.Problems, f.res.Errors...)
	}
	if len(verr.Problems) == 0 {
		return nil
	}
	return verr
}

func distinctTags(notes []Note) []string {
	set := make(map[string]struct{})
	for _, n := range notes {
		for _, t := range n.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

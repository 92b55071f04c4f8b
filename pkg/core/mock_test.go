package core_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

// MemoryRepository implements core.Repository in memory.
// It does NOT implement core.Watchable; see WatchableRepository.
type MemoryRepository struct {
	mu        sync.Mutex
	notes     map[int64]core.Note
	next      int64
	destroyed bool

	// Fail makes every call return this error, simulating a broken substrate.
	Fail error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: make(map[int64]core.Note), next: 1}
}

func (m *MemoryRepository) check() error {
	if m.destroyed {
		return core.ErrDestroyed
	}
	return m.Fail
}

func clone(n core.Note) core.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

func (m *MemoryRepository) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check()
}

func (m *MemoryRepository) Insert(ctx context.Context, n core.Note) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return 0, err
	}
	if n.ID == 0 {
		n.ID = m.next
	}
	if n.ID >= m.next {
		m.next = n.ID + 1
	}
	m.notes[n.ID] = clone(n)
	return n.ID, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return core.Note{}, err
	}
	n, ok := m.notes[id]
	if !ok {
		return core.Note{}, core.ErrNotFound
	}
	return clone(n), nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return nil, err
	}
	notes := make([]core.Note, 0, len(m.notes))
	for _, n := range m.notes {
		notes = append(notes, clone(n))
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (m *MemoryRepository) Update(ctx context.Context, n core.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, ok := m.notes[n.ID]; !ok {
		return core.ErrNotFound
	}
	m.notes[n.ID] = clone(n)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	if _, ok := m.notes[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *MemoryRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.notes = make(map[int64]core.Note)
	return nil
}

func (m *MemoryRepository) ReplaceAll(ctx context.Context, notes []core.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	fresh := make(map[int64]core.Note, len(notes))
	next := m.next
	for _, n := range notes {
		if n.ID == 0 {
			n.ID = next
		}
		if n.ID >= next {
			next = n.ID + 1
		}
		fresh[n.ID] = clone(n)
	}
	m.notes, m.next = fresh, next
	return nil
}

func (m *MemoryRepository) Destroy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.notes = nil
	m.destroyed = true
	return nil
}

func (m *MemoryRepository) SchemaVersion(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return 1, m.check()
}

func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

// WatchableRepository adds a hand-fed event stream.
type WatchableRepository struct {
	*MemoryRepository
	Events chan core.Event
}

func (w *WatchableRepository) Watch(ctx context.Context) (<-chan core.Event, error) {
	return w.Events, nil
}

// Clock is a controllable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

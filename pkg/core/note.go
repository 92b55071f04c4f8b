// Package core holds the notes domain: the Note entity, the Repository port,
// and the Service that validates, normalizes, and stamps every write.
package core

import (
	"math"
	"time"

	"github.com/aretw0/jotter/pkg/normalize"
)

// Note is the only persisted entity.
type Note struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Tags      []string  `json:"tags" yaml:"tags"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Stored timestamps must lie in [MinTime, MaxTime]: the span of int64
// nanoseconds around the Unix epoch (1677 to 2262).
var (
	MinTime = time.Unix(0, math.MinInt64).UTC()
	MaxTime = time.Unix(0, math.MaxInt64).UTC()
)

// InTimeRange reports whether t can be stored.
func InTimeRange(t time.Time) bool {
	return !t.Before(MinTime) && !t.After(MaxTime)
}

// HasTag reports whether the note carries tag, ignoring case and surrounding
// whitespace. Tags are stored lowercase.
func (n Note) HasTag(tag string) bool {
	want := normalize.Tag(tag)
	for _, t := range n.Tags {
		if t == want {
			return true
		}
	}
	return false
}

// Draft is caller input for a new note. It is validated before anything is
// stored.
type Draft struct {
	Title   string
	Content string
	Tags    []string
}

// Patch is a partial update. A nil field leaves the stored value untouched;
// a non-nil field replaces it after validation. A non-nil empty Tags clears
// the tags.
type Patch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// IsEmpty reports whether the patch names no field.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

// Stats summarizes the store.
type Stats struct {
	TotalNotes         int        `json:"totalNotes"`
	TotalTags          int        `json:"totalTags"`
	AverageNotesPerTag float64    `json:"averageNotesPerTag"`
	LastUpdated        *time.Time `json:"lastUpdated"`
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change observed in the store, possibly made by another
// process sharing it.
type Event struct {
	Type      EventType
	ID        int64
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + formatID(e.ID)
}

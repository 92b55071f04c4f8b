package core

import (
	"cmp"
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aretw0/jotter/pkg/normalize"
)

// MatchMode selects which fields a text query is matched against.
type MatchMode string

const (
	// MatchTitleContent matches the query against title and content.
	MatchTitleContent MatchMode = "title_content"
	// MatchIncludeTags also matches when any tag contains the query.
	MatchIncludeTags MatchMode = "include_tags"
)

// SortKey names the field results are ordered by.
type SortKey string

const (
	SortUpdatedAt SortKey = "updated_at"
	SortCreatedAt SortKey = "created_at"
	SortTitle     SortKey = "title"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderDesc SortOrder = "desc"
	OrderAsc  SortOrder = "asc"
)

// SearchOptions narrows and orders a Search. The zero value returns every
// note, most recently updated first.
type SearchOptions struct {
	Query string
	// Tags keeps notes carrying any of the given tags.
	Tags   []string
	Limit  int // <= 0 means unlimited
	Offset int
	Mode   MatchMode
	SortBy SortKey
	Order  SortOrder
}

// ParseMatchMode maps a config or flag value to a MatchMode. Unknown values
// fall back to MatchTitleContent.
func ParseMatchMode(s string) MatchMode {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchIncludeTags, "tags":
		return MatchIncludeTags
	default:
		return MatchTitleContent
	}
}

// Search filters, orders and paginates notes. Text and tag filters compose
// with AND; within the tag filter any requested tag matches.
func (s *Service) Search(ctx context.Context, opts SearchOptions) ([]Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("search", err)
	}

	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(opts.Query))
	wanted := normalize.TagList(opts.Tags)

	matched := make([]Note, 0, len(notes))
	for _, n := range notes {
		if query != "" && !matchesText(fold, n, query, opts.Mode) {
			continue
		}
		if len(wanted) > 0 && !hasAnyTag(n, wanted) {
			continue
		}
		matched = append(matched, n)
	}

	sortNotes(matched, opts.SortBy, opts.Order)
	return paginate(matched, opts.Offset, opts.Limit), nil
}

func matchesText(fold cases.Caser, n Note, query string, mode MatchMode) bool {
	if strings.Contains(fold.String(n.Title), query) || strings.Contains(fold.String(n.Content), query) {
		return true
	}
	if mode != MatchIncludeTags {
		return false
	}
	for _, t := range n.Tags {
		if strings.Contains(fold.String(t), query) {
			return true
		}
	}
	return false
}

func hasAnyTag(n Note, wanted []string) bool {
	for _, w := range wanted {
		if n.HasTag(w) {
			return true
		}
	}
	return false
}

// sortNotes orders in place. Ties always break on id, in the same direction
// as the requested order.
func sortNotes(notes []Note, key SortKey, order SortOrder) {
	lower := cases.Lower(language.Und)
	sign := -1
	if order == OrderAsc {
		sign = 1
	}

	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		var c int
		switch key {
		case SortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case SortTitle:
			c = strings.Compare(lower.String(a.Title), lower.String(b.Title))
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c*sign < 0
	})
}

func paginate(notes []Note, offset, limit int) []Note {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(notes) {
		return []Note{}
	}
	notes = notes[offset:]
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	return notes
}

// Package normalize turns raw note input into its stored form.
// Every function is pure and idempotent.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tags splits a comma-separated string, trims and lowercases each tag, drops
// empty entries and later duplicates. Order of first occurrence is kept.
func Tags(raw string) []string {
	return TagList(strings.Split(raw, ","))
}

// TagList applies the Tags pipeline to an already split list.
// The result is never nil.
func TagList(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := Tag(tag)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Title trims surrounding whitespace. Case is preserved.
func Title(s string) string {
	return strings.TrimSpace(s)
}

// Content trims surrounding whitespace. Case is preserved.
func Content(s string) string {
	return strings.TrimSpace(s)
}

// Tag lowercases and trims a single tag, as used for lookups.
func Tag(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

package normalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/aretw0/jotter/pkg/normalize"
)

func TestTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Mixed Case Duplicates", input: "Work, work, IDEAS", want: []string{"work", "ideas"}},
		{name: "Cyrillic", input: "Работа, ИДЕИ,  важное , работа", want: []string{"работа", "идеи", "важное"}},
		{name: "Empty Segments", input: "a, , b,  ,c", want: []string{"a", "b", "c"}},
		{name: "Empty Input", input: "", want: []string{}},
		{name: "Only Commas", input: " , ,, ", want: []string{}},
		{name: "Inner Whitespace Kept", input: "  two words ", want: []string{"two words"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Tags(tt.input))
		})
	}
}

func TestTagList_NeverNil(t *testing.T) {
	assert.NotNil(t, normalize.TagList(nil))
	assert.Equal(t, []string{"x"}, normalize.TagList([]string{" X ", "x"}))
}

func TestTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Trim And Lower", input: " Work ", want: "work"},
		{name: "Cyrillic", input: "РАБОТА", want: "работа"},
		{name: "Blank", input: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Tag(tt.input))
		})
	}
}

func TestTitleContent(t *testing.T) {
	assert.Equal(t, "Budget Plan", normalize.Title("  Budget Plan\n"))
	assert.Equal(t, "Body", normalize.Content("\tBody  "))
}

func tagInput() *rapid.Generator[string] {
	return rapid.StringMatching(`[ A-Za-zА-Яа-я0-9,_-]{0,60}`)
}

func TestTags_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := tagInput().Draw(t, "raw")
		once := normalize.Tags(raw)
		twice := normalize.Tags(strings.Join(once, ","))
		if !equal(once, twice) {
			t.Fatalf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	})
}

func TestTags_OrderPreservingSubsequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := tagInput().Draw(t, "raw")
		got := normalize.Tags(raw)

		// Every output tag appears in the input in the same relative order.
		var candidates []string
		for _, p := range strings.Split(raw, ",") {
			if s := strings.ToLower(strings.TrimSpace(p)); s != "" {
				candidates = append(candidates, s)
			}
		}
		i := 0
		for _, tag := range got {
			for i < len(candidates) && candidates[i] != tag {
				i++
			}
			if i == len(candidates) {
				t.Fatalf("tag %q out of order in %q", tag, raw)
			}
		}

		seen := map[string]bool{}
		for _, tag := range got {
			if seen[tag] {
				t.Fatalf("duplicate %q in %q", tag, got)
			}
			seen[tag] = true
		}
	})
}

func TestTitle_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		if normalize.Title(normalize.Title(s)) != normalize.Title(s) {
			t.Fatalf("title not idempotent for %q", s)
		}
	})
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

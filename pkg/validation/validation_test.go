package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/validation"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		wantMsg string
	}{
		{name: "Valid", input: "Valid title", valid: true},
		{name: "Cyrillic", input: "Валидный заголовок", valid: true},
		{name: "Empty", input: "", wantMsg: "title cannot be empty"},
		{name: "Whitespace Only", input: "   \t", wantMsg: "title cannot be empty"},
		{name: "Exactly Max", input: strings.Repeat("a", 100), valid: true},
		{name: "Too Long", input: strings.Repeat("a", 101), wantMsg: "title cannot be longer than 100 characters"},
		{name: "Multibyte At Max", input: strings.Repeat("я", 100), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validation.ValidateTitle(tt.input)
			assert.Equal(t, tt.valid, r.Valid)
			if tt.valid {
				assert.Empty(t, r.Errors)
				return
			}
			assert.Contains(t, r.Errors, tt.wantMsg)
		})
	}
}

func TestValidateTitle_LengthCountsRawInput(t *testing.T) {
	// 99 letters plus padding: trimmed it fits, raw it does not.
	r := validation.ValidateTitle("  " + strings.Repeat("a", 99) + "  ")
	assert.False(t, r.Valid)
}

func TestValidateContent(t *testing.T) {
	assert.True(t, validation.ValidateContent("Some content").Valid)

	r := validation.ValidateContent("")
	assert.False(t, r.Valid)
	assert.Contains(t, r.Errors, "content cannot be empty")

	r = validation.ValidateContent(strings.Repeat("a", 5001))
	assert.False(t, r.Valid)
	assert.Contains(t, r.Errors, "content cannot be longer than 5000 characters")

	assert.True(t, validation.ValidateContent(strings.Repeat("a", 5000)).Valid)
}

func TestValidateTagString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		valid    bool
		contains string
	}{
		{name: "Valid Latin", input: "work, ideas, important", valid: true},
		{name: "Valid Cyrillic", input: "работа, идеи, важное", valid: true},
		{name: "Empty Is Optional", input: "", valid: true},
		{name: "Blank Is Optional", input: "   ", valid: true},
		{name: "Empty Segments Dropped", input: "a, , b,", valid: true},
		{name: "Hyphen Underscore Space", input: "to-do, my_tag, two words", valid: true},
		{name: "Too Many", input: strings.TrimSuffix(strings.Repeat("tag, ", 11), ", "), contains: "at most 10 tags are allowed"},
		{name: "Too Long", input: strings.Repeat("a", 51), contains: "too long"},
		{name: "Bad Characters", input: "ok, no#pe", contains: `tag "no#pe" contains invalid characters`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validation.ValidateTagString(tt.input)
			assert.Equal(t, tt.valid, r.Valid, "errors: %v", r.Errors)
			if tt.contains != "" {
				require.NotEmpty(t, r.Errors)
				assert.Contains(t, strings.Join(r.Errors, "\n"), tt.contains)
			}
		})
	}
}

func TestValidateTagList(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r := validation.ValidateTagList([]string{"work", "Home"})
		assert.True(t, r.Valid)
	})

	t.Run("Nil Is Valid", func(t *testing.T) {
		assert.True(t, validation.ValidateTagList(nil).Valid)
	})

	t.Run("Empty Element", func(t *testing.T) {
		r := validation.ValidateTagList([]string{"work", "  "})
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "tag 2 cannot be empty")
	})

	t.Run("Case Insensitive Duplicates", func(t *testing.T) {
		r := validation.ValidateTagList([]string{"Work", "work"})
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "tags must not repeat")
	})

	t.Run("Cyrillic Duplicates", func(t *testing.T) {
		r := validation.ValidateTagList([]string{"Работа", "работа"})
		assert.False(t, r.Valid)
	})

	t.Run("Too Many", func(t *testing.T) {
		tags := make([]string, 11)
		for i := range tags {
			tags[i] = "t" + string(rune('a'+i))
		}
		r := validation.ValidateTagList(tags)
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "at most 10 tags are allowed")
	})

	t.Run("Too Long", func(t *testing.T) {
		r := validation.ValidateTagList([]string{strings.Repeat("b", 51)})
		assert.False(t, r.Valid)
	})
}

func TestValidateTagValues(t *testing.T) {
	t.Run("Nil Means Empty", func(t *testing.T) {
		tags, r, err := validation.ValidateTagValues(nil)
		require.NoError(t, err)
		assert.True(t, r.Valid)
		assert.Empty(t, tags)
	})

	t.Run("Decoded List", func(t *testing.T) {
		tags, r, err := validation.ValidateTagValues([]any{"a", "b"})
		require.NoError(t, err)
		assert.True(t, r.Valid)
		assert.Equal(t, []string{"a", "b"}, tags)
	})

	t.Run("Non String Element", func(t *testing.T) {
		_, r, err := validation.ValidateTagValues([]any{"a", 42.0})
		require.NoError(t, err)
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "tag 2 must be a string")
	})

	t.Run("Not A List", func(t *testing.T) {
		_, _, err := validation.ValidateTagValues("work, home")
		require.Error(t, err)
		assert.True(t, errors.Is(err, validation.ErrTagsNotList))
	})
}

func TestValidateNote(t *testing.T) {
	title := ""
	content := "fine"
	tags := []string{"ok", "no!"}

	r := validation.ValidateNote(validation.Input{Title: &title, Content: &content, Tags: &tags})
	assert.False(t, r.Valid)
	assert.Equal(t, "title cannot be empty", r.Errors[validation.FieldTitle])
	assert.NotContains(t, r.Errors, validation.FieldContent)
	assert.Contains(t, r.Errors[validation.FieldTags], "invalid characters")

	// Omitted fields are not checked.
	r = validation.ValidateNote(validation.Input{Content: &content})
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestValidateDraft(t *testing.T) {
	r := validation.ValidateDraft("", strings.Repeat("x", 5001), []string{"a", "A"})
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 3)
	assert.True(t, strings.HasPrefix(r.Errors[0], "title"))
	assert.True(t, strings.HasPrefix(r.Errors[1], "content"))
	assert.Equal(t, "tags must not repeat", r.Errors[2])

	assert.True(t, validation.ValidateDraft("T", "C", nil).Valid)
}

func TestValidator_CustomLimits(t *testing.T) {
	v := validation.New(validation.Limits{TitleMax: 5, MaxTags: 1})

	assert.False(t, v.ValidateTitle("abcdef").Valid)
	assert.True(t, v.ValidateTitle("abcde").Valid)
	assert.False(t, v.ValidateTagList([]string{"a", "b"}).Valid)

	// Unset limits fall back to the defaults.
	assert.Equal(t, 5000, v.Limits().ContentMax)
	assert.Equal(t, 50, v.Limits().TagMax)
}

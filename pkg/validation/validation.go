// Package validation holds the pure field rules that guard every note write.
//
// Two result shapes are exposed: Result (ordered list of messages, used by the
// storage path) and FieldResult (first message per field, used by forms).
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names used as keys in FieldResult.Errors.
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldTags    = "tags"
)

// ErrTagsNotList is returned by ValidateTagValues when the decoded value is
// not a list at all. It is a type-contract violation, not a rule violation.
var ErrTagsNotList = errors.New("tags must be a list")

// tagPattern allows Latin and Cyrillic letters, digits, whitespace, '-' and '_'.
var tagPattern = regexp.MustCompile(`^[a-zA-Z\p{Cyrillic}0-9\s\-_]+$`)

// Limits are the field bounds enforced by a Validator.
type Limits struct {
	TitleMax   int `mapstructure:"title_max" json:"title_max" yaml:"title_max"`
	ContentMax int `mapstructure:"content_max" json:"content_max" yaml:"content_max"`
	TagMax     int `mapstructure:"tag_max" json:"tag_max" yaml:"tag_max"`
	MaxTags    int `mapstructure:"max_tags" json:"max_tags" yaml:"max_tags"`
}

// DefaultLimits returns the stock note limits.
func DefaultLimits() Limits {
	return Limits{
		TitleMax:   100,
		ContentMax: 5000,
		TagMax:     50,
		MaxTags:    10,
	}
}

// Result is the list-shaped outcome of a validation.
type Result struct {
	Valid  bool
	Errors []string
}

// FieldResult is the map-shaped outcome, keyed by field name.
type FieldResult struct {
	Valid  bool
	Errors map[string]string
}

// Input is a partially filled note. Nil fields are not validated.
type Input struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// Validator applies a fixed set of Limits.
type Validator struct {
	limits Limits
}

// New returns a Validator for the given limits. Zero fields fall back to the
// defaults.
func New(limits Limits) *Validator {
	def := DefaultLimits()
	if limits.TitleMax <= 0 {
		limits.TitleMax = def.TitleMax
	}
	if limits.ContentMax <= 0 {
		limits.ContentMax = def.ContentMax
	}
	if limits.TagMax <= 0 {
		limits.TagMax = def.TagMax
	}
	if limits.MaxTags <= 0 {
		limits.MaxTags = def.MaxTags
	}
	return &Validator{limits: limits}
}

// Limits returns a copy of the limits in effect.
func (v *Validator) Limits() Limits {
	return v.limits
}

// foldCase lowercases s language-neutrally. Casers are stateful, so one is
// built per call.
func foldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

func newResult(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateTitle checks emptiness after trimming and the raw length.
func (v *Validator) ValidateTitle(title string) Result {
	var errs []string
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > v.limits.TitleMax {
		errs = append(errs, fmt.Sprintf("title cannot be longer than %d characters", v.limits.TitleMax))
	}
	return newResult(errs)
}

// ValidateContent checks emptiness after trimming and the raw length.
func (v *Validator) ValidateContent(content string) Result {
	var errs []string
	if strings.TrimSpace(content) == "" {
		errs = append(errs, "content cannot be empty")
	}
	if utf8.RuneCountInString(content) > v.limits.ContentMax {
		errs = append(errs, fmt.Sprintf("content cannot be longer than %d characters", v.limits.ContentMax))
	}
	return newResult(errs)
}

// ValidateTagString validates the comma-separated form typed into a form.
// An empty string is valid: tags are optional.
func (v *Validator) ValidateTagString(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return newResult(nil)
	}

	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}

	var errs []string
	if len(tags) > v.limits.MaxTags {
		errs = append(errs, fmt.Sprintf("at most %d tags are allowed", v.limits.MaxTags))
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > v.limits.TagMax {
			errs = append(errs, fmt.Sprintf("tag %q is too long (maximum %d characters)", tag, v.limits.TagMax))
		}
		if !tagPattern.MatchString(tag) {
			errs = append(errs, fmt.Sprintf("tag %q contains invalid characters", tag))
		}
	}
	return newResult(errs)
}

// ValidateTagList validates the list form used by the storage path.
func (v *Validator) ValidateTagList(tags []string) Result {
	var errs []string
	if len(tags) > v.limits.MaxTags {
		errs = append(errs, fmt.Sprintf("at most %d tags are allowed", v.limits.MaxTags))
	}

	seen := make(map[string]struct{}, len(tags))
	duplicate := false
	for i, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			errs = append(errs, fmt.Sprintf("tag %d cannot be empty", i+1))
			continue
		}
		if utf8.RuneCountInString(tag) > v.limits.TagMax {
			errs = append(errs, fmt.Sprintf("tag %q is too long (maximum %d characters)", tag, v.limits.TagMax))
		}
		if !tagPattern.MatchString(trimmed) {
			errs = append(errs, fmt.Sprintf("tag %q contains invalid characters", tag))
		}
		key := foldCase(trimmed)
		if _, ok := seen[key]; ok {
			duplicate = true
		}
		seen[key] = struct{}{}
	}
	if duplicate {
		errs = append(errs, "tags must not repeat")
	}
	return newResult(errs)
}

// ValidateTagValues validates tags decoded from a loosely typed payload.
// A nil value is an empty list. A value that is not a list yields
// ErrTagsNotList; non-string elements are reported in the Result.
func (v *Validator) ValidateTagValues(value any) ([]string, Result, error) {
	switch vals := value.(type) {
	case nil:
		return []string{}, newResult(nil), nil
	case []string:
		return vals, v.ValidateTagList(vals), nil
	case []any:
		tags := make([]string, 0, len(vals))
		var errs []string
		for i, el := range vals {
			s, ok := el.(string)
			if !ok {
				errs = append(errs, fmt.Sprintf("tag %d must be a string", i+1))
				continue
			}
			tags = append(tags, s)
		}
		if len(errs) > 0 {
			return nil, newResult(errs), nil
		}
		return tags, v.ValidateTagList(tags), nil
	default:
		return nil, Result{}, fmt.Errorf("%w, got %T", ErrTagsNotList, value)
	}
}

// ValidateNote validates the fields present in the input and keeps the first
// message per field.
func (v *Validator) ValidateNote(in Input) FieldResult {
	errs := make(map[string]string)
	if in.Title != nil {
		if r := v.ValidateTitle(*in.Title); !r.Valid {
			errs[FieldTitle] = r.Errors[0]
		}
	}
	if in.Content != nil {
		if r := v.ValidateContent(*in.Content); !r.Valid {
			errs[FieldContent] = r.Errors[0]
		}
	}
	if in.Tags != nil {
		if r := v.ValidateTagString(strings.Join(*in.Tags, ", ")); !r.Valid {
			errs[FieldTags] = r.Errors[0]
		}
	}
	return FieldResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateDraft validates a complete note and returns every violation in
// field order: title, content, tags.
func (v *Validator) ValidateDraft(title, content string, tags []string) Result {
	var errs []string
	errs = append(errs, v.ValidateTitle(title).Errors...)
	errs = append(errs, v.ValidateContent(content).Errors...)
	errs = append(errs, v.ValidateTagList(tags).Errors...)
	return newResult(errs)
}

var std = New(DefaultLimits())

// ValidateTitle validates a title against the default limits.
func ValidateTitle(title string) Result { return std.ValidateTitle(title) }

// ValidateContent validates content against the default limits.
func ValidateContent(content string) Result { return std.ValidateContent(content) }

// ValidateTagString validates comma-separated tags against the default limits.
func ValidateTagString(raw string) Result { return std.ValidateTagString(raw) }

// ValidateTagList validates a tag list against the default limits.
func ValidateTagList(tags []string) Result { return std.ValidateTagList(tags) }

// ValidateTagValues validates loosely typed tags against the default limits.
func ValidateTagValues(value any) ([]string, Result, error) { return std.ValidateTagValues(value) }

// ValidateNote validates the present fields against the default limits.
func ValidateNote(in Input) FieldResult { return std.ValidateNote(in) }

// ValidateDraft validates a full note against the default limits.
func ValidateDraft(title, content string, tags []string) Result {
	return std.ValidateDraft(title, content, tags)
}

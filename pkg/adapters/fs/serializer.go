package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/core"
)

const frontmatterDelimiter = "---"

// frontmatter is the YAML header of a note file. The body is the content.
type frontmatter struct {
	ID        int64     `yaml:"id"`
	Title     string    `yaml:"title"`
	Tags      []string  `yaml:"tags"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// marshalNote renders a note as Markdown with YAML frontmatter.
func marshalNote(n core.Note) ([]byte, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(frontmatter{
		ID:        n.ID,
		Title:     n.Title,
		Tags:      tags,
		CreatedAt: n.CreatedAt.UTC(),
		UpdatedAt: n.UpdatedAt.UTC(),
	}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(frontmatterDelimiter + "\n")
	buf.WriteString(n.Content)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// unmarshalNote parses a note file written by marshalNote. The delimiter
// lines may end in CRLF after an editor touched the file; the body is kept
// byte for byte.
func unmarshalNote(data []byte) (core.Note, error) {
	header, body, err := splitFrontmatter(data)
	if err != nil {
		return core.Note{}, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return core.Note{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Stored content is trimmed, so a trailing line break is the one the
	// writer added.
	content := strings.TrimSuffix(string(body), "\n")
	content = strings.TrimSuffix(content, "\r")

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return core.Note{
		ID:        fm.ID,
		Title:     fm.Title,
		Content:   content,
		Tags:      tags,
		CreatedAt: fm.CreatedAt.UTC(),
		UpdatedAt: fm.UpdatedAt.UTC(),
	}, nil
}

// splitFrontmatter returns the YAML between the two delimiter lines and
// everything after the closing one.
func splitFrontmatter(data []byte) (header, body []byte, err error) {
	first, rest, ok := bytes.Cut(data, []byte("\n"))
	if !ok || !isDelimiter(first) {
		return nil, nil, errors.New("missing frontmatter")
	}

	offset := 0
	for offset <= len(rest) {
		line, after, more := bytes.Cut(rest[offset:], []byte("\n"))
		if isDelimiter(line) {
			return rest[:offset], after, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return nil, nil, errors.New("frontmatter started but no closing delimiter found")
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimSuffix(line, []byte("\r"))) == frontmatterDelimiter
}

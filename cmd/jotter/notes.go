package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/validation"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

// readContent resolves "-" to the whole of stdin.
func readContent(in io.Reader, value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// checkInput runs the per-field form rules on the flags given, so a bad flag
// is reported by name before the store is touched.
func checkInput(svc *core.Service, in validation.Input) error {
	res := validation.New(svc.Limits()).ValidateNote(in)
	if res.Valid {
		return nil
	}
	verr := &core.ValidationError{Fields: res.Errors}
	for _, field := range []string{validation.FieldTitle, validation.FieldContent, validation.FieldTags} {
		if msg, ok := res.Errors[field]; ok {
			verr.Problems = append(verr.Problems, msg)
		}
	}
	return verr
}

func printNotes(w io.Writer, notes []core.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tTITLE\tTAGS")
	for _, n := range notes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, n.UpdatedAt.Local().Format(time.DateTime), n.Title, strings.Join(n.Tags, ", "))
	}
	return tw.Flush()
}

func printNote(w io.Writer, n core.Note) {
	fmt.Fprintf(w, "# %s\n", n.Title)
	fmt.Fprintf(w, "id: %d\n", n.ID)
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(w, "created: %s\n", n.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "updated: %s\n", n.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "\n%s\n", n.Content)
}

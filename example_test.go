package jotter_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/pkg/core"
)

// Example_basic demonstrates how to open a store, save a note, and read it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "jotter-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := jotter.New(filepath.Join(tmpDir, "notes.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()

	id, err := svc.Create(ctx, core.Draft{
		Title:   "  Hello  ",
		Content: "My first note.",
		Tags:    []string{"Example", "example", "Go"},
	})
	if err != nil {
		log.Fatal(err)
	}

	note, _, err := svc.Get(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d %q %v\n", note.ID, note.Title, note.Tags)
	// Output:
	// 1 "Hello" [example go]
}

// Example_search shows tag filtering and text matching.
func Example_search() {
	tmpDir, err := os.MkdirTemp("", "jotter-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := jotter.New(tmpDir, jotter.WithAdapter(jotter.AdapterFS))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	for _, d := range []core.Draft{
		{Title: "Budget", Content: "Q3 numbers", Tags: []string{"work"}},
		{Title: "Bread", Content: "flour, water", Tags: []string{"home"}},
		{Title: "Standup", Content: "budget review", Tags: []string{"work"}},
	} {
		if _, err := svc.Create(ctx, d); err != nil {
			log.Fatal(err)
		}
	}

	notes, err := svc.Search(ctx, core.SearchOptions{Query: "BUDGET", Tags: []string{"Work"}, SortBy: core.SortTitle, Order: core.OrderAsc})
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range notes {
		fmt.Println(n.Title)
	}
	// Output:
	// Budget
	// Standup
}

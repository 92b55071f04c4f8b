// Package jotter is the Composition Root for the jotter notes manager.
//
// It connects the core business logic (pkg/core) with the storage adapters
// (pkg/adapters) using the Hexagonal Architecture pattern.
//
// A note has a title, a body and a set of tags. The service validates and
// normalizes every write, stamps creation and update times, and offers
// search, tag listing, statistics and whole-store export/import on top of
// any core.Repository.
//
// Adapters:
//
//   - sqlite (default): a single database file, shared safely between processes.
//   - fs: one Markdown file with YAML frontmatter per note, observable with Watch.
//
// Usage:
//
//	svc, err := jotter.New("./notes.db", jotter.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	id, err := svc.Create(ctx, core.Draft{Title: "Groceries", Content: "milk", Tags: []string{"home"}})
package jotter

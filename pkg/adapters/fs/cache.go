package fs

import (
	"os"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	note    core.Note
}

// cache keeps parsed notes keyed by file path. An entry is fresh while the
// file's mtime and size are unchanged, so edits from other processes are
// picked up on the next read.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached note for path if info still matches.
func (c *cache) Get(path string, info os.FileInfo) (core.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[path]
	if !ok || !e.modTime.Equal(info.ModTime()) || e.size != info.Size() {
		return core.Note{}, false
	}
	return cloneNote(e.note), true
}

// Set records a freshly parsed note.
func (c *cache) Set(path string, info os.FileInfo, n core.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), note: cloneNote(n)}
}

// Delete drops a single entry.
func (c *cache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Reset drops every entry.
func (c *cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneNote(n core.Note) core.Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}

package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// The registry hands out one shared service per store, so every caller in
// the process talks to the same handle.
var registry = struct {
	mu       sync.Mutex
	services map[string]*core.Service
}{services: make(map[string]*core.Service)}

func registryKey(uri string, o *options) string {
	if o.repository != nil {
		return fmt.Sprintf("custom:%p", o.repository)
	}
	path := resolvePath(uri, o)
	if abs, err := filepath.Abs(path); err == nil && path != sqlite.MemoryPath {
		path = abs
	}
	return o.adapter + ":" + path
}

// Open returns the shared service for the store at uri, creating it on
// first use. Later calls with the same store ignore their options.
func Open(uri string, opts ...Option) (*core.Service, error) {
	o := parseOptions(opts)
	key := registryKey(uri, o)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if svc, ok := registry.services[key]; ok {
		return svc, nil
	}
	svc, err := New(uri, opts...)
	if err != nil {
		return nil, err
	}
	registry.services[key] = svc
	o.log().Debug("store opened", "key", key)
	return svc, nil
}

// Release closes the shared service for uri and forgets it. The data stays.
func Release(uri string, opts ...Option) error {
	o := parseOptions(opts)
	key := registryKey(uri, o)

	registry.mu.Lock()
	svc, ok := registry.services[key]
	delete(registry.services, key)
	registry.mu.Unlock()

	if !ok {
		return nil
	}
	return svc.Close()
}

// Destroy deletes the store at uri for good and forgets its shared service.
// Handles obtained from Open fail with core.ErrDestroyed afterwards.
func Destroy(ctx context.Context, uri string, opts ...Option) error {
	svc, err := Open(uri, opts...)
	if err != nil {
		return err
	}
	if err := svc.Destroy(ctx); err != nil {
		return err
	}

	registry.mu.Lock()
	delete(registry.services, registryKey(uri, parseOptions(opts)))
	registry.mu.Unlock()
	return nil
}

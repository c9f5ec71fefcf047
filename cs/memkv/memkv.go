// Package memkv implements cs.Gateway backed by an in-process map, for
// unit tests and single-process demos. Its CAS discipline mirrors
// vimeo-leaderelection/memory.Decider: a monotonically increasing version
// counter per key that only a matching compare-and-swap can advance.
package memkv

import (
	"context"
	"sync"

	"github.com/omid-ha/leasemanager/cs"
)

type entry struct {
	value   []byte
	version int64
}

// Gateway is an in-memory cs.Gateway.
type Gateway struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty in-memory Gateway.
func New() *Gateway {
	return &Gateway{entries: map[string]*entry{}}
}

// EnsurePath idempotently creates path with an empty value if absent.
func (g *Gateway) EnsurePath(ctx context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[path]; !ok {
		g.entries[path] = &entry{value: nil, version: 0}
	}
	return nil
}

// Read returns the current value and version for path.
func (g *Gateway) Read(ctx context.Context, path string) (cs.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[path]
	if !ok {
		return cs.Record{}, &cs.TransportError{Op: "read", Err: errNotFound(path)}
	}
	return cs.Record{Value: e.value, Version: e.version}, nil
}

// CASWrite writes value to path if expectedVersion matches the entry's
// current version.
func (g *Gateway) CASWrite(ctx context.Context, path string, value []byte, expectedVersion int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[path]
	if !ok {
		return 0, &cs.TransportError{Op: "cas_write", Err: errNotFound(path)}
	}
	if e.version != expectedVersion {
		return 0, cs.ErrVersionMismatch
	}
	e.value = append([]byte(nil), value...)
	e.version++
	return e.version, nil
}

type errNotFound string

func (e errNotFound) Error() string { return "path not found: " + string(e) }

var _ cs.Gateway = (*Gateway)(nil)

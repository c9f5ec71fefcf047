// Package consulgw implements cs.Gateway on top of Hashicorp Consul's KV
// store. Consul's ModifyIndex plus CAS writes and blocking queries give
// exactly the "hierarchical, versioned namespace with compare-and-swap
// writes and ephemeral-node-free watches" contract the CS abstraction
// requires, without the ephemeral-node semantics ZooKeeper would bring
// along uninvited.
package consulgw

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"

	"github.com/omid-ha/leasemanager/cs"
)

// Gateway adapts a Consul KV client to cs.Gateway.
type Gateway struct {
	kv *api.KV
}

// New constructs a Gateway from an existing Consul client.
func New(client *api.Client) *Gateway {
	return &Gateway{kv: client.KV()}
}

// NewFromConfig builds a Consul client from cfg and wraps it.
func NewFromConfig(cfg *api.Config) (*Gateway, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consulgw: failed to build consul client: %w", err)
	}
	return New(client), nil
}

// EnsurePath idempotently creates path with an empty value if it doesn't
// already exist, and confirms it exists afterwards.
func (g *Gateway) EnsurePath(ctx context.Context, path string) error {
	pair, _, err := g.kv.Get(path, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return &cs.TransportError{Op: "ensure_path.get", Err: err}
	}
	if pair != nil {
		return nil
	}
	// Race the creation with a CAS against ModifyIndex 0 ("doesn't
	// exist"); if another replica wins, that's fine, we just confirm
	// existence below.
	_, _, casErr := g.kv.CAS(&api.KVPair{Key: path, Value: []byte{}, ModifyIndex: 0}, (&api.WriteOptions{}).WithContext(ctx))
	if casErr != nil {
		return &cs.TransportError{Op: "ensure_path.cas", Err: casErr}
	}
	confirm, _, err := g.kv.Get(path, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return &cs.TransportError{Op: "ensure_path.confirm", Err: err}
	}
	if confirm == nil {
		return fmt.Errorf("consulgw: could not confirm existence of %q after creation attempt", path)
	}
	return nil
}

// Read returns the current value and ModifyIndex for path, treated as the
// version.
func (g *Gateway) Read(ctx context.Context, path string) (cs.Record, error) {
	pair, _, err := g.kv.Get(path, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return cs.Record{}, &cs.TransportError{Op: "read", Err: err}
	}
	if pair == nil {
		return cs.Record{}, &cs.TransportError{Op: "read", Err: fmt.Errorf("path %q does not exist", path)}
	}
	return cs.Record{Value: pair.Value, Version: int64(pair.ModifyIndex)}, nil
}

// CASWrite writes value to path if its current ModifyIndex equals
// expectedVersion.
func (g *Gateway) CASWrite(ctx context.Context, path string, value []byte, expectedVersion int64) (int64, error) {
	ok, _, err := g.kv.CAS(&api.KVPair{
		Key:         path,
		Value:       value,
		ModifyIndex: uint64(expectedVersion),
	}, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return 0, &cs.TransportError{Op: "cas_write", Err: err}
	}
	if !ok {
		return 0, cs.ErrVersionMismatch
	}
	rec, err := g.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("consulgw: cas write succeeded but re-read of new version failed: %w", err)
	}
	return rec.Version, nil
}

var _ cs.Gateway = (*Gateway)(nil)

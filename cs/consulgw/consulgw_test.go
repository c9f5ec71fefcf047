package consulgw

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/omid-ha/leasemanager/cs"
)

// TestGateway exercises consulgw against a real Consul agent. It's skipped
// unless CONSUL_TEST_HTTP_ADDR is set, mirroring how the gcs decider's
// tests are gated on GCS_TEST_BUCKET.
func TestGateway(t *testing.T) {
	addr := os.Getenv("CONSUL_TEST_HTTP_ADDR")
	if addr == "" {
		t.Skip("empty or undefined CONSUL_TEST_HTTP_ADDR environment variable, skipping test")
	}

	cfg := api.DefaultConfig()
	cfg.Address = addr
	g, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	ctx := context.Background()
	path := "leasemanager_test_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	if err := g.EnsurePath(ctx, path); err != nil {
		t.Fatalf("EnsurePath: %v", err)
	}
	if err := g.EnsurePath(ctx, path); err != nil {
		t.Fatalf("EnsurePath (idempotent call): %v", err)
	}

	rec, err := g.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rec.Value) != 0 {
		t.Fatalf("Value = %q, want empty", rec.Value)
	}

	newVer, err := g.CASWrite(ctx, path, []byte("a:1234"), rec.Version)
	if err != nil {
		t.Fatalf("CASWrite: %v", err)
	}

	if _, err := g.CASWrite(ctx, path, []byte("b:5678"), rec.Version); !errors.Is(err, cs.ErrVersionMismatch) {
		t.Fatalf("CASWrite with stale version: err = %v, want ErrVersionMismatch", err)
	}

	got, err := g.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read after CASWrite: %v", err)
	}
	if got.Version != newVer {
		t.Fatalf("Version = %d, want %d", got.Version, newVer)
	}
	if string(got.Value) != "a:1234" {
		t.Fatalf("Value = %q, want %q", got.Value, "a:1234")
	}
}

package db

import (
	"context"
	"testing"

	"github.com/parisxmas/OxiDB/OxiStory/internal/oxidb/oxidbtest"
)

func TestPoolRoundRobin(t *testing.T) {
	srv := oxidbtest.Start(t)
	p, err := NewPool(srv.Host(), srv.Port(), 3)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Close()

	seen := make(map[any]bool)
	for i := 0; i < 3; i++ {
		c := p.Get()
		seen[c] = true
		if _, err := c.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct clients, got %d", len(seen))
	}
}

func TestPoolConnectFailure(t *testing.T) {
	if _, err := NewPool("127.0.0.1", 1, 1); err == nil {
		t.Fatal("expected connect error on closed port")
	}
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	srv := oxidbtest.Start(t)
	p, err := NewPool(srv.Host(), srv.Port(), 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	p.Close()
	p.Close()
}

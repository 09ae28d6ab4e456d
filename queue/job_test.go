package queue

import (
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	a := NewJob([]byte("payload"))
	b := NewJob([]byte("payload"))

	if a.ID == "" || b.ID == "" {
		t.Fatal("jobs must get generated IDs")
	}
	if a.ID == b.ID {
		t.Error("job IDs must be unique")
	}
	if a.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", a.Attempts)
	}
	if !a.NextEligibleAt.IsZero() {
		t.Error("new jobs must be immediately eligible")
	}
}

func TestJobWithIdempotencyKey(t *testing.T) {
	orig := NewJob([]byte("p"))
	keyed := orig.WithIdempotencyKey("tx-1")

	if keyed.IdempotencyKey != "tx-1" {
		t.Errorf("IdempotencyKey = %q, want tx-1", keyed.IdempotencyKey)
	}
	if orig.IdempotencyKey != "" {
		t.Error("WithIdempotencyKey mutated the original")
	}
	if keyed.ID != orig.ID {
		t.Error("derived job must keep the same ID")
	}
}

func TestJobWithMetadata(t *testing.T) {
	orig := NewJob([]byte("p")).WithMetadata("network", "mainnet")
	derived := orig.WithMetadata("method", "eth_sendRawTransaction")

	if len(orig.Metadata) != 1 {
		t.Errorf("original metadata grew: %v", orig.Metadata)
	}
	if derived.Metadata["network"] != "mainnet" || derived.Metadata["method"] != "eth_sendRawTransaction" {
		t.Errorf("derived metadata = %v", derived.Metadata)
	}

	// The maps must not be shared.
	derived.Metadata["network"] = "testnet"
	if orig.Metadata["network"] != "mainnet" {
		t.Error("metadata map shared between job values")
	}
}

func TestJobRetried(t *testing.T) {
	orig := NewJob([]byte("p")).WithIdempotencyKey("tx-1")
	at := time.Unix(2000, 0)
	next := orig.retried(2, at)

	if next.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", next.Attempts)
	}
	if !next.NextEligibleAt.Equal(at) {
		t.Errorf("NextEligibleAt = %v, want %v", next.NextEligibleAt, at)
	}
	if next.ID != orig.ID || string(next.Payload) != "p" || next.IdempotencyKey != "tx-1" {
		t.Error("retried must carry identity and payload over")
	}
	if orig.Attempts != 0 {
		t.Error("retried mutated the original")
	}
}

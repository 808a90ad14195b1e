package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryMissOnUnknownFn(t *testing.T) {
	c := NewMemory()
	_, ok, err := c.Get(context.Background(), "pkg::f", "hash1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("Get should miss for a function never Put")
	}
}

func TestMemoryHitOnMatchingHash(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	entry := Entry{FnPath: "pkg::f", BodyHash: "hash1", Safe: true, CheckedAt: time.Unix(100, 0)}
	if err := c.Put(ctx, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "pkg::f", "hash1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !got.Safe || got.BodyHash != "hash1" {
		t.Errorf("Get returned %+v", got)
	}
	if got.TaskID == uuid.Nil {
		t.Errorf("Put should mint a TaskID when none is supplied")
	}
}

func TestMemoryMissOnStaleHash(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	c.Put(ctx, Entry{FnPath: "pkg::f", BodyHash: "hash1", Safe: true})

	_, ok, err := c.Get(ctx, "pkg::f", "hash2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("Get should miss when the cached body hash no longer matches (body changed)")
	}
}

func TestMemoryPutOverwritesPriorEntry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	c.Put(ctx, Entry{FnPath: "pkg::f", BodyHash: "hash1", Safe: false})
	c.Put(ctx, Entry{FnPath: "pkg::f", BodyHash: "hash2", Safe: true})

	got, ok, err := c.Get(ctx, "pkg::f", "hash2")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !got.Safe {
		t.Errorf("Get should reflect the most recent Put for the same FnPath")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	c, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "pkg::f", "hash1"); err != nil || ok {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}

	entry := Entry{FnPath: "pkg::f", BodyHash: "hash1", Safe: true, CheckedAt: time.Unix(42, 0)}
	if err := c.Put(ctx, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "pkg::f", "hash1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !got.Safe || got.BodyHash != "hash1" || got.TaskID == uuid.Nil {
		t.Errorf("Get returned %+v", got)
	}
	if !got.CheckedAt.Equal(time.Unix(42, 0)) {
		t.Errorf("CheckedAt = %v, want %v", got.CheckedAt, time.Unix(42, 0))
	}
}

func TestSQLiteUpsertOnFnPath(t *testing.T) {
	c, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	c.Put(ctx, Entry{FnPath: "pkg::f", BodyHash: "hash1", Safe: false})
	c.Put(ctx, Entry{FnPath: "pkg::f", BodyHash: "hash2", Safe: true})

	got, ok, err := c.Get(ctx, "pkg::f", "hash2")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !got.Safe {
		t.Errorf("a second Put for the same fn_path should overwrite, not duplicate")
	}

	if _, ok, err := c.Get(ctx, "pkg::f", "hash1"); err != nil || ok {
		t.Errorf("the stale hash should no longer hit after an upsert")
	}
}

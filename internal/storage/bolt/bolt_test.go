package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestBolt_InsertAndFindNewestFirst(t *testing.T) {
	ctx := context.Background()
	uri := "bolt://" + filepath.Join(t.TempDir(), "fintrack.db")
	db, err := Dial(ctx, uri, "fintrack")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer db.Close(ctx)

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	coll := db.Collection("transactions")
	empty, err := coll.FindNewestFirst(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no documents, got %d", len(empty))
	}

	ts := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	for i, d := range []string{"a", "b", "c"} {
		created := ts
		if i == 0 {
			created = ts.Add(time.Hour)
		}
		if _, err := coll.Insert(ctx, core.Transaction{Description: d, Type: core.Income, CreatedAt: created}); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := coll.FindNewestFirst(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "c", "b"}
	for i, d := range want {
		if txs[i].Description != d {
			t.Errorf("position %d: got %q, want %q", i, txs[i].Description, d)
		}
	}
}

func TestSeqKeyOrdering(t *testing.T) {
	if string(seqKey(255)) >= string(seqKey(256)) {
		t.Fatal("sequence keys must sort numerically")
	}
}

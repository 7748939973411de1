package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func newMemoryStore(t *testing.T) *storage.TransactionStore {
	t.Helper()
	conn, err := storage.NewConnector("memory://", "fintrack", memory.Dial)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close(context.Background()) })
	return storage.NewTransactionStore(conn, "")
}

func TestTransactionStore_ListAllEmpty(t *testing.T) {
	store := newMemoryStore(t)

	txs, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", txs)
	}
}

func TestTransactionStore_CreateAssignsIDAndTimestamps(t *testing.T) {
	store := newMemoryStore(t)
	before := time.Now().UTC().Truncate(time.Millisecond)

	got, err := store.Create(context.Background(), core.Draft{
		Amount:      12.5,
		Description: "Lunch",
		Category:    "food",
		Type:        core.Expense,
		Date:        "2024-03-01T12:00:00.000Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" {
		t.Fatal("expected an id")
	}
	if got.CreatedAt.Before(before) || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("unexpected timestamps: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps")
	}
	if got.CreatedAt.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected millisecond precision, got %v", got.CreatedAt)
	}
	if got.Description != "Lunch" || got.Amount != 12.5 || got.Type != core.Expense {
		t.Fatalf("fields not preserved: %+v", got)
	}
}

func TestTransactionStore_ListNewestFirst(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	for _, desc := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, core.Draft{Amount: 1, Description: desc, Category: "x", Type: core.Income}); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := store.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"third", "second", "first"}
	if len(txs) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(txs))
	}
	for i, d := range want {
		if txs[i].Description != d {
			t.Errorf("position %d: got %q, want %q", i, txs[i].Description, d)
		}
	}
}

func TestTransactionStore_CollectionsAreIsolated(t *testing.T) {
	conn, _ := storage.NewConnector("memory://", "fintrack", memory.Dial)
	a := storage.NewTransactionStore(conn, "a")
	b := storage.NewTransactionStore(conn, "b")
	ctx := context.Background()

	if _, err := a.Create(ctx, core.Draft{Amount: 1, Description: "only in a", Category: "x", Type: core.Income}); err != nil {
		t.Fatal(err)
	}
	txs, err := b.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected collection b to be empty, got %d", len(txs))
	}
}

func TestTransactionStore_ConnectionFailure(t *testing.T) {
	boom := errors.New("server selection timeout")
	conn, _ := storage.NewConnector("mongodb://unreachable", "fintrack",
		func(context.Context, string, string) (storage.Database, error) { return nil, boom })
	store := storage.NewTransactionStore(conn, "")

	if _, err := store.ListAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if _, err := store.Create(context.Background(), core.Draft{}); !errors.Is(err, boom) {
		t.Fatalf("expected connection error on create, got %v", err)
	}
}

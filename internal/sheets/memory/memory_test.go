package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestExporter_Export(t *testing.T) {
	e := New()
	ctx := context.Background()

	ref, err := e.Export(ctx, core.Transaction{ID: "a", Description: "Salary"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("Export = %q, %v", ref, err)
	}
	ref, _ = e.Export(ctx, core.Transaction{ID: "b"})
	if ref != "mem:2" {
		t.Fatalf("second ref = %q", ref)
	}

	// Redelivery of the same event must not duplicate the row.
	ref, _ = e.Export(ctx, core.Transaction{ID: "a"})
	if ref != "mem:1" {
		t.Fatalf("duplicate ref = %q", ref)
	}
	if n := len(e.Rows()); n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
}

func TestExporter_RejectsMissingID(t *testing.T) {
	if _, err := New().Export(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected error")
	}
}

package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/storage"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		uri     string
		wantErr bool
	}{
		{"mongodb://localhost:27017", false},
		{"mongodb+srv://cluster.example.net", false},
		{"postgres://user@localhost/fintrack", false},
		{"POSTGRESQL://user@localhost/fintrack", false},
		{"sqlite://./data/fintrack.db", false},
		{"bolt://./data/fintrack.bolt", false},
		{"memory://", false},
		{"redis://localhost:6379", true},
		{"no-scheme", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			dial, err := Resolve(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, storage.ErrUnsupportedScheme) {
					t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
				}
				return
			}
			if err != nil || dial == nil {
				t.Fatalf("Resolve(%q) = %v, %v", tt.uri, dial, err)
			}
		})
	}
}

func TestSchemesSorted(t *testing.T) {
	s := Schemes()
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			t.Fatalf("schemes not sorted: %v", s)
		}
	}
	if len(s) != 7 {
		t.Fatalf("expected 7 schemes, got %v", s)
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	f := NewFactory(nil)

	t.Run("memory backend", func(t *testing.T) {
		res, err := f.CreateBackend(context.Background(), Config{
			DatabaseURL:    "memory://",
			DBName:         "fintrack",
			Collection:     "transactions",
			ConnectTimeout: time.Second,
		})
		if err != nil {
			t.Fatal(err)
		}
		defer res.Cleanup(context.Background())

		txs, err := res.Store.ListAll(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(txs) != 0 {
			t.Fatalf("expected empty store, got %d", len(txs))
		}
		if err := res.Connector.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := f.CreateBackend(context.Background(), Config{DatabaseURL: "memory://"})
		if !errors.Is(err, storage.ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := f.CreateBackend(context.Background(), Config{DatabaseURL: "cassandra://x", DBName: "fintrack"})
		if !errors.Is(err, storage.ErrUnsupportedScheme) {
			t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
		}
	})
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{
		DatabaseURL:            "sqlite://./x.db",
		DBName:                 "fintrack",
		TransactionsCollection: "tx",
		ConnectTimeout:         2 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection != "tx" || cfg.ConnectTimeout != 2*time.Second || cfg.DBName != "fintrack" {
		t.Fatalf("unexpected conversion: %+v", cfg)
	}
}

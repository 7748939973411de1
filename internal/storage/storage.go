// Package storage owns the connection to the document database and the
// transaction store built on top of it. Concrete drivers live in the
// sub-packages and are selected by the scheme of the database URL.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"fintrack/internal/core"
)

var (
	ErrNotConfigured     = errors.New("database location and name must be configured")
	ErrUnsupportedScheme = errors.New("unsupported database scheme")
	ErrClosed            = errors.New("database connection closed")
)

type (
	// Collection is a named set of transaction documents.
	Collection interface {
		// Insert stores t and returns it with its assigned id.
		Insert(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// FindNewestFirst returns every document, most recently created first.
		FindNewestFirst(ctx context.Context) ([]core.Transaction, error)
	}

	// Database is a handle to one logical database.
	Database interface {
		Name() string
		Collection(name string) Collection
		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}

	// DialFunc establishes a connection to the database at uri and returns
	// a handle to the logical database called name.
	DialFunc func(ctx context.Context, uri, name string) (Database, error)
)

// PathFromURI strips the scheme from file based URIs such as
// "sqlite://./data/fintrack.db" or "bolt:///var/lib/fintrack.db".
func PathFromURI(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[i+3:]
	}
	return uri
}

// Scheme returns the lower-cased scheme of uri, or "" when there is none.
func Scheme(uri string) string {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(uri[:i])
}

// SortNewestFirst orders txs by creation time, newest first. txs must already
// be in reverse insertion order; the sort is stable so that order breaks ties.
func SortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

package backend

import (
	"context"
	"time"

	"fintrack/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func(ctx context.Context) error

// BackendResult contains the storage handles and their cleanup function.
type BackendResult struct {
	Connector *storage.Connector
	Store     *storage.TransactionStore
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	// CreateBackend prepares (but does not dial) the database described by config.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	DatabaseURL    string
	DBName         string
	Collection     string
	ConnectTimeout time.Duration
}

package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend. The connection itself is
// established lazily on first use.
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dial, err := Resolve(config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	conn, err := storage.NewConnector(config.DatabaseURL, config.DBName, dial)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize connector: %w", err)
	}
	conn.SetConnectTimeout(config.ConnectTimeout)

	store := storage.NewTransactionStore(conn, config.Collection)

	f.logger.Info("Initialized storage backend",
		"scheme", storage.Scheme(config.DatabaseURL),
		"database", config.DBName,
		"collection", config.Collection,
		"connect_timeout", config.ConnectTimeout)

	return &BackendResult{
		Connector: conn,
		Store:     store,
		Cleanup:   conn.Close,
	}, nil
}

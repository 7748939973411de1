package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultConnectTimeout = 10 * time.Second

// Connector lazily establishes the process-wide database connection.
//
// The first Acquire dials; concurrent first callers wait on the same attempt.
// The outcome, a handle or an error, is kept for the lifetime of the
// connector, so at most one connection attempt is ever made.
type Connector struct {
	uri     string
	name    string
	dial    DialFunc
	timeout time.Duration

	group singleflight.Group

	mu     sync.Mutex
	done   bool
	db     Database
	err    error
	closed bool
}

// NewConnector returns a connector for the database called name at uri.
// It fails when either is empty.
func NewConnector(uri, name string, dial DialFunc) (*Connector, error) {
	if uri == "" || name == "" || dial == nil {
		return nil, ErrNotConfigured
	}
	return &Connector{uri: uri, name: name, dial: dial, timeout: defaultConnectTimeout}, nil
}

// SetConnectTimeout bounds the single connection attempt. Non-positive values are ignored.
func (c *Connector) SetConnectTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Name returns the logical database name.
func (c *Connector) Name() string { return c.name }

// Acquire returns the database handle, connecting on first use.
//
// A caller whose ctx ends while the attempt is in flight gets ctx.Err();
// the attempt itself keeps running for the other callers.
func (c *Connector) Acquire(ctx context.Context) (Database, error) {
	if db, ok, err := c.memoized(); ok {
		return db, err
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		if db, ok, err := c.memoized(); ok {
			return db, err
		}
		db, err := c.connect()
		c.mu.Lock()
		if c.closed && db != nil {
			// Close ran while dialing and found nothing to release.
			c.mu.Unlock()
			if cerr := db.Close(context.Background()); cerr != nil {
				slog.Warn("Failed to close connection established after shutdown",
					"component", "storage",
					"database", c.name,
					"error", cerr)
			}
			return nil, ErrClosed
		}
		c.done, c.db, c.err = true, db, err
		c.mu.Unlock()
		return db, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Database), nil
	}
}

func (c *Connector) memoized() (Database, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, true, ErrClosed
	}
	return c.db, c.done, c.err
}

func (c *Connector) connect() (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	db, err := c.dial(ctx, c.uri, c.name)
	if err != nil {
		slog.Error("Database connection failed",
			"component", "storage",
			"operation", "connect",
			"scheme", Scheme(c.uri),
			"database", c.name,
			"error", err)
		return nil, fmt.Errorf("connect to %s database %q: %w", Scheme(c.uri), c.name, err)
	}
	slog.Info("Database connection established",
		"component", "storage",
		"operation", "connect",
		"scheme", Scheme(c.uri),
		"database", c.name,
		"duration_ms", time.Since(start).Milliseconds())
	return db, nil
}

// Ping checks the established connection, connecting first if needed.
func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.Ping(ctx)
}

// Close releases the connection if one was established. Later Acquire calls fail with ErrClosed.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	db := c.db
	c.closed = true
	c.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close(ctx)
}

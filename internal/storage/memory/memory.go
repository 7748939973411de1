// Package memory is a process-local storage driver. Data lives as long as
// the handle; it backs tests and throwaway local runs ("memory://").
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Scheme is the DATABASE_URL scheme served by this driver.
const Scheme = "memory"

type Database struct {
	name string

	mu          sync.Mutex
	collections map[string]*Collection
}

type Collection struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ storage.Database   = (*Database)(nil)
	_ storage.Collection = (*Collection)(nil)
	_ storage.DialFunc   = Dial
)

// Dial returns a fresh, empty database. The uri is not interpreted.
func Dial(_ context.Context, _ string, name string) (storage.Database, error) {
	return New(name), nil
}

func New(name string) *Database {
	return &Database{name: name, collections: map[string]*Collection{}}
}

func (d *Database) Name() string { return d.name }

func (d *Database) Collection(name string) storage.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = &Collection{}
		d.collections[name] = c
	}
	return c
}

func (d *Database) Ping(context.Context) error { return nil }

func (d *Database) Close(context.Context) error { return nil }

// Insert stores a copy of t under a new UUID.
func (c *Collection) Insert(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, t)
	return t, nil
}

func (c *Collection) FindNewestFirst(context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	out := make([]core.Transaction, 0, len(c.items))
	for i := len(c.items) - 1; i >= 0; i-- {
		out = append(out, c.items[i])
	}
	c.mu.Unlock()
	storage.SortNewestFirst(out)
	return out, nil
}

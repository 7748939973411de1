// Package sqlite stores transaction documents as JSON rows in an embedded
// SQLite file ("sqlite://./data/fintrack.db"). Logical databases and
// collections share one table and are told apart by column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Scheme is the DATABASE_URL scheme served by this driver.
const Scheme = "sqlite"

type Database struct {
	db   *sql.DB
	name string
}

type Collection struct {
	db     *sql.DB
	dbName string
	name   string
}

var (
	_ storage.Database   = (*Database)(nil)
	_ storage.Collection = (*Collection)(nil)
	_ storage.DialFunc   = Dial
)

// Dial opens the SQLite file named by uri, creating its directory and
// applying migrations as needed.
func Dial(ctx context.Context, uri, name string) (storage.Database, error) {
	path := storage.PathFromURI(uri)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty in %q", uri)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Database{db: db, name: name}, nil
}

func (d *Database) Name() string { return d.name }

func (d *Database) Collection(name string) storage.Collection {
	return &Collection{db: d.db, dbName: d.name, name: name}
}

func (d *Database) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

func (d *Database) Close(context.Context) error { return d.db.Close() }

func (c *Collection) Insert(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	body, err := json.Marshal(t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode document: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (db_name, collection, id, created_at, body) VALUES (?, ?, ?, ?, ?)`,
		c.dbName, c.name, t.ID, t.CreatedAt.UnixNano(), string(body))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert document: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"component", "storage",
		"transaction_id", t.ID,
		"collection", c.name)
	return t, nil
}

func (c *Collection) FindNewestFirst(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT body FROM documents
		 WHERE db_name = ? AND collection = ?
		 ORDER BY created_at DESC, seq DESC`,
		c.dbName, c.name)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var t core.Transaction
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Package bolt stores transaction documents in a bbolt file
// ("bolt://./data/fintrack.db"). Each logical database is a top-level
// bucket holding one nested bucket per collection; keys are the bucket's
// sequence so cursor order is insertion order.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Scheme is the DATABASE_URL scheme served by this driver.
const Scheme = "bolt"

type Database struct {
	db   *bbolt.DB
	name string
}

type Collection struct {
	db     *bbolt.DB
	dbName []byte
	name   []byte
}

var (
	_ storage.Database   = (*Database)(nil)
	_ storage.Collection = (*Collection)(nil)
	_ storage.DialFunc   = Dial
)

// Dial opens (or creates) the bbolt file named by uri. The file lock wait is
// bounded by ctx's deadline when it has one.
func Dial(ctx context.Context, uri, name string) (storage.Database, error) {
	path := storage.PathFromURI(uri)
	if path == "" {
		return nil, fmt.Errorf("bolt path is empty in %q", uri)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	opts := &bbolt.Options{Timeout: time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		opts.Timeout = time.Until(deadline)
	}
	db, err := bbolt.Open(path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create database bucket: %w", err)
	}
	return &Database{db: db, name: name}, nil
}

func (d *Database) Name() string { return d.name }

func (d *Database) Collection(name string) storage.Collection {
	return &Collection{db: d.db, dbName: []byte(d.name), name: []byte(name)}
}

func (d *Database) Ping(context.Context) error {
	return d.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(d.name)) == nil {
			return fmt.Errorf("database bucket %q missing", d.name)
		}
		return nil
	})
}

func (d *Database) Close(context.Context) error { return d.db.Close() }

func (c *Collection) Insert(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	body, err := json.Marshal(t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode document: %w", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(c.dbName)
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists(c.name)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), body)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert document: %w", err)
	}
	return t, nil
}

func (c *Collection) FindNewestFirst(context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := c.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(c.dbName)
		if root == nil {
			return nil
		}
		b := root.Bucket(c.name)
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, v := cur.Last(); k != nil; k, v = cur.Prev() {
			var t core.Transaction
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("decode document %x: %w", k, err)
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	storage.SortNewestFirst(out)
	return out, nil
}

// seqKey encodes seq big-endian so byte order matches numeric order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

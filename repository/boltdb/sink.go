package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/orderdesk/repository"
)

// Sink keeps each record table in its own BoltDB bucket, one JSON value per row.
type Sink struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{repository.TableOrders, repository.TableInfluences} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Sink{db: db}, nil
}

func (s *Sink) Driver() string { return "bolt" }

func (s *Sink) Orders() repository.TableSink[repository.OrderRow] {
	return table[repository.OrderRow]{db: s.db, bucket: []byte(repository.TableOrders)}
}

func (s *Sink) Influences() repository.TableSink[repository.InfluenceRow] {
	return table[repository.InfluenceRow]{db: s.db, bucket: []byte(repository.TableInfluences)}
}

// Ping verifies the database file is still open and readable.
func (s *Sink) Ping(context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type table[Row any] struct {
	db     *bolt.DB
	bucket []byte
}

// Replace drops and recreates the bucket in a single write transaction.
func (t table[Row]) Replace(_ context.Context, rows []Row) error {
	if t.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return t.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(t.bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(t.bucket)
		if err != nil {
			return err
		}
		for i, row := range rows {
			payload, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if err := b.Put(buildKey(i, row), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadAll returns rows in the order they were written.
func (t table[Row]) ReadAll(context.Context) ([]Row, error) {
	if t.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var rows []Row
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var row Row
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("decode %s row %q: %w", t.bucket, k, err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

type keyed interface {
	Key() string
}

// buildKey keeps cursor order equal to write order.
func buildKey(seq int, row any) []byte {
	id := ""
	if k, ok := row.(keyed); ok {
		id = k.Key()
	}
	return []byte(fmt.Sprintf("%020d_%s", seq, id))
}

var _ repository.Sink = (*Sink)(nil)

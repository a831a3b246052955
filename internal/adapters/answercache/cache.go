// Package answercache persists questionnaire answers between sessions as a
// flat map keyed by prompt ID.
package answercache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("answers")

// Cache is a bbolt-backed answer store.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache file.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("answercache: create dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("answercache: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("answercache: create bucket: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the file lock.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("answercache: close: %w", err)
	}
	return nil
}

// Load returns every cached answer.
func (c *Cache) Load(_ context.Context) (map[string]string, error) {
	out := make(map[string]string)
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("answercache: load: %w", err)
	}
	return out, nil
}

// Save merges answers into the cache. Empty values delete their key.
func (c *Cache) Save(_ context.Context, answers map[string]string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for k, v := range answers {
			if v == "" {
				if err := b.Delete([]byte(k)); err != nil {
					return err
				}
				continue
			}
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return fmt.Errorf("put %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("answercache: save: %w", err)
	}
	return nil
}

// Clear removes every cached answer.
func (c *Cache) Clear(_ context.Context) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("answercache: clear: %w", err)
	}
	return nil
}

// Package boltstore persists conversations, recommendation sets, CVs and profiles in a single
// bbolt file, one JSON document per key. It suits single-node deployments without Redis.
package boltstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketConversations   = []byte("conversations")
	bucketRecommendations = []byte("recommendations")
	bucketCVs             = []byte("cvs")
	bucketProfiles        = []byte("profiles")
)

// DB is an open bbolt file shared by the stores.
type DB struct {
	db *bolt.DB
}

// Open creates the file and its buckets when missing.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt file: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketConversations, bucketRecommendations, bucketCVs, bucketProfiles} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the file lock.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) get(bucket []byte, key string, dst any) (bool, error) {
	found := false
	err := d.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, dst)
	})
	if err != nil {
		return false, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return found, nil
}

func (d *DB) put(bucket []byte, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), raw)
	})
}

func (d *DB) delete(bucket []byte, key string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// conversationKey separates user and channel with a byte channel ids can never contain.
func conversationKey(userID, channelID string) string {
	return userID + "\x00" + channelID
}

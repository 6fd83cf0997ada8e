package metadata

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bktMetadata = []byte("metadata")

// BoltRepository keeps values in a single bbolt bucket.
type BoltRepository struct {
	db *bolt.DB
}

// NewBoltRepository opens (or creates) the bolt file at path. Opening fails
// after a second if another process holds the file lock.
func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bktMetadata)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bktMetadata).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction
			value = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *BoltRepository) Put(ctx context.Context, values map[string][]byte) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktMetadata)
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return fmt.Errorf("set metadata[%s]: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

func (r *BoltRepository) Delete(ctx context.Context, keys ...string) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktMetadata)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return fmt.Errorf("delete metadata[%s]: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (r *BoltRepository) Close() error {
	return r.db.Close()
}

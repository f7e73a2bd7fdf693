package kvdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store  *bolt.DB
	logger logger.Logger
}

var _ DB = (*BoltDB)(nil)

const advocatesBucket = "advocates"

var errBucketNotFound = errors.New("bucket not found")

func New(logger logger.Logger, cfg *config.Config) (*BoltDB, error) {
	return Open(logger, cfg.GetKVDBPath())
}

func Open(logger logger.Logger, kvDBPath string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(kvDBPath), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", kvDBPath)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	store, err := bolt.Open(kvDBPath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", kvDBPath)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		store:  store,
		logger: logger,
	}

	if err := boltDB.initBucket(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return boltDB, nil
}

func (b *BoltDB) initBucket() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(advocatesBucket))
		if err != nil {
			b.logger.Error("failed to create bucket", "err", err.Error())
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
}

func (b *BoltDB) Set(key string, value []byte) error {
	return b.SetMany(map[string][]byte{key: value})
}

// SetMany writes all entries in a single transaction.
func (b *BoltDB) SetMany(entries map[string][]byte) error {
	for key := range entries {
		if key == "" {
			b.logger.Error("key cannot be empty", "key", key)
			return &InvalidKeyError{
				Key:    key,
				Reason: "key cannot be empty",
			}
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(advocatesBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", advocatesBucket)
			return errBucketNotFound
		}

		for key, value := range entries {
			if err := bucket.Put([]byte(key), value); err != nil {
				b.logger.Error("failed to set key", "key", key, "err", err.Error())
				return fmt.Errorf("failed to set key %s: %w", key, err)
			}
		}

		return nil
	})
}

func (b *BoltDB) Get(key string) ([]byte, error) {
	values, err := b.GetMany([]string{key})
	if err != nil {
		return nil, err
	}

	return values[0], nil
}

// GetMany returns the values in key order. A single missing key fails the
// whole read with a NotFoundError.
func (b *BoltDB) GetMany(keys []string) ([][]byte, error) {
	values := make([][]byte, len(keys))
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(advocatesBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", advocatesBucket)
			return errBucketNotFound
		}

		for i, key := range keys {
			if key == "" {
				return &InvalidKeyError{
					Key:    key,
					Reason: "key cannot be empty",
				}
			}

			v := bucket.Get([]byte(key))
			if v == nil {
				return &NotFoundError{Key: key}
			}

			// bbolt values are only valid for the life of the transaction.
			values[i] = make([]byte, len(v))
			copy(values[i], v)
		}
		return nil
	})

	if err != nil {
		b.logger.Error("failed to get keys", "count", len(keys), "err", err.Error())
		return nil, err
	}

	return values, nil
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

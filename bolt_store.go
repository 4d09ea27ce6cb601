package main

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

var stateBucket = []byte("state")

// BoltStore keeps state in a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

func (b *BoltStore) Initialize(path string) error {
	// bbolt holds an exclusive file lock; fail instead of hanging when
	// another minilib process has the database open.
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}
	b.db = db
	return nil
}

func (b *BoltStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *BoltStore) Clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(stateBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(stateBucket)
		return err
	})
}

func (b *BoltStore) Get(key string) (value string, ok bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction.
		value, ok = string(v), true
		return nil
	})
	return value, ok, err
}

func (b *BoltStore) Set(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put([]byte(key), []byte(value))
	})
}

func (b *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

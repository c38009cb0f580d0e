package store

import (
	"bytes"
	"context"
	"time"

	"github.com/boltdb/bolt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var formsBucket = []byte("forms")

// Bolt stores documents in a single bucket of a bolt database file.
type Bolt struct {
	DB *bolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &PersistenceError{Op: "open", Key: path, Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(formsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Key: path, Err: err}
	}
	return &Bolt{DB: db}, nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	if err := b.DB.Close(); err != nil {
		return &PersistenceError{Op: "close", Err: err}
	}
	return nil
}

func (b *Bolt) Read(ctx context.Context, key string) (schema.Form, bool, error) {
	if err := checkContext(ctx, "read", key); err != nil {
		return schema.Form{}, false, err
	}
	var data []byte
	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(formsBucket)
		if bucket == nil {
			return nil
		}
		// bolt values are only valid inside the transaction
		if raw := bucket.Get([]byte(key)); raw != nil {
			data = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return schema.Form{}, false, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	form, ok := decode(key, data)
	return form, ok, nil
}

func (b *Bolt) Write(ctx context.Context, key string, form schema.Form) error {
	if err := checkContext(ctx, "write", key); err != nil {
		return err
	}
	data, err := encode(key, form)
	if err != nil {
		return err
	}
	return b.put(key, data)
}

// Raw stores bytes as-is, bypassing encoding.
func (b *Bolt) Raw(key string, data []byte) error {
	return b.put(key, data)
}

func (b *Bolt) put(key string, data []byte) error {
	err := b.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(formsBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := checkContext(ctx, "delete", key); err != nil {
		return err
	}
	err := b.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(formsBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return &PersistenceError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (b *Bolt) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := checkContext(ctx, "keys", prefix); err != nil {
		return nil, err
	}
	var keys []string
	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(formsBucket)
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "keys", Key: prefix, Err: err}
	}
	return keys, nil
}

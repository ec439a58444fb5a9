package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"
)

// envelope wraps every stored record with the version counter used for
// conflict detection. The counter bumps on every committed write.
type envelope struct {
	Version uint64          `json:"v"`
	Data    json.RawMessage `json:"d"`
}

// BoltStore implements Store on an embedded BoltDB file. One bucket per
// collection. Commits run inside a single Bolt update, so read-set
// validation and write application are atomic and durable together.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and ensures a bucket exists for
// every named collection.
func Open(path string, collections ...string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		for _, c := range collections {
			if _, err := btx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create collections: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// NewID allocates a store-unique identifier.
func (s *BoltStore) NewID() string {
	return uuid.NewString()
}

// Get performs a point read outside any transaction.
func (s *BoltStore) Get(ctx context.Context, collection, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		b := btx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode record %s/%s: %w", collection, key, err)
		}
		return json.Unmarshal(env.Data, dst)
	})
}

// Scan iterates every record of a collection, passing the raw document
// bytes to fn. Pure read, no version bookkeeping.
func (s *BoltStore) Scan(ctx context.Context, collection string, fn func(key string, data []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		b := btx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		return b.ForEach(func(k, v []byte) error {
			var env envelope
			if err := json.Unmarshal(v, &env); err != nil {
				return fmt.Errorf("decode record %s/%s: %w", collection, k, err)
			}
			return fn(string(k), env.Data)
		})
	})
}

// RunTransaction implements the optimistic protocol: every read inside fn
// records the version it saw, and the commit re-checks all of them inside
// one Bolt update before applying the staged writes. A transaction that
// stages nothing commits trivially.
func (s *BoltStore) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := newTx(s.readVersioned)
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.writes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

// readVersioned returns the committed version and document bytes for a key.
// Missing records report version zero with nil data.
func (s *BoltStore) readVersioned(collection, key string) (uint64, []byte, error) {
	var version uint64
	var data []byte

	err := s.db.View(func(btx *bolt.Tx) error {
		b := btx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode record %s/%s: %w", collection, key, err)
		}
		version = env.Version
		data = append([]byte(nil), env.Data...)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return version, data, nil
}

func (s *BoltStore) commit(tx *Tx) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		// Validate the read set first: any record that moved since it was
		// read aborts the whole unit of work with no partial writes.
		for rk, readVersion := range tx.reads {
			current, err := bucketVersion(btx, rk.collection, rk.key)
			if err != nil {
				return err
			}
			if current != readVersion {
				return ErrConflict
			}
		}

		for _, w := range tx.writes {
			b := btx.Bucket([]byte(w.collection))
			if b == nil {
				return fmt.Errorf("unknown collection %q", w.collection)
			}
			current, err := bucketVersion(btx, w.collection, w.key)
			if err != nil {
				return err
			}
			env, err := json.Marshal(envelope{Version: current + 1, Data: w.data})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(w.key), env); err != nil {
				return err
			}
		}
		return nil
	})
}

func bucketVersion(btx *bolt.Tx, collection, key string) (uint64, error) {
	b := btx.Bucket([]byte(collection))
	if b == nil {
		return 0, fmt.Errorf("unknown collection %q", collection)
	}
	raw := b.Get([]byte(key))
	if raw == nil {
		return 0, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("decode record %s/%s: %w", collection, key, err)
	}
	return env.Version, nil
}

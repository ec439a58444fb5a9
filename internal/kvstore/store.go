// Package kvstore provides the transactional document store the checkout
// engine runs against: point reads by collection and key, staged writes, a
// single atomic commit with conflict detection, and store-unique id
// generation. Transactions are optimistic: reads record a version token and
// the commit re-validates every read record, rejecting the whole unit of
// work when any of them changed in the meantime.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned by a commit whose read set was modified by a
	// concurrent transaction. It is distinguishable from every business
	// error so callers can surface it as a retryable outcome.
	ErrConflict = errors.New("transaction conflict: read record modified concurrently")

	// ErrReadAfterWrite is returned when a transaction reads after staging a
	// write. All reads must precede writes so every read comes from the same
	// committed snapshot.
	ErrReadAfterWrite = errors.New("transaction reads must precede staged writes")
)

// Store is the narrow contract the checkout engine depends on.
// Consumers define this interface, not the Bolt implementation.
type Store interface {
	// Get performs a point read outside any transaction.
	Get(ctx context.Context, collection, key string, dst any) error

	// NewID allocates a store-unique identifier. Identifiers are never
	// reused, so an id allocated for an aborted transaction simply never
	// appears in the store.
	NewID() string

	// RunTransaction runs fn against a fresh transaction and atomically
	// commits its staged writes. An error from fn aborts the transaction
	// with no visible effects and is returned unchanged; a commit-time
	// conflict aborts the same way and returns ErrConflict.
	RunTransaction(ctx context.Context, fn func(tx *Tx) error) error
}

// Scanner is the optional read-side extension used by list queries. It is
// kept off Store so the engine's dependency stays minimal.
type Scanner interface {
	Scan(ctx context.Context, collection string, fn func(key string, data []byte) error) error
}

type recordKey struct {
	collection string
	key        string
}

type stagedWrite struct {
	collection string
	key        string
	data       []byte
}

// Tx collects a read set and a staged write set. Reads go against the last
// committed state; writes stay buffered and invisible until the commit
// validates that no read record changed since it was read.
type Tx struct {
	read   func(collection, key string) (version uint64, data []byte, err error)
	reads  map[recordKey]uint64
	writes []stagedWrite
	staged map[recordKey]int
}

func newTx(read func(collection, key string) (uint64, []byte, error)) *Tx {
	return &Tx{
		read:   read,
		reads:  make(map[recordKey]uint64),
		staged: make(map[recordKey]int),
	}
}

// Get reads a record into dst and adds it to the transaction's read set.
// A missing record is recorded at version zero and reported as ErrNotFound,
// so a concurrent create of the same key still conflicts at commit time.
func (tx *Tx) Get(collection, key string, dst any) error {
	if len(tx.writes) > 0 {
		return ErrReadAfterWrite
	}
	version, data, err := tx.read(collection, key)
	if err != nil {
		return err
	}
	tx.reads[recordKey{collection, key}] = version
	if data == nil {
		return ErrNotFound
	}
	return json.Unmarshal(data, dst)
}

// Set stages a write. Staging the same key twice keeps only the last value.
// Nothing becomes visible until the surrounding commit succeeds.
func (tx *Tx) Set(collection, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	rk := recordKey{collection, key}
	if i, ok := tx.staged[rk]; ok {
		tx.writes[i].data = data
		return nil
	}
	tx.staged[rk] = len(tx.writes)
	tx.writes = append(tx.writes, stagedWrite{collection: collection, key: key, data: data})
	return nil
}

package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), "docs")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func put(t *testing.T, s *BoltStore, key string, doc testDoc) {
	t.Helper()
	err := s.RunTransaction(context.Background(), func(tx *Tx) error {
		return tx.Set("docs", key, doc)
	})
	require.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	var doc testDoc
	err := s.Get(context.Background(), "docs", "missing", &doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommit_MakesWritesVisible(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	put(t, s, "a", testDoc{Name: "first", Count: 1})

	var doc testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &doc))
	assert.Equal(t, "first", doc.Name)
	assert.Equal(t, 1, doc.Count)
}

func TestNewID_Unique(t *testing.T) {
	s := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.NewID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestRunTransaction_FnErrorDiscardsStagedWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(tx *Tx) error {
		require.NoError(t, tx.Set("docs", "a", testDoc{Name: "staged"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing staged before the failure may ever become visible.
	var doc testDoc
	assert.ErrorIs(t, s.Get(ctx, "docs", "a", &doc), ErrNotFound)
}

func TestRunTransaction_ReadAfterWriteRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.RunTransaction(context.Background(), func(tx *Tx) error {
		if err := tx.Set("docs", "a", testDoc{}); err != nil {
			return err
		}
		var doc testDoc
		return tx.Get("docs", "b", &doc)
	})
	assert.ErrorIs(t, err, ErrReadAfterWrite)
}

func TestRunTransaction_ConflictOnConcurrentWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	put(t, s, "a", testDoc{Name: "v1", Count: 1})

	// First transaction reads "a", then a second transaction commits a new
	// value before the first one reaches its commit.
	err := s.RunTransaction(ctx, func(tx *Tx) error {
		var doc testDoc
		if err := tx.Get("docs", "a", &doc); err != nil {
			return err
		}

		put(t, s, "a", testDoc{Name: "v2", Count: 2})

		doc.Count++
		return tx.Set("docs", "a", doc)
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The racing writer's value survives untouched.
	var doc testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &doc))
	assert.Equal(t, "v2", doc.Name)
	assert.Equal(t, 2, doc.Count)
}

func TestRunTransaction_ConflictOnConcurrentCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Reading a missing record still pins its (zero) version: if another
	// transaction creates the key before commit, the commit must fail.
	err := s.RunTransaction(ctx, func(tx *Tx) error {
		var doc testDoc
		if err := tx.Get("docs", "a", &doc); !errors.Is(err, ErrNotFound) {
			return err
		}

		put(t, s, "a", testDoc{Name: "raced"})

		return tx.Set("docs", "a", testDoc{Name: "mine"})
	})
	assert.ErrorIs(t, err, ErrConflict)

	var doc testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &doc))
	assert.Equal(t, "raced", doc.Name)
}

func TestRunTransaction_ReadOnlyNeverConflicts(t *testing.T) {
	s := newTestStore(t)

	put(t, s, "a", testDoc{Name: "v1"})

	err := s.RunTransaction(context.Background(), func(tx *Tx) error {
		var doc testDoc
		return tx.Get("docs", "a", &doc)
	})
	assert.NoError(t, err)
}

func TestSet_LastWriteWinsWithinTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunTransaction(ctx, func(tx *Tx) error {
		if err := tx.Set("docs", "a", testDoc{Count: 1}); err != nil {
			return err
		}
		return tx.Set("docs", "a", testDoc{Count: 2})
	})
	require.NoError(t, err)

	var doc testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &doc))
	assert.Equal(t, 2, doc.Count)
}

func TestScan_VisitsEveryRecord(t *testing.T) {
	s := newTestStore(t)

	put(t, s, "a", testDoc{Name: "one"})
	put(t, s, "b", testDoc{Name: "two"})

	keys := make(map[string]bool)
	err := s.Scan(context.Background(), "docs", func(key string, data []byte) error {
		keys[key] = true
		assert.NotEmpty(t, data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, keys)
}

func TestGet_UnknownCollection(t *testing.T) {
	s := newTestStore(t)

	var doc testDoc
	err := s.Get(context.Background(), "nope", "a", &doc)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

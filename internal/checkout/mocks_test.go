package checkout

import (
	"context"
	"fmt"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
)

// MockStore implements kvstore.Store for testing the engine's behavior
// around the transaction boundary without a real database.
type MockStore struct {
	TxErr   error // returned by RunTransaction instead of committing
	TxCalls int   // how many transactions were opened
	ids     int
}

func (m *MockStore) Get(_ context.Context, _, _ string, _ any) error {
	return kvstore.ErrNotFound
}

func (m *MockStore) NewID() string {
	m.ids++
	return fmt.Sprintf("mock-id-%d", m.ids)
}

func (m *MockStore) RunTransaction(_ context.Context, fn func(tx *kvstore.Tx) error) error {
	m.TxCalls++
	return m.TxErr
}

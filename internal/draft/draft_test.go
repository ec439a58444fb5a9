package draft

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func testDraft() domain.CheckoutDraft {
	return domain.CheckoutDraft{
		Address: domain.ShippingAddress{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Address:    "12 Analytical St",
			City:       "London",
			District:   "Marylebone",
			PostalCode: "W1U 6TS",
			Phone:      "+44 20 7946 0000",
			Email:      "ada@example.com",
		},
		CardHolder: "Ada Lovelace",
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", testDraft()))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.CardHolder)
	assert.Equal(t, "London", got.Address.City)
	assert.False(t, got.SavedAt.IsZero())
}

func TestLoad_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestClear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", testDraft()))
	require.True(t, mr.Exists("checkout-draft:u1"))

	require.NoError(t, store.Clear(ctx, "u1"))
	assert.False(t, mr.Exists("checkout-draft:u1"))

	// Clearing twice is harmless.
	require.NoError(t, store.Clear(ctx, "u1"))
}

func TestSave_NeverStoresCardSecrets(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", testDraft()))

	raw, err := mr.Get("checkout-draft:u1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "card_number")
	assert.NotContains(t, raw, "cvv")
}

func TestDraftExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", testDraft()))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

package cart

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewRedisRepository(client, time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, log), mr
}

func testLine(productID string, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID: productID,
		Name:      "Tote",
		Price:     49.90,
		Quantity:  qty,
	}
}

func TestGet_MissingCartReturnsFreshEmpty(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	cart, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.True(t, cart.Empty())

	// A fresh cart is not persisted until the first mutation.
	assert.False(t, mr.Exists("cart:u1"))
}

func TestAddLine_PersistsAndMerges(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)
	cart, err := svc.AddLine(ctx, "u1", testLine("p1", 1))
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, mr.Exists("cart:u1"))

	reloaded, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.TotalItems())
}

func TestAddLine_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddLine(context.Background(), "u1", testLine("p1", 0))
	assert.Error(t, err)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, "u1", "p1", 0)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestSetQuantity_UnknownLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, "u1", "nope", 5)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u1", testLine("p2", 1))
	require.NoError(t, err)

	cart, err := svc.RemoveLine(ctx, "u1", "p1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "p2", cart.Lines[0].ProductID)

	_, err = svc.RemoveLine(ctx, "u1", "p1")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestClear_DropsStoredCart(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:u1"))

	require.NoError(t, svc.Clear(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))

	// Clearing an already-missing cart is fine.
	require.NoError(t, svc.Clear(ctx, "u1"))
}

func TestClear_LeavesOtherUsersAlone(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "u1", testLine("p1", 2))
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u2", testLine("p1", 1))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "u1"))
	assert.True(t, mr.Exists("cart:u2"))
}

func TestRepository_CartExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewRedisRepository(client, time.Minute)
	ctx := context.Background()

	cart := &domain.Cart{UserID: "u1"}
	cart.Add(testLine("p1", 1))
	require.NoError(t, repo.Save(ctx, cart))

	mr.FastForward(10 * time.Minute)

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

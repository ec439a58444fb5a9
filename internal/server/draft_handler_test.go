package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/draft"
)

func newDraftHandlerFixture(t *testing.T) *DraftHandler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDraftHandler(draft.NewStore(client, time.Hour), 5*time.Second)
}

func testDraftRequest(t *testing.T) *http.Request {
	t.Helper()
	body := jsonBody(t, DraftRequestDTO{
		Address:    domain.ShippingAddress{FirstName: "Ada", City: "London"},
		CardHolder: "Ada Lovelace",
	})
	return authedRequest(http.MethodPut, "/api/v1/checkout/draft", body, "u1")
}

func TestDraft_SaveReturnsBareNoContent(t *testing.T) {
	h := newDraftHandlerFixture(t)

	w := httptest.NewRecorder()
	h.Save(w, testDraftRequest(t))

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.Empty(t, w.Header().Get("Content-Type"))
}

func TestDraft_SaveLoadRoundTrip(t *testing.T) {
	h := newDraftHandlerFixture(t)

	w := httptest.NewRecorder()
	h.Save(w, testDraftRequest(t))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.Load(w, authedRequest(http.MethodGet, "/api/v1/checkout/draft", nil, "u1"))
	require.Equal(t, http.StatusOK, w.Code)

	var d domain.CheckoutDraft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "Ada Lovelace", d.CardHolder)
	assert.Equal(t, "London", d.Address.City)
}

func TestDraft_LoadMissing(t *testing.T) {
	h := newDraftHandlerFixture(t)

	w := httptest.NewRecorder()
	h.Load(w, authedRequest(http.MethodGet, "/api/v1/checkout/draft", nil, "u1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraft_ClearReturnsBareNoContent(t *testing.T) {
	h := newDraftHandlerFixture(t)

	w := httptest.NewRecorder()
	h.Save(w, testDraftRequest(t))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.Clear(w, authedRequest(http.MethodDelete, "/api/v1/checkout/draft", nil, "u1"))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.Empty(t, w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	h.Load(w, authedRequest(http.MethodGet, "/api/v1/checkout/draft", nil, "u1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraft_Unauthorized(t *testing.T) {
	h := newDraftHandlerFixture(t)

	w := httptest.NewRecorder()
	h.Load(w, authedRequest(http.MethodGet, "/api/v1/checkout/draft", nil, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

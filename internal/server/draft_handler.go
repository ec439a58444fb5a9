package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/draft"
)

type DraftHandler struct {
	drafts  *draft.Store
	timeout time.Duration
}

func NewDraftHandler(drafts *draft.Store, timeout time.Duration) *DraftHandler {
	return &DraftHandler{
		drafts:  drafts,
		timeout: timeout,
	}
}

type DraftRequestDTO struct {
	Address    domain.ShippingAddress `json:"address"`
	CardHolder string                 `json:"card_holder,omitempty"`
}

// PUT /api/v1/checkout/draft
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req DraftRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.drafts.Save(ctx, userID, domain.CheckoutDraft{
		Address:    req.Address,
		CardHolder: req.CardHolder,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "draft_unavailable", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/checkout/draft
func (h *DraftHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	d, err := h.drafts.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, draft.ErrDraftNotFound) {
			respondError(w, http.StatusNotFound, "draft_not_found", "no saved draft")
			return
		}
		respondError(w, http.StatusInternalServerError, "draft_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// DELETE /api/v1/checkout/draft
func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.drafts.Clear(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "draft_unavailable", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

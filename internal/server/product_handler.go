package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
)

// ProductHandler exposes the seeding/administration side of the inventory
// ledger. Catalog browsing proper is served elsewhere; this surface exists
// so stock can be provisioned and inspected.
type ProductHandler struct {
	ledger  *inventory.Ledger
	timeout time.Duration
}

func NewProductHandler(ledger *inventory.Ledger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		ledger:  ledger,
		timeout: timeout,
	}
}

// PUT /api/v1/products/{product_id}
func (h *ProductHandler) PutProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	var p inventory.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p.ID = productID
	if p.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_stock", "stock must not be negative")
		return
	}

	if err := h.ledger.Put(ctx, p); err != nil {
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	p, err := h.ledger.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, inventory.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

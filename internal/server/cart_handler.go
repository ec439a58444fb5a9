package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/cart"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
)

type CartHandler struct {
	carts   *cart.Service
	ledger  *inventory.Ledger
	timeout time.Duration
}

func NewCartHandler(carts *cart.Service, ledger *inventory.Ledger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		ledger:  ledger,
		timeout: timeout,
	}
}

type AddLineRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.Get(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cartDTO(c))
}

// POST /api/v1/cart/items
//
// The product's name, price and image are snapshotted into the line here, at
// add time; checkout never re-reads them from the catalog.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	p, err := h.ledger.Product(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, inventory.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", err.Error())
		return
	}

	c, err := h.carts.AddLine(ctx, userID, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, cartDTO(c))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	c, err := h.carts.SetQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "item_not_found", "product is not in the cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cartDTO(c))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	c, err := h.carts.RemoveLine(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "item_not_found", "product is not in the cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cartDTO(c))
}

type CartLineDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type CartResponseDTO struct {
	Lines      []CartLineDTO `json:"lines"`
	TotalItems int           `json:"total_items"`
	TotalPrice float64       `json:"total_price"`
}

func cartDTO(c *domain.Cart) CartResponseDTO {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return CartResponseDTO{
		Lines:      lines,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

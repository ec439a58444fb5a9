package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/order"
)

type OrdersHandler struct {
	orders  *order.Repository
	timeout time.Duration
}

func NewOrdersHandler(orders *order.Repository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type OrderResponseDTO struct {
	ID              string                 `json:"id"`
	TotalAmount     float64                `json:"total_amount"`
	Status          string                 `json:"status"`
	Items           []OrderItemDTO         `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Payment         domain.MaskedPayment   `json:"payment"`
	CreatedAt       string                 `json:"created_at"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListByUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "orders_unavailable", err.Error())
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, orderDTO(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	o, err := h.orders.Get(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
			return
		}
		respondError(w, http.StatusInternalServerError, "orders_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, orderDTO(o))
}

func orderDTO(o domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return OrderResponseDTO{
		ID:              o.ID,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		Payment:         o.Payment,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

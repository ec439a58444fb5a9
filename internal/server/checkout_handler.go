package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/cart"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/checkout"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/draft"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/validation"
)

type CheckoutHandler struct {
	engine  *checkout.Engine
	carts   *cart.Service
	drafts  *draft.Store
	log     *slog.Logger
	timeout time.Duration
}

func NewCheckoutHandler(engine *checkout.Engine, carts *cart.Service, drafts *draft.Store, log *slog.Logger, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		engine:  engine,
		carts:   carts,
		drafts:  drafts,
		log:     log,
		timeout: timeout,
	}
}

type CheckoutRequestDTO struct {
	Payment domain.PaymentInstrument `json:"payment"`
	Address domain.ShippingAddress   `json:"shipping_address"`
}

type CheckoutResponseDTO struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type ValidationErrorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	Violations []validation.Violation `json:"violations,omitempty"`
	Details    string                 `json:"details,omitempty"`
}

// POST /api/v1/checkout
//
// On success the session cart and any saved draft are cleared; on every
// failure path both are left untouched so the user can correct and resubmit.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.Get(ctx, userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", err.Error())
		return
	}

	receipt, err := h.engine.Submit(ctx, checkout.Submission{
		UserID:  userID,
		Cart:    *c,
		Payment: req.Payment,
		Address: req.Address,
	})
	if err != nil {
		h.respondFailure(w, err)
		return
	}

	// The order is durable at this point. Clearing the session state is
	// best-effort: a failure here must not turn a committed checkout into
	// an error response.
	requestID := getRequestID(r.Context())
	if err := h.carts.Clear(ctx, userID); err != nil {
		h.log.Error("clear cart after commit failed",
			"request_id", requestID, "user_id", userID, "order_id", receipt.OrderID, "error", err)
	}
	if err := h.drafts.Clear(ctx, userID); err != nil {
		h.log.Error("clear draft after commit failed",
			"request_id", requestID, "user_id", userID, "order_id", receipt.OrderID, "error", err)
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: receipt.OrderID,
		Total:   receipt.Total,
		Status:  receipt.Status.String(),
	})
}

func (h *CheckoutHandler) respondFailure(w http.ResponseWriter, err error) {
	switch checkout.Classify(err) {
	case checkout.FailureValidation:
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Error:      http.StatusText(http.StatusUnprocessableEntity),
				Code:       "validation_failed",
				Violations: verr.Violations,
			})
			return
		}
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
		case errors.Is(err, checkout.ErrMissingUser):
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		default:
			respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	case checkout.FailureInsufficientStock:
		var serr *inventory.InsufficientStockError
		if errors.As(err, &serr) {
			respondJSON(w, http.StatusConflict, StockErrorResponse{
				Error:     http.StatusText(http.StatusConflict),
				Code:      "insufficient_stock",
				ProductID: serr.ProductID,
				Name:      serr.Name,
				Available: serr.Available,
				Requested: serr.Requested,
			})
			return
		}
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case checkout.FailureConflict:
		respondError(w, http.StatusConflict, "transaction_conflict",
			"another checkout modified the same stock; safe to resubmit")
	default:
		respondError(w, http.StatusServiceUnavailable, "transient_failure",
			"transaction failed with no partial effects; safe to retry")
	}
}

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/cart"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/checkout"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/draft"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/order"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Engine  *checkout.Engine
	Carts   *cart.Service
	Drafts  *draft.Store
	Ledger  *inventory.Ledger
	Orders  *order.Repository
	Log     *slog.Logger
	Timeout time.Duration
}

// NewRouter assembles the HTTP surface: global middleware, health check and
// the versioned API routes, wrapped with otelhttp instrumentation.
func NewRouter(deps Deps) http.Handler {
	cartHandler := NewCartHandler(deps.Carts, deps.Ledger, deps.Timeout)
	checkoutHandler := NewCheckoutHandler(deps.Engine, deps.Carts, deps.Drafts, deps.Log, deps.Timeout)
	draftHandler := NewDraftHandler(deps.Drafts, deps.Timeout)
	ordersHandler := NewOrdersHandler(deps.Orders, deps.Timeout)
	productHandler := NewProductHandler(deps.Ledger, deps.Timeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.Timeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddLine)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveLine)
		})

		r.Post("/checkout", checkoutHandler.Submit)
		r.Route("/checkout/draft", func(r chi.Router) {
			r.Put("/", draftHandler.Save)
			r.Get("/", draftHandler.Load)
			r.Delete("/", draftHandler.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})

		r.Route("/products", func(r chi.Router) {
			r.Put("/{product_id}", productHandler.PutProduct)
			r.Get("/{product_id}", productHandler.GetProduct)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

package transport

import (
	"net/http"

	"quikmart/internal/middleware"
	"quikmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartLineRequest names a product and a quantity for it. Quantity is a
// pointer so an omitted value is rejected rather than read as zero.
type CartLineRequest struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// CartHandler handles HTTP requests for the caller's cart
type CartHandler struct {
	handlerBase
	cartService service.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger, debug bool) *CartHandler {
	return &CartHandler{
		handlerBase: handlerBase{logger: logger, debug: debug},
		cartService: cartService,
	}
}

// RegisterRoutes registers all cart routes; every one needs a session
func (h *CartHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.Get)
		r.Post("/add", h.Add)
		r.Put("/update", h.Update)
		r.Delete("/remove/{productId}", h.Remove)
		r.Delete("/clear", h.Clear)
	})
}

// Get returns the cart with products resolved
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(r.Context(), rc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Add merges a quantity of a product into the cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CartLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.cartService.Add(r.Context(), rc, req.ProductID, *req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Update sets the quantity of an existing line; zero or less removes it
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CartLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), rc, req.ProductID, *req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Remove drops a line if present
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(r.Context(), rc, chi.URLParam(r, "productId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), rc); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "cart cleared successfully"})
}

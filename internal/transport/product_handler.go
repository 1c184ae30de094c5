package transport

import (
	"net/http"

	"quikmart/internal/domain"
	"quikmart/internal/middleware"
	"quikmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest carries the writable product fields. Absent fields are nil;
// keys outside this set, such as seller, are dropped by the decoder.
type ProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category"`
	Available   *bool    `json:"available"`
	Hidden      *bool    `json:"hidden"`
}

// Patch converts the request into the service whitelist
func (p ProductRequest) Patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Available:   p.Available,
		Hidden:      p.Hidden,
	}
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	handlerBase
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger, debug bool) *ProductHandler {
	return &ProductHandler{
		handlerBase:    handlerBase{logger: logger, debug: debug},
		productService: productService,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(requireAuth).Get("/mine", h.ListMine)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/visibility", h.ToggleVisibility)
		})
	})
}

// List returns the storefront catalog
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListVisible(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListMine returns every product the caller sells
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	products, err := h.productService.ListMine(r.Context(), rc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product regardless of its flags
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create lists a new product sold by the caller
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), rc, req.Patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log(r).Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("seller_id", rc.UserID.Hex()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update merges the provided fields into the product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), rc, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes the product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.productService.Delete(r.Context(), rc, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.log(r).Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "product deleted successfully"})
}

// ToggleVisibility flips the hidden flag
func (h *ProductHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.caller(w, r)
	if !ok {
		return
	}

	product, err := h.productService.ToggleVisibility(r.Context(), rc, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

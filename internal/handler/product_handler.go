package handler

import (
	"net/http"

	"cargo-shop/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	products, err := h.service.GetAll(r.Context(), parsePagination(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ListFeatured handles GET /api/products/featured requests.
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	products, err := h.service.GetFeatured(r.Context(), parsePagination(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve featured products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cargo-shop/internal/middleware"
	"cargo-shop/internal/model"
	"cargo-shop/internal/payment"
	"cargo-shop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxWebhookBody bounds the webhook payload size.
const maxWebhookBody = 1 << 16

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service       service.OrderService
	webhookSecret string
	logger        zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, webhookSecret string, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("handler", "order").Logger(),
	}
}

// GetCartDetails handles GET /api/orders/get-cart-details requests. Product
// ids arrive as a comma-separated productIds query parameter; each preview
// line carries quantity 1, the client owns the real quantities until
// checkout.
func (h *OrderHandler) GetCartDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	raw := r.URL.Query().Get("productIds")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "productIds is required", h.logger)
		return
	}

	items := make([]model.CartItem, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id format", h.logger)
			return
		}
		items = append(items, model.CartItem{ProductID: id, Quantity: 1})
	}

	cart, err := h.service.GetCartDetails(r.Context(), items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// InitPayment handles POST /api/orders/init-payment requests. The response
// carries the payment session id the client redirects to.
func (h *OrderHandler) InitPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var items []model.CartItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	sessionID, err := h.service.CreateOrder(r.Context(), user, items)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": sessionID})
}

// Webhook handles POST /api/orders/webhook requests from the payment
// provider. The signature is verified before any business logic runs; a
// processing failure returns 500 so the provider's retry sees an error.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload", h.logger)
		return
	}

	event, err := payment.ConstructEvent(payload, r.Header.Get(payment.SignatureHeader), h.webhookSecret)
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook signature rejected")
		writeError(w, http.StatusBadRequest, "invalid signature", h.logger)
		return
	}

	if event.Type != payment.EventCheckoutSessionCompleted {
		h.logger.Debug().Str("event_type", event.Type).Msg("ignoring webhook event")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	session, err := event.CheckoutSession()
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed checkout session", h.logger)
		return
	}

	confirmation := model.PaymentConfirmation{
		SessionID: session.ID,
		Address:   session.Address(),
	}
	if raw, found := session.Metadata["user_public_id"]; found {
		if id, err := uuid.Parse(raw); err == nil {
			confirmation.UserPublicID = id
		}
	}

	if err := h.service.ConfirmPayment(r.Context(), confirmation); err != nil {
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("payment confirmation failed")
		writeError(w, http.StatusInternalServerError, "failed to process event", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// ListForUser handles GET /api/orders/user requests: the authenticated
// buyer's orders, newest first.
func (h *OrderHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	orders, err := h.service.FindOrdersForUser(r.Context(), user.PublicID, parsePagination(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListForAdmin handles GET /api/orders/admin requests: every order, with
// buyer email and formatted address, for administrators only.
func (h *OrderHandler) ListForAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}
	if !user.HasAuthority(model.AuthorityAdmin) {
		writeError(w, http.StatusForbidden, "administrator role required", h.logger)
		return
	}

	orders, err := h.service.FindAllOrders(r.Context(), parsePagination(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// parsePagination reads page/size query parameters, falling back to
// defaults on absent or malformed values.
func parsePagination(r *http.Request) model.Pagination {
	page := model.Pagination{}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			page.Page = value
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			page.Size = value
		}
	}
	return page.Normalise()
}

package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cargo-shop/internal/model"

	"github.com/rs/zerolog"
)

// Gateway creates hosted checkout sessions with the payment provider.
type Gateway interface {
	// CreateSession opens a checkout session for the given buyer and cart.
	// Each cart item is priced from its resolved product; items whose
	// product id is not among the resolved products carry no line item and
	// are left for the caller to reject. Returns the opaque session id.
	CreateSession(ctx context.Context, user *model.User, products []model.Product, items []model.CartItem) (string, error)
}

// Config holds the gateway client configuration.
type Config struct {
	APIKey        string
	APIBaseURL    string
	ClientBaseURL string
	Currency      string
}

// checkoutGateway implements Gateway against the provider's
// form-encoded checkout-sessions API.
type checkoutGateway struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewGateway creates a new checkout-session gateway client.
func NewGateway(cfg Config, logger zerolog.Logger) Gateway {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return &checkoutGateway{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// MinorUnits converts a decimal price into the provider's minor currency
// units (cents).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// sessionResponse is the subset of the provider's create-session response
// the workflow consumes.
type sessionResponse struct {
	ID string `json:"id"`
}

// CreateSession opens a checkout session for the given buyer and cart.
func (g *checkoutGateway) CreateSession(ctx context.Context, user *model.User, products []model.Product, items []model.CartItem) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", user.Email)
	form.Set("metadata[user_public_id]", user.PublicID.String())
	form.Set("billing_address_collection", "required")
	form.Set("success_url", g.cfg.ClientBaseURL+"/cart/success?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", g.cfg.ClientBaseURL+"/cart/failure")

	lineIndex := 0
	for _, item := range items {
		product, found := findProduct(products, item)
		if !found {
			// The unresolved item is surfaced by the order workflow after
			// the session exists; the session simply omits it.
			g.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Msg("cart item has no resolved product, omitting from session")
			continue
		}

		prefix := fmt.Sprintf("line_items[%d]", lineIndex)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", strings.ToLower(g.cfg.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(MinorUnits(product.Price), 10))
		form.Set(prefix+"[price_data][product_data][name]", product.Name)
		form.Set(prefix+"[price_data][product_data][metadata][product_id]", product.PublicID.String())
		lineIndex++
	}

	endpoint := strings.TrimRight(g.cfg.APIBaseURL, "/") + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("checkout session request failed")
		return "", fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read session response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error().
			Int("status", resp.StatusCode).
			Msg("checkout session creation rejected")
		return "", fmt.Errorf("checkout session creation rejected with status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" {
		return "", fmt.Errorf("session response missing id")
	}

	g.logger.Info().
		Str("session_id", session.ID).
		Int("line_count", lineIndex).
		Msg("checkout session created")

	return session.ID, nil
}

func findProduct(products []model.Product, item model.CartItem) (model.Product, bool) {
	for _, p := range products {
		if p.PublicID == item.ProductID {
			return p, true
		}
	}
	return model.Product{}, false
}

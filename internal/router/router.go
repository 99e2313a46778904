package router

import (
	"net/http"

	"cargo-shop/internal/handler"
	"cargo-shop/internal/middleware"
	"cargo-shop/internal/service"

	"github.com/rs/zerolog"
)

// publicPaths pass through without a bearer token. The webhook endpoint
// carries its own signature scheme; cart preview and catalogue reads are
// open to anonymous browsing.
var publicPaths = []string{
	"/health",
	"/api/orders/webhook",
	"/api/orders/get-cart-details",
	"/api/products",
	"/api/products/featured",
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	users service.UserService,
	jwtSecret string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/api/products", productHandler.List)
	mux.HandleFunc("/api/products/featured", productHandler.ListFeatured)

	mux.HandleFunc("/api/orders/get-cart-details", orderHandler.GetCartDetails)
	mux.HandleFunc("/api/orders/init-payment", orderHandler.InitPayment)
	mux.HandleFunc("/api/orders/webhook", orderHandler.Webhook)
	mux.HandleFunc("/api/orders/user", orderHandler.ListForUser)
	mux.HandleFunc("/api/orders/admin", orderHandler.ListForAdmin)

	// Apply middleware in order: Recovery -> Logging -> CORS -> BearerAuth
	var h http.Handler = mux
	h = middleware.BearerAuth(jwtSecret, users, publicPaths, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

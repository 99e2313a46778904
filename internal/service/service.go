package service

import (
	"context"
	"time"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
)

// OrderService orchestrates cart pricing, order creation and
// payment confirmation.
type OrderService interface {
	// GetCartDetails resolves cart items to live product data for display
	// before checkout. Items whose product id is unknown are silently
	// omitted.
	GetCartDetails(ctx context.Context, items []model.CartItem) ([]model.CartProduct, error)

	// CreateOrder prices the cart against live products, opens a payment
	// session and persists a PENDING order correlated with it. Returns the
	// session id for the client redirect.
	CreateOrder(ctx context.Context, user *model.User, items []model.CartItem) (string, error)

	// ConfirmPayment processes a completed checkout session: marks the
	// order PAID, decrements stock per line and updates the buyer's
	// shipping address.
	ConfirmPayment(ctx context.Context, confirmation model.PaymentConfirmation) error

	// FindOrdersForUser retrieves the buyer's orders with pagination.
	FindOrdersForUser(ctx context.Context, userPublicID uuid.UUID, page model.Pagination) (model.Page[model.Order], error)

	// FindAllOrders retrieves all orders for the administrative view.
	FindAllOrders(ctx context.Context, page model.Pagination) (model.Page[model.Order], error)
}

// IdPToken is the subset of a verified access token the user
// synchronization consumes.
type IdPToken struct {
	Subject      string
	Roles        []string
	LastSignedIn time.Time
}

// UserService synchronizes buyers against the external identity provider.
type UserService interface {
	// SyncWithIdP resolves the token subject against the identity provider,
	// creating the user on first sight and refreshing stored attributes
	// when the token reports a newer sign-in. Returns the stored user.
	SyncWithIdP(ctx context.Context, token IdPToken) (*model.User, error)

	// GetByPublicID retrieves a user by public id. Returns nil when absent.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error)
}

// ProductService defines catalogue read operations.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error)

	// GetFeatured retrieves featured products with pagination.
	GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error)

	// GetByPublicIDs retrieves products by their public ids.
	GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

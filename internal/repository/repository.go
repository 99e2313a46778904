package repository

import (
	"context"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves products with pagination support.
	GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error)

	// GetFeatured retrieves featured products with pagination support.
	GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error)

	// GetByPublicIDs retrieves products by their public ids in a single
	// batch. Ids without a matching product are silently absent from the
	// result.
	GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// DecrementStock reduces a product's stock by the given quantity within
	// the provided transaction.
	DecrementStock(ctx context.Context, tx pgx.Tx, publicID uuid.UUID, quantity int) error

	// Upsert inserts or refreshes a catalogue entry, keyed by public id.
	Upsert(ctx context.Context, product *model.Product) error
}

// OrderRepository defines the interface for order aggregate persistence.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Save inserts a new order and its lines within the provided transaction.
	Save(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetBySessionID retrieves the order correlated with a payment session,
	// including its lines. Returns nil when no order matches.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)

	// UpdateStatus persists an order's status within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, status model.OrderStatus, publicID uuid.UUID) error

	// GetAllByUser retrieves a buyer's orders, newest first, with pagination.
	GetAllByUser(ctx context.Context, userPublicID uuid.UUID, page model.Pagination) (model.Page[model.Order], error)

	// GetAll retrieves all orders for the administrative view, including the
	// buyer's email and formatted address.
	GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Order], error)
}

// UserRepository defines the interface for buyer identity persistence.
type UserRepository interface {
	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByPublicID retrieves a user by public id. Returns nil when absent.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error)

	// Upsert inserts or refreshes a user row, keyed by public id.
	Upsert(ctx context.Context, user *model.User) error

	// UpdateAddress persists a buyer's shipping address within the provided
	// transaction.
	UpdateAddress(ctx context.Context, tx pgx.Tx, userPublicID uuid.UUID, address model.Address) error
}

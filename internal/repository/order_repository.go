package repository

import (
	"context"
	"errors"
	"fmt"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Save inserts a new order and its lines within the provided transaction.
func (r *orderRepository) Save(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	orderQuery := `
		INSERT INTO orders (public_id, status, payment_session_id, user_public_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, orderQuery,
		order.PublicID, order.Status, order.PaymentSessionID,
		order.UserPublicID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_public_id", order.PublicID.String()).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if len(order.Lines) == 0 {
		return nil
	}

	lineQuery := `
		INSERT INTO order_lines (order_public_id, product_public_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, line := range order.Lines {
		batch.Queue(lineQuery, order.PublicID, line.ProductPublicID, line.Name, line.UnitPrice, line.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(order.Lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_public_id", order.PublicID.String()).
				Str("product_public_id", order.Lines[i].ProductPublicID.String()).
				Msg("failed to insert order line")
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_public_id", order.PublicID.String()).
		Int("line_count", len(order.Lines)).
		Msg("order saved")

	return nil
}

// GetBySessionID retrieves the order correlated with a payment session,
// including its lines. Returns nil when no order matches.
func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	orderQuery := `
		SELECT public_id, status, payment_session_id, user_public_id, created_at, updated_at
		FROM orders
		WHERE payment_session_id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, sessionID).Scan(
		&order.PublicID,
		&order.Status,
		&order.PaymentSessionID,
		&order.UserPublicID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("session_id", sessionID).Msg("no order for payment session")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to query order by session id")
		return nil, fmt.Errorf("failed to query order by session id: %w", err)
	}

	lines, err := r.getLines(ctx, order.PublicID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

// UpdateStatus persists an order's status within the provided transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, status model.OrderStatus, publicID uuid.UUID) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE public_id = $2
	`

	_, err := tx.Exec(ctx, query, status, publicID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_public_id", publicID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// GetAllByUser retrieves a buyer's orders, newest first, with pagination.
func (r *orderRepository) GetAllByUser(ctx context.Context, userPublicID uuid.UUID, page model.Pagination) (model.Page[model.Order], error) {
	page = page.Normalise()

	query := `
		SELECT public_id, status, payment_session_id, user_public_id, created_at, updated_at
		FROM orders
		WHERE user_public_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userPublicID, page.Size, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Str("user_public_id", userPublicID.String()).Msg("failed to query user orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(ctx, rows, false)
	if err != nil {
		return model.Page[model.Order]{}, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_public_id = $1`, userPublicID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count user orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to count user orders: %w", err)
	}

	return model.NewPage(orders, page, total), nil
}

// GetAll retrieves all orders for the administrative view, including the
// buyer's email and formatted address.
func (r *orderRepository) GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Order], error) {
	page = page.Normalise()

	query := `
		SELECT o.public_id, o.status, o.payment_session_id, o.user_public_id, o.created_at, o.updated_at,
		       u.email,
		       TRIM(BOTH ', ' FROM CONCAT_WS(', ', NULLIF(u.street, ''), NULLIF(u.city, ''), NULLIF(u.zip_code, ''), NULLIF(u.country, '')))
		FROM orders o
		JOIN users u ON u.public_id = o.user_public_id
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, page.Size, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query all orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to query all orders: %w", err)
	}
	defer rows.Close()

	orders, err := r.collectOrders(ctx, rows, true)
	if err != nil {
		return model.Page[model.Order]{}, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return model.Page[model.Order]{}, fmt.Errorf("failed to count orders: %w", err)
	}

	return model.NewPage(orders, page, total), nil
}

// collectOrders scans order rows and attaches their lines.
func (r *orderRepository) collectOrders(ctx context.Context, rows pgx.Rows, adminView bool) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var order model.Order
		dest := []any{
			&order.PublicID, &order.Status, &order.PaymentSessionID,
			&order.UserPublicID, &order.CreatedAt, &order.UpdatedAt,
		}
		if adminView {
			dest = append(dest, &order.UserEmail, &order.UserAddress)
		}
		if err := rows.Scan(dest...); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		lines, err := r.getLines(ctx, orders[i].PublicID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

// getLines loads the ordered lines of a single order.
func (r *orderRepository) getLines(ctx context.Context, orderPublicID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT product_public_id, name, unit_price, quantity
		FROM order_lines
		WHERE order_public_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderPublicID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_public_id", orderPublicID.String()).
			Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ProductPublicID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

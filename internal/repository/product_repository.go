package repository

import (
	"context"
	"fmt"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `public_id, name, brand, price, picture, featured, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.PublicID, &p.Name, &p.Brand, &p.Price, &p.Picture,
		&p.Featured, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetAll retrieves products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	return r.queryPage(ctx, page, fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, productColumns), `SELECT COUNT(*) FROM products`)
}

// GetFeatured retrieves featured products with pagination support.
func (r *productRepository) GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	return r.queryPage(ctx, page, fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE featured
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, productColumns), `SELECT COUNT(*) FROM products WHERE featured`)
}

func (r *productRepository) queryPage(ctx context.Context, page model.Pagination, listQuery, countQuery string) (model.Page[model.Product], error) {
	page = page.Normalise()

	rows, err := r.pool.Query(ctx, listQuery, page.Size, page.Offset())
	if err != nil {
		r.logger.Error().Err(err).Int("page", page.Page).Int("size", page.Size).Msg("failed to query products")
		return model.Page[model.Product]{}, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return model.Page[model.Product]{}, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return model.Page[model.Product]{}, fmt.Errorf("error iterating products: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return model.Page[model.Product]{}, fmt.Errorf("failed to count products: %w", err)
	}

	return model.NewPage(products, page, total), nil
}

// GetByPublicIDs retrieves products by their public ids in a single batch.
func (r *productRepository) GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE public_id = ANY($1)
		ORDER BY name
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by public ids")
		return nil, fmt.Errorf("failed to query products by public ids: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// DecrementStock reduces a product's stock by the given quantity within the
// provided transaction.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, publicID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE public_id = $1
	`

	tag, err := tx.Exec(ctx, query, publicID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_public_id", publicID.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_public_id", publicID.String()).
			Msg("stock decrement matched no product")
	}

	return nil
}

// Upsert inserts or refreshes a catalogue entry, keyed by public id.
func (r *productRepository) Upsert(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (public_id, name, brand, price, picture, featured, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (public_id) DO UPDATE
		SET name = EXCLUDED.name,
		    brand = EXCLUDED.brand,
		    price = EXCLUDED.price,
		    picture = EXCLUDED.picture,
		    featured = EXCLUDED.featured,
		    stock = EXCLUDED.stock,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		product.PublicID, product.Name, product.Brand, product.Price,
		product.Picture, product.Featured, product.Stock)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_public_id", product.PublicID.String()).
			Msg("failed to upsert product")
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

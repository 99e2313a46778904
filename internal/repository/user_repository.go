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

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = `public_id, email, first_name, last_name, image_url, authorities,
		street, city, zip_code, country, last_modified_at, last_seen_at, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.PublicID, &u.Email, &u.FirstName, &u.LastName, &u.ImageURL,
		&u.Authorities, &u.Address.Street, &u.Address.City, &u.Address.ZipCode,
		&u.Address.Country, &u.LastModifiedAt, &u.LastSeenAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by email. Returns nil when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("email", email).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	return user, nil
}

// GetByPublicID retrieves a user by public id. Returns nil when absent.
func (r *userRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE public_id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_public_id", publicID.String()).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_public_id", publicID.String()).Msg("failed to query user by public id")
		return nil, fmt.Errorf("failed to query user by public id: %w", err)
	}

	return user, nil
}

// Upsert inserts or refreshes a user row, keyed by public id. The shipping
// address is owned by the confirmation workflow and left untouched on
// conflict.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (public_id, email, first_name, last_name, image_url, authorities,
			street, city, zip_code, country, last_modified_at, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (public_id) DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    image_url = EXCLUDED.image_url,
		    authorities = EXCLUDED.authorities,
		    last_modified_at = EXCLUDED.last_modified_at,
		    last_seen_at = EXCLUDED.last_seen_at
	`

	_, err := r.pool.Exec(ctx, query,
		user.PublicID, user.Email, user.FirstName, user.LastName, user.ImageURL,
		user.Authorities, user.Address.Street, user.Address.City,
		user.Address.ZipCode, user.Address.Country,
		user.LastModifiedAt, user.LastSeenAt, user.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_public_id", user.PublicID.String()).
			Msg("failed to upsert user")
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// UpdateAddress persists a buyer's shipping address within the provided
// transaction.
func (r *userRepository) UpdateAddress(ctx context.Context, tx pgx.Tx, userPublicID uuid.UUID, address model.Address) error {
	query := `
		UPDATE users
		SET street = $2, city = $3, zip_code = $4, country = $5, last_modified_at = NOW()
		WHERE public_id = $1
	`

	tag, err := tx.Exec(ctx, query, userPublicID,
		address.Street, address.City, address.ZipCode, address.Country)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_public_id", userPublicID.String()).
			Msg("failed to update user address")
		return fmt.Errorf("failed to update user address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("user_public_id", userPublicID.String()).
			Msg("address update matched no user")
	}

	return nil
}

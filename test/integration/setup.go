package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			public_id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			brand VARCHAR(255) NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL,
			picture VARCHAR(1024) NOT NULL DEFAULT '',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			stock INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS users (
			public_id UUID PRIMARY KEY,
			email VARCHAR(320) NOT NULL UNIQUE,
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			last_name VARCHAR(255) NOT NULL DEFAULT '',
			image_url VARCHAR(1024) NOT NULL DEFAULT '',
			authorities TEXT[] NOT NULL DEFAULT '{}',
			street VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(255) NOT NULL DEFAULT '',
			zip_code VARCHAR(32) NOT NULL DEFAULT '',
			country VARCHAR(64) NOT NULL DEFAULT '',
			last_modified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			public_id UUID PRIMARY KEY,
			status VARCHAR(16) NOT NULL,
			payment_session_id VARCHAR(255) NOT NULL UNIQUE,
			user_public_id UUID NOT NULL REFERENCES users(public_id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			id BIGSERIAL PRIMARY KEY,
			order_public_id UUID NOT NULL REFERENCES orders(public_id) ON DELETE CASCADE,
			product_public_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0)
		);

		CREATE INDEX IF NOT EXISTS idx_order_lines_order_public_id ON order_lines(order_public_id);
		CREATE INDEX IF NOT EXISTS idx_orders_user_public_id ON orders(user_public_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test product data and returns the inserted products
// keyed by name.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) map[string]model.Product {
	t.Helper()

	ctx := context.Background()

	seeds := []model.Product{
		{PublicID: uuid.New(), Name: "Laptop", Brand: "Acme", Price: 999.00, Featured: true, Stock: 10},
		{PublicID: uuid.New(), Name: "Mouse", Brand: "Acme", Price: 19.99, Featured: false, Stock: 50},
		{PublicID: uuid.New(), Name: "Keyboard", Brand: "Typewell", Price: 59.90, Featured: true, Stock: 25},
	}

	byName := make(map[string]model.Product, len(seeds))
	for _, p := range seeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (public_id, name, brand, price, picture, featured, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.PublicID, p.Name, p.Brand, p.Price, p.Picture, p.Featured, p.Stock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.Name, err)
		}
		byName[p.Name] = p
	}

	return byName
}

// SeedUser inserts a test buyer and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool, email string, authorities []string) *model.User {
	t.Helper()

	ctx := context.Background()

	user := &model.User{
		PublicID:    uuid.New(),
		Email:       email,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Authorities: authorities,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (public_id, email, first_name, last_name, authorities)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.PublicID, user.Email, user.FirstName, user.LastName, user.Authorities,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}

	return user
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_lines", "orders", "users", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

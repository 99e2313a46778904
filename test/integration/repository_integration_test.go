package integration

import (
	"context"
	"testing"

	"cargo-shop/internal/model"
	"cargo-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetAll returns seeded products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		page, err := repo.GetAll(ctx, model.Pagination{Page: 0, Size: 10})
		require.NoError(t, err)
		assert.Len(t, page.Content, 3)
		assert.Equal(t, int64(3), page.TotalElements)
		assert.Equal(t, "Keyboard", page.Content[0].Name)
	})

	t.Run("GetAll with pagination", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		page, err := repo.GetAll(ctx, model.Pagination{Page: 0, Size: 2})
		require.NoError(t, err)
		assert.Len(t, page.Content, 2)
		assert.Equal(t, int64(3), page.TotalElements)

		page, err = repo.GetAll(ctx, model.Pagination{Page: 1, Size: 2})
		require.NoError(t, err)
		assert.Len(t, page.Content, 1)
	})

	t.Run("GetFeatured filters by flag", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		page, err := repo.GetFeatured(ctx, model.Pagination{Page: 0, Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		for _, product := range page.Content {
			assert.True(t, product.Featured)
		}
	})

	t.Run("GetByPublicIDs omits unknown ids", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)

		ids := []uuid.UUID{products["Laptop"].PublicID, uuid.New()}
		resolved, err := repo.GetByPublicIDs(ctx, ids)
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, "Laptop", resolved[0].Name)
	})

	t.Run("DecrementStock reduces stock in a transaction", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		laptop := products["Laptop"]

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)

		err = repo.DecrementStock(ctx, tx, laptop.PublicID, 3)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		resolved, err := repo.GetByPublicIDs(ctx, []uuid.UUID{laptop.PublicID})
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, 7, resolved[0].Stock)
	})

	t.Run("Upsert is idempotent on public id", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := &model.Product{
			PublicID: uuid.New(),
			Name:     "Monitor",
			Brand:    "Viewmax",
			Price:    249.00,
			Stock:    5,
		}

		require.NoError(t, repo.Upsert(ctx, product))

		product.Price = 199.00
		product.Stock = 8
		require.NoError(t, repo.Upsert(ctx, product))

		resolved, err := repo.GetByPublicIDs(ctx, []uuid.UUID{product.PublicID})
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, 199.00, resolved[0].Price)
		assert.Equal(t, 8, resolved[0].Stock)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Save and GetBySessionID round trip", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		buyer := SeedUser(t, testDB.Pool, "buyer@example.com", []string{"ROLE_USER"})

		laptopLine, err := model.NewOrderLine(products["Laptop"], 2)
		require.NoError(t, err)
		mouseLine, err := model.NewOrderLine(products["Mouse"], 1)
		require.NoError(t, err)

		order := model.NewOrder(buyer, []model.OrderLine{laptopLine, mouseLine}, "cs_round_trip")

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		retrieved, err := repo.GetBySessionID(ctx, "cs_round_trip")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, order.PublicID, retrieved.PublicID)
		assert.Equal(t, model.OrderStatusPending, retrieved.Status)
		assert.Equal(t, "cs_round_trip", retrieved.PaymentSessionID)
		assert.Equal(t, buyer.PublicID, retrieved.UserPublicID)

		// Line identity: captured name, price and quantity survive storage.
		require.Len(t, retrieved.Lines, 2)
		assert.Equal(t, products["Laptop"].PublicID, retrieved.Lines[0].ProductPublicID)
		assert.Equal(t, "Laptop", retrieved.Lines[0].Name)
		assert.Equal(t, 999.00, retrieved.Lines[0].UnitPrice)
		assert.Equal(t, 2, retrieved.Lines[0].Quantity)
		assert.InDelta(t, 999.00*2+19.99, retrieved.Total(), 0.0001)
	})

	t.Run("GetBySessionID returns nil for unknown session", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		order, err := repo.GetBySessionID(ctx, "cs_unknown")
		require.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("UpdateStatus flips the order to paid", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		buyer := SeedUser(t, testDB.Pool, "buyer@example.com", []string{"ROLE_USER"})

		line, err := model.NewOrderLine(products["Mouse"], 1)
		require.NoError(t, err)
		order := model.NewOrder(buyer, []model.OrderLine{line}, "cs_status")

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		tx, err = repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, tx, model.OrderStatusPaid, order.PublicID))
		require.NoError(t, tx.Commit(ctx))

		retrieved, err := repo.GetBySessionID(ctx, "cs_status")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, model.OrderStatusPaid, retrieved.Status)
	})

	t.Run("Transaction rollback discards the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		buyer := SeedUser(t, testDB.Pool, "buyer@example.com", []string{"ROLE_USER"})

		line, err := model.NewOrderLine(products["Laptop"], 1)
		require.NoError(t, err)
		order := model.NewOrder(buyer, []model.OrderLine{line}, "cs_rollback")

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tx, order))
		require.NoError(t, tx.Rollback(ctx))

		retrieved, err := repo.GetBySessionID(ctx, "cs_rollback")
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("GetAllByUser returns only the buyer's orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		buyer := SeedUser(t, testDB.Pool, "buyer@example.com", []string{"ROLE_USER"})
		other := SeedUser(t, testDB.Pool, "other@example.com", []string{"ROLE_USER"})

		line, err := model.NewOrderLine(products["Mouse"], 1)
		require.NoError(t, err)

		for _, owner := range []*model.User{buyer, buyer, other} {
			order := model.NewOrder(owner, []model.OrderLine{line}, "cs_list_"+uuid.NewString())

			tx, err := repo.BeginTx(ctx)
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, tx, order))
			require.NoError(t, tx.Commit(ctx))
		}

		page, err := repo.GetAllByUser(ctx, buyer.PublicID, model.Pagination{Page: 0, Size: 10})
		require.NoError(t, err)
		assert.Len(t, page.Content, 2)
		assert.Equal(t, int64(2), page.TotalElements)
		for _, order := range page.Content {
			assert.Equal(t, buyer.PublicID, order.UserPublicID)
		}
	})

	t.Run("GetAll includes buyer email and formatted address", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		products := SeedProducts(t, testDB.Pool)
		buyer := SeedUser(t, testDB.Pool, "buyer@example.com", []string{"ROLE_USER"})

		userRepo := repository.NewUserRepository(testDB.Pool, logger)
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, userRepo.UpdateAddress(ctx, tx, buyer.PublicID, model.Address{
			Street:  "1 Rue de Rivoli",
			City:    "Paris",
			ZipCode: "75001",
			Country: "FR",
		}))
		require.NoError(t, tx.Commit(ctx))

		line, err := model.NewOrderLine(products["Laptop"], 1)
		require.NoError(t, err)
		order := model.NewOrder(buyer, []model.OrderLine{line}, "cs_admin")

		tx, err = repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		page, err := repo.GetAll(ctx, model.Pagination{Page: 0, Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "buyer@example.com", page.Content[0].UserEmail)
		assert.Equal(t, "1 Rue de Rivoli, Paris, 75001, FR", page.Content[0].UserAddress)
	})
}

func TestUserRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewUserRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Upsert then GetByEmail", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		user, err := model.NewUser("buyer@example.com", "Ada", "Lovelace", "", []string{"ROLE_USER"})
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, user))

		retrieved, err := repo.GetByEmail(ctx, "buyer@example.com")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, user.PublicID, retrieved.PublicID)
		assert.Equal(t, "Ada", retrieved.FirstName)
		assert.Equal(t, []string{"ROLE_USER"}, retrieved.Authorities)
	})

	t.Run("GetByEmail returns nil when absent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		retrieved, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("Upsert conflict preserves the stored address", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		user, err := model.NewUser("buyer@example.com", "Ada", "Byron", "", []string{"ROLE_USER"})
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, user))

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateAddress(ctx, tx, user.PublicID, model.Address{
			Street: "1 Rue de Rivoli", City: "Paris", ZipCode: "75001", Country: "FR",
		}))
		require.NoError(t, tx.Commit(ctx))

		user.LastName = "Lovelace"
		require.NoError(t, repo.Upsert(ctx, user))

		retrieved, err := repo.GetByPublicID(ctx, user.PublicID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, "Lovelace", retrieved.LastName)
		assert.Equal(t, "Paris", retrieved.Address.City)
	})
}

package catalog

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jackc/pgx/v5"
)

// createTestSeedFile creates a gzipped test seed file, one JSON line per
// record.
func createTestSeedFile(t *testing.T, filename string, lines []string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		_, err := gzipWriter.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}

	return filePath
}

func seedLine(publicID uuid.UUID, name string, price float64) string {
	return fmt.Sprintf(`{"publicId":%q,"name":%q,"brand":"Acme","price":%g,"featured":true,"stock":10}`,
		publicID.String(), name, price)
}

func TestFileLoader_Load_Success(t *testing.T) {
	logger := zerolog.Nop()
	loader := NewFileLoader(logger)

	laptopID := uuid.New()
	mouseID := uuid.New()

	filePath := createTestSeedFile(t, "products.jsonl.gz", []string{
		seedLine(laptopID, "Laptop", 999.00),
		seedLine(mouseID, "Mouse", 19.99),
	})

	products, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, laptopID, products[0].PublicID)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.Equal(t, 999.00, products[0].Price)
	assert.True(t, products[0].Featured)
	assert.Equal(t, 10, products[0].Stock)
}

func TestFileLoader_Load_SkipsInvalidRecords(t *testing.T) {
	logger := zerolog.Nop()
	loader := NewFileLoader(logger)

	validID := uuid.New()

	filePath := createTestSeedFile(t, "products.jsonl.gz", []string{
		seedLine(validID, "Laptop", 999.00),
		`not-json`,
		`{"publicId":"not-a-uuid","name":"Phantom","price":5}`,
		fmt.Sprintf(`{"publicId":%q,"name":"","price":5}`, uuid.NewString()),
		fmt.Sprintf(`{"publicId":%q,"name":"Freebie","price":0}`, uuid.NewString()),
		"",
	})

	products, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, validID, products[0].PublicID)
}

func TestFileLoader_Load_MissingFile(t *testing.T) {
	logger := zerolog.Nop()
	loader := NewFileLoader(logger)

	_, err := loader.Load(context.Background(), "/nonexistent/products.jsonl.gz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open seed file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	logger := zerolog.Nop()
	loader := NewFileLoader(logger)

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "plain.jsonl")
	require.NoError(t, os.WriteFile(filePath, []byte("plain text\n"), 0o644))

	_, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
}

// mockLoader is a mock implementation of Loader.
type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	args := m.Called(ctx, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// mockProductRepo is a minimal product repository for importer tests.
type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *mockProductRepo) GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *mockProductRepo) GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, publicID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tx, publicID, quantity)
	return args.Error(0)
}

func (m *mockProductRepo) Upsert(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func TestImporter_Import(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	products := []model.Product{
		{PublicID: uuid.New(), Name: "Laptop", Price: 999.00},
		{PublicID: uuid.New(), Name: "Mouse", Price: 19.99},
	}

	loader := new(mockLoader)
	repo := new(mockProductRepo)

	importer := NewImporter(loader, repo, logger)

	loader.On("Load", ctx, "products-1.jsonl.gz").Return(products, nil)
	repo.On("Upsert", ctx, &products[0]).Return(nil)
	repo.On("Upsert", ctx, &products[1]).Return(nil)

	err := importer.Import(ctx, []string{"products-1.jsonl.gz"})

	require.NoError(t, err)
	loader.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestImporter_Import_LoaderFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	loader := new(mockLoader)
	repo := new(mockProductRepo)

	importer := NewImporter(loader, repo, logger)

	loader.On("Load", ctx, "missing.jsonl.gz").Return(nil, errors.New("no such file"))

	err := importer.Import(ctx, []string{"missing.jsonl.gz"})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Upsert")
}

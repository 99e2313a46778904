package catalog

import (
	"context"
	"fmt"

	"cargo-shop/internal/repository"

	"github.com/rs/zerolog"
)

// Importer upserts seed products into the catalogue.
type Importer struct {
	loader      Loader
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewImporter creates a new catalogue importer.
func NewImporter(loader Loader, productRepo repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:      loader,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads each seed file and upserts its products, keyed by public id.
// Re-running the import refreshes existing rows instead of duplicating them.
func (i *Importer) Import(ctx context.Context, filePaths []string) error {
	total := 0
	for _, filePath := range filePaths {
		products, err := i.loader.Load(ctx, filePath)
		if err != nil {
			return fmt.Errorf("failed to import seed file %s: %w", filePath, err)
		}

		for idx := range products {
			if err := i.productRepo.Upsert(ctx, &products[idx]); err != nil {
				return fmt.Errorf("failed to upsert seed product %s: %w", products[idx].PublicID, err)
			}
		}
		total += len(products)
	}

	i.logger.Info().
		Int("file_count", len(filePaths)).
		Int("product_count", total).
		Msg("catalogue seed import complete")

	return nil
}

package service

import (
	"context"
	"fmt"

	"cargo-shop/internal/model"
	"cargo-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	products, err := s.productRepo.GetAll(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return model.Page[model.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetFeatured retrieves featured products with pagination.
func (s *productService) GetFeatured(ctx context.Context, page model.Pagination) (model.Page[model.Product], error) {
	products, err := s.productRepo.GetFeatured(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list featured products")
		return model.Page[model.Product]{}, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// GetByPublicIDs retrieves products by their public ids.
func (s *productService) GetByPublicIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.GetByPublicIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("id_count", len(ids)).Msg("failed to resolve products")
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	return products, nil
}

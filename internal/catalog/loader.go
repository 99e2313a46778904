package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cargo-shop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped seed files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped seed file and returns its valid products. Malformed
// lines are logged and skipped so one bad record cannot block the import.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	l.logger.Info().Str("file", filePath).Msg("loading catalogue seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	products, err := decodeSeedLines(ctx, file, l.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", len(products)).
		Msg("catalogue seed file loaded")

	return products, nil
}

// decodeSeedLines reads gzipped JSON lines into products, shared by the
// file and S3 loaders.
func decodeSeedLines(ctx context.Context, r io.Reader, logger zerolog.Logger) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var products []model.Product

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		select {
		case <-ctx.Done():
			logger.Warn().Msg("seed loading cancelled")
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var seed SeedProduct
		if err := json.Unmarshal([]byte(line), &seed); err != nil {
			logger.Warn().Err(err).Int("line", lineNumber).Msg("skipping malformed seed line")
			continue
		}

		product, err := seed.toProduct()
		if err != nil {
			logger.Warn().Err(err).Int("line", lineNumber).Msg("skipping invalid seed record")
			continue
		}

		products = append(products, product)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed lines: %w", err)
	}

	return products, nil
}

// toProduct validates a seed record. The public id keys the upsert, so the
// record must carry one for the import to stay idempotent.
func (s SeedProduct) toProduct() (model.Product, error) {
	publicID, err := uuid.Parse(s.PublicID)
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid publicId %q: %w", s.PublicID, err)
	}
	if strings.TrimSpace(s.Name) == "" {
		return model.Product{}, fmt.Errorf("product name is required")
	}
	if s.Price <= 0 {
		return model.Product{}, fmt.Errorf("price must be greater than zero")
	}
	if s.Stock < 0 {
		return model.Product{}, fmt.Errorf("stock must not be negative")
	}

	now := time.Now()
	return model.Product{
		PublicID:  publicID,
		Name:      s.Name,
		Brand:     s.Brand,
		Price:     s.Price,
		Picture:   s.Picture,
		Featured:  s.Featured,
		Stock:     s.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

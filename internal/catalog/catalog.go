// Package catalog imports product seed files into the catalogue at
// startup. Seed files are gzipped JSON lines, one product per line, loaded
// from S3 with a local-filesystem fallback.
package catalog

import (
	"context"

	"cargo-shop/internal/model"
)

// SeedProduct is one line of a catalogue seed file.
type SeedProduct struct {
	PublicID string  `json:"publicId"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Picture  string  `json:"picture"`
	Featured bool    `json:"featured"`
	Stock    int     `json:"stock"`
}

// Loader defines the interface for loading catalogue seed files.
type Loader interface {
	// Load reads a gzipped seed file and returns its valid products.
	Load(ctx context.Context, filePath string) ([]model.Product, error)
}

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type seedProduct struct {
	PublicID string  `json:"publicId"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Picture  string  `json:"picture"`
	Featured bool    `json:"featured"`
	Stock    int     `json:"stock"`
}

// generateSampleCatalog creates gzipped JSON-lines seed files that the
// startup importer can load via SEED_FILE_PATHS.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]seedProduct{
		"products1.gz": {
			{PublicID: uuid.NewString(), Name: "Trail Runner XT", Brand: "Northstride", Price: 129.90, Picture: "https://images.example.com/trail-runner-xt.jpg", Featured: true, Stock: 40},
			{PublicID: uuid.NewString(), Name: "Merino Base Layer", Brand: "Northstride", Price: 64.50, Picture: "https://images.example.com/merino-base.jpg", Stock: 120},
			{PublicID: uuid.NewString(), Name: "Alpine Shell Jacket", Brand: "Cairnwear", Price: 249.00, Picture: "https://images.example.com/alpine-shell.jpg", Featured: true, Stock: 15},
		},
		"products2.gz": {
			{PublicID: uuid.NewString(), Name: "Trekking Poles Pair", Brand: "Cairnwear", Price: 89.99, Picture: "https://images.example.com/trekking-poles.jpg", Stock: 60},
			{PublicID: uuid.NewString(), Name: "Headlamp 400lm", Brand: "Lumenpeak", Price: 34.90, Picture: "https://images.example.com/headlamp.jpg", Stock: 200},
		},
	}

	for filename, products := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createSeedFile(filePath, products); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(products))
	}

	fmt.Println("\nSample catalogue seed files created successfully!")
	fmt.Println("Run the API with SEED_ENABLED=true and")
	fmt.Println("SEED_FILE_PATHS=data/catalog/products1.gz,data/catalog/products2.gz to import them.")
}

func createSeedFile(filePath string, products []seedProduct) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, product := range products {
		if err := encoder.Encode(product); err != nil {
			return fmt.Errorf("failed to write product: %w", err)
		}
	}

	return nil
}

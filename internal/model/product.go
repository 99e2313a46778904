package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue entry. Price and name are live values:
// orders capture their own copies at creation time.
type Product struct {
	PublicID  uuid.UUID `json:"publicId" db:"public_id"`
	Name      string    `json:"name" db:"name"`
	Brand     string    `json:"brand" db:"brand"`
	Price     float64   `json:"price" db:"price"`
	Picture   string    `json:"picture" db:"picture"`
	Featured  bool      `json:"featured" db:"featured"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartProduct is the display projection of a product inside a cart preview.
type CartProduct struct {
	PublicID uuid.UUID `json:"publicId"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Price    float64   `json:"price"`
	Picture  string    `json:"picture"`
	Quantity int       `json:"quantity"`
}

// CartProductFrom builds a cart preview line from a live product.
func CartProductFrom(p Product, quantity int) CartProduct {
	return CartProduct{
		PublicID: p.PublicID,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    p.Price,
		Picture:  p.Picture,
		Quantity: quantity,
	}
}

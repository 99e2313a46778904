package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderLine_CapturesPriceAndName(t *testing.T) {
	product := Product{
		PublicID: uuid.New(),
		Name:     "Road Helmet",
		Price:    19.99,
	}

	line, err := NewOrderLine(product, 2)

	require.NoError(t, err)
	assert.Equal(t, product.PublicID, line.ProductPublicID)
	assert.Equal(t, "Road Helmet", line.Name)
	assert.Equal(t, 19.99, line.UnitPrice)
	assert.Equal(t, 2, line.Quantity)
}

func TestNewOrderLine_Invalid(t *testing.T) {
	valid := Product{PublicID: uuid.New(), Name: "Helmet", Price: 10.0}

	tests := []struct {
		name     string
		product  Product
		quantity int
		wantErr  error
	}{
		{"zero quantity", valid, 0, ErrInvalidQuantity},
		{"negative quantity", valid, -1, ErrInvalidQuantity},
		{"zero price", Product{PublicID: uuid.New(), Price: 0}, 1, ErrInvalidPrice},
		{"negative price", Product{PublicID: uuid.New(), Price: -5}, 1, ErrInvalidPrice},
		{"nil product id", Product{Price: 10}, 1, ErrNilProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderLine(tt.product, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewOrder_StartsPendingWithFreshPublicID(t *testing.T) {
	user := &User{PublicID: uuid.New(), Email: "buyer@example.com"}
	line, err := NewOrderLine(Product{PublicID: uuid.New(), Name: "Helmet", Price: 25.0}, 1)
	require.NoError(t, err)

	order := NewOrder(user, []OrderLine{line}, "cs_test_123")

	assert.NotEqual(t, uuid.Nil, order.PublicID)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "cs_test_123", order.PaymentSessionID)
	assert.Equal(t, user.PublicID, order.UserPublicID)
	assert.Len(t, order.Lines, 1)
}

func TestOrder_ValidatePayment(t *testing.T) {
	user := &User{PublicID: uuid.New()}
	order := NewOrder(user, nil, "cs_test_123")

	order.ValidatePayment()

	assert.Equal(t, OrderStatusPaid, order.Status)
}

func TestOrder_Total(t *testing.T) {
	order := &Order{Lines: []OrderLine{
		{UnitPrice: 19.99, Quantity: 2},
		{UnitPrice: 5.50, Quantity: 3},
	}}

	assert.InDelta(t, 56.48, order.Total(), 0.0001)
}

func TestOrder_LineQuantities_KeepsDuplicateProductsDistinct(t *testing.T) {
	productID := uuid.New()
	order := &Order{Lines: []OrderLine{
		{ProductPublicID: productID, UnitPrice: 10, Quantity: 2},
		{ProductPublicID: productID, UnitPrice: 10, Quantity: 5},
	}}

	quantities := order.LineQuantities()

	require.Len(t, quantities, 2)
	assert.Equal(t, 2, quantities[0].Quantity)
	assert.Equal(t, 5, quantities[1].Quantity)
	assert.Equal(t, productID, quantities[0].ProductPublicID)
	assert.Equal(t, productID, quantities[1].ProductPublicID)
}

func TestAddress_Formatted(t *testing.T) {
	addr := Address{Street: "1 Rue X", City: "Paris", ZipCode: "75001", Country: "FR"}
	assert.Equal(t, "1 Rue X, Paris, 75001, FR", addr.Formatted())

	partial := Address{City: "Paris", Country: "FR"}
	assert.Equal(t, "Paris, FR", partial.Formatted())
}

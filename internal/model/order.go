package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order. An order starts PENDING
// and transitions once, irreversibly, to PAID.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

// Order is the aggregate root for a purchase. PaymentSessionID is the
// correlation key for the asynchronous completion callback and is set once
// at creation. Lines are fixed at creation time.
type Order struct {
	PublicID         uuid.UUID   `json:"publicId" db:"public_id"`
	Status           OrderStatus `json:"status" db:"status"`
	PaymentSessionID string      `json:"-" db:"payment_session_id"`
	UserPublicID     uuid.UUID   `json:"userPublicId" db:"user_public_id"`
	Lines            []OrderLine `json:"lines"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`

	// Populated on the administrative read path only.
	UserEmail   string `json:"userEmail,omitempty" db:"user_email"`
	UserAddress string `json:"userAddress,omitempty" db:"user_address"`
}

// OrderLine is an immutable snapshot of a purchased product: price and name
// are captured at order time so the order remains a truthful historical
// record independent of later catalogue edits.
type OrderLine struct {
	ProductPublicID uuid.UUID `json:"productPublicId" db:"product_public_id"`
	Name            string    `json:"name" db:"name"`
	UnitPrice       float64   `json:"unitPrice" db:"unit_price"`
	Quantity        int       `json:"quantity" db:"quantity"`
}

// NewOrderLine constructs an order line, enforcing the value-object
// invariants: a non-nil product id, a strictly positive captured price and
// a positive quantity.
func NewOrderLine(product Product, quantity int) (OrderLine, error) {
	if product.PublicID == uuid.Nil {
		return OrderLine{}, ErrNilProductID
	}
	if product.Price <= 0 {
		return OrderLine{}, ErrInvalidPrice
	}
	if quantity <= 0 {
		return OrderLine{}, ErrInvalidQuantity
	}
	return OrderLine{
		ProductPublicID: product.PublicID,
		Name:            product.Name,
		UnitPrice:       product.Price,
		Quantity:        quantity,
	}, nil
}

// NewOrder creates a PENDING order with a freshly generated public id,
// correlated 1:1 with the given payment session.
func NewOrder(user *User, lines []OrderLine, paymentSessionID string) *Order {
	now := time.Now()
	return &Order{
		PublicID:         uuid.New(),
		Status:           OrderStatusPending,
		PaymentSessionID: paymentSessionID,
		UserPublicID:     user.PublicID,
		Lines:            lines,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ValidatePayment marks the order as paid. There is deliberately no guard
// against an already-paid order: reprocessing the same completion event
// reapplies the transition and its side effects (see ConfirmPayment).
func (o *Order) ValidatePayment() {
	o.Status = OrderStatusPaid
	o.UpdatedAt = time.Now()
}

// Total is the order amount derived from the captured line prices.
func (o *Order) Total() float64 {
	var total float64
	for _, line := range o.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// OrderLineQuantity is the (product, quantity) projection that drives
// inventory decrements after payment confirmation.
type OrderLineQuantity struct {
	ProductPublicID uuid.UUID
	Quantity        int
}

// LineQuantities derives one decrement instruction per order line.
// Duplicate product ids stay distinct; the source order performs no merge.
func (o *Order) LineQuantities() []OrderLineQuantity {
	quantities := make([]OrderLineQuantity, len(o.Lines))
	for i, line := range o.Lines {
		quantities[i] = OrderLineQuantity{
			ProductPublicID: line.ProductPublicID,
			Quantity:        line.Quantity,
		}
	}
	return quantities
}

// CartItem is the transient request shape shared by the cart preview and
// order creation endpoints.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// PaymentConfirmation carries the fields of a completed checkout session
// that the confirmation workflow consumes.
type PaymentConfirmation struct {
	SessionID    string
	UserPublicID uuid.UUID
	Address      Address
}

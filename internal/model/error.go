package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodeCartPayment     = "CART_PAYMENT_FAILED"
	ErrCodeInvalidQuantity = "INVALID_QUANTITY"
	ErrCodeInvalidPrice    = "INVALID_PRICE"
	ErrCodeEmptyCart       = "EMPTY_CART"
	ErrCodeNilProductID    = "NIL_PRODUCT_ID"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation carried as an error value.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found for the provided payment session")
	ErrCartPayment     = NewDomainError(ErrCodeCartPayment, "Error while creating the payment session")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPrice    = NewDomainError(ErrCodeInvalidPrice, "Price must be greater than zero")
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrNilProductID    = NewDomainError(ErrCodeNilProductID, "Product id is required")
)

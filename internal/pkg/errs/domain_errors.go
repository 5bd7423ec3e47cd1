package errs

import "errors"

// Domain-specific sentinel errors for the checkout and ledger usecase layers
var (
	// Inventory errors
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already provisioned")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidQuantity      = errors.New("quantity must be positive")

	// Order errors
	ErrOrderNotFound = errors.New("order not found")

	// Payment errors
	ErrPaymentDenied      = errors.New("payment denied")
	ErrPaymentUnreachable = errors.New("payment gateway unreachable")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")
	ErrDuplicateCheckout      = errors.New("duplicate checkout request")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
	ErrCartUnavailable         = errors.New("cart service unavailable")
)

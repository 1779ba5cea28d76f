package domain

import "errors"

// Business-rule failures. Callers wrap them with detail via fmt.Errorf("%w: ...")
// and match with errors.Is.
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrProductAlreadyExists   = errors.New("product already exists")
	ErrInvalidProductData     = errors.New("invalid product data")
	ErrProductOperationFailed = errors.New("product operation failed")
	ErrInsufficientStock      = errors.New("insufficient stock")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidPriceFormat  = errors.New("invalid price format")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrCurrencyMismatch    = errors.New("currency mismatch")

	ErrInvalidQuantity = errors.New("invalid quantity")
)

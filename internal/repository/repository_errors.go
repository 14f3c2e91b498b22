package repository

import "errors"

var ErrProductNotFound = errors.New("product not found")

// SQLSTATE codes for values the product table refuses.
const (
	pgNumericOutOfRange = "22003"
	pgCheckViolation    = "23514"
)

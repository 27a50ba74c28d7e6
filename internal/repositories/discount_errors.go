package repositories

import "errors"

var (
	// ErrDiscountExhausted indicates the usage limit was reached when a use
	// was being consumed.
	ErrDiscountExhausted = errors.New("discount repository: usage limit reached")
	// ErrDiscountInactive indicates the code was deactivated or expired
	// between lookup and consumption.
	ErrDiscountInactive = errors.New("discount repository: code not usable")
)

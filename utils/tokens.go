// utils/tokens.go
package utils

import "github.com/google/uuid"

// NewIdempotencyKey returns a fresh single-use key for the payment link call.
// A retried create against the processor with the same key will not create a
// duplicate external charge.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// NewOrderReference returns the correlation token stored on an invoice and
// echoed back by the payment processor inside its order object.
func NewOrderReference() string {
	return uuid.NewString()
}

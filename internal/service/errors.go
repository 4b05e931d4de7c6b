package service

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingNonce          = errors.New("payment method nonce is required")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
	ErrInvalidQuantity       = errors.New("line quantity must be positive")
	ErrUnknownProduct        = errors.New("cart references an unknown product")
	ErrInvalidStatus         = errors.New("status is not in the allowed set")
	ErrTransitionNotAllowed  = errors.New("status transition not allowed")
)

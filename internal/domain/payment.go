package domain

import "time"

// PaymentOutcome captures the gateway's full response for one charge attempt.
// Exactly one of Transaction/Error is meaningful, gated by Success. A decline
// is a successful round-trip carrying Success=false, never a Go error.
type PaymentOutcome struct {
	Success     bool          `json:"success"`
	Transaction *Transaction  `json:"transaction,omitempty"`
	Error       *GatewayError `json:"error,omitempty"`
}

type Transaction struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// GatewayError carries the decline detail, including the gateway's nested
// validation errors flattened to field -> messages (e.g. "amount" ->
// "Amount is an invalid format.").
type GatewayError struct {
	Message          string              `json:"message"`
	ValidationErrors map[string][]string `json:"validation_errors,omitempty"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the durable audit record of a checkout attempt. One order exists
// for every submission that reached the gateway, whether or not the payment
// succeeded. After creation only Status (and UpdatedAt) may change.
type Order struct {
	ID             uuid.UUID         `json:"id"`
	BuyerID        string            `json:"buyer_id"`
	BuyerName      string            `json:"buyer_name"`
	IdempotencyKey string            `json:"-"`
	Products       []ProductSnapshot `json:"products"`
	Payment        PaymentOutcome    `json:"payment"`
	Status         OrderStatus       `json:"status"`
	TotalAmount    float64           `json:"total_amount"`
	Currency       string            `json:"currency"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

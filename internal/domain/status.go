package domain

import "fmt"

type OrderStatus string

const (
	OrderStatusNotProcessed OrderStatus = "NOT_PROCESSED"
	OrderStatusProcessing   OrderStatus = "PROCESSING"
	OrderStatusShipped      OrderStatus = "SHIPPED"
	OrderStatusDelivered    OrderStatus = "DELIVERED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// AllStatuses in fulfillment order. NOT_PROCESSED is the initial status for
// every recorded order, including declined payments.
var AllStatuses = []OrderStatus{
	OrderStatusNotProcessed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// ParseStatus rejects anything outside the fixed enumeration.
func ParseStatus(raw string) (OrderStatus, error) {
	for _, s := range AllStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// TransitionRules decides which status changes an admin may apply. The
// storefront historically allowed any status from any status; that stays the
// default, with an opt-in guard making CANCELLED terminal.
type TransitionRules struct {
	CancelledTerminal bool
}

func (r TransitionRules) CanTransition(from, to OrderStatus) bool {
	if r.CancelledTerminal && from == OrderStatusCancelled && to != OrderStatusCancelled {
		return false
	}
	return true
}

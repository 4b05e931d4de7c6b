package domain

// CartLine is one line of a buyer-submitted cart. Price is the snapshot the
// client took at add-time; the server re-prices from the catalog before
// charging and only uses the submitted price for drift logging.
type CartLine struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ProductSnapshot is the immutable per-line record stored on an order.
// Name and Price come from the catalog at checkout time, not from the client.
type ProductSnapshot struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (p ProductSnapshot) Subtotal() float64 {
	return p.Price * float64(p.Quantity)
}

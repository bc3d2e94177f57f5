package websrm

import "time"

// Order is the internal order representation handed to the adapter. Raw
// categorical fields (Status, PaymentMethod, ...) use the order system's own
// vocabulary; the mapper translates them to protocol codes.
type Order struct {
	ID            string
	Status        string // raw order status, e.g. "completed"
	Kind          string // "sale" or "refund"
	Channel       string // raw service channel, e.g. "dine_in", "delivery"
	PaymentMethod string
	PrintMode     string
	PrintFormat   string

	Subtotal      float64
	FederalTax    float64
	ProvincialTax float64
	Total         float64
	TipPercent    *int
	Discount      *float64

	PlacedAt    time.Time // UTC
	EmployeeRef string
	CustomerRef string
	ECommerce   bool

	Items []OrderItem
}

// OrderItem is one unsanitized line of the internal order.
type OrderItem struct {
	Description string
	UnitPrice   float64
	Quantity    int
}

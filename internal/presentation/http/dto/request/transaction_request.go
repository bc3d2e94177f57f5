package request

import (
	"time"

	"github.com/restoflow/websrm-adapter/internal/websrm"
)

// SubmitTransactionRequest represents an order submission request
type SubmitTransactionRequest struct {
	OrderID       string                   `json:"order_id" binding:"required,max=64"`
	Status        string                   `json:"status" binding:"required"`
	Kind          string                   `json:"kind" binding:"required"`
	Channel       string                   `json:"channel"`
	PaymentMethod string                   `json:"payment_method"`
	PrintMode     string                   `json:"print_mode"`
	PrintFormat   string                   `json:"print_format"`
	Subtotal      float64                  `json:"subtotal"`
	FederalTax    float64                  `json:"federal_tax"`
	ProvincialTax float64                  `json:"provincial_tax"`
	Total         float64                  `json:"total"`
	TipPercent    *int                     `json:"tip_percent" binding:"omitempty,min=0,max=100"`
	Discount      *float64                 `json:"discount" binding:"omitempty,min=0"`
	PlacedAt      time.Time                `json:"placed_at" binding:"required"`
	EmployeeRef   string                   `json:"employee_ref"`
	CustomerRef   string                   `json:"customer_ref"`
	ECommerce     bool                     `json:"e_commerce"`
	Items         []TransactionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TransactionItemRequest represents one order line in a submission request
type TransactionItemRequest struct {
	Description string  `json:"description" binding:"required"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
}

// ToOrder converts the request into the adapter's order representation
func (r *SubmitTransactionRequest) ToOrder() *websrm.Order {
	items := make([]websrm.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = websrm.OrderItem{
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}
	return &websrm.Order{
		ID:            r.OrderID,
		Status:        r.Status,
		Kind:          r.Kind,
		Channel:       r.Channel,
		PaymentMethod: r.PaymentMethod,
		PrintMode:     r.PrintMode,
		PrintFormat:   r.PrintFormat,
		Subtotal:      r.Subtotal,
		FederalTax:    r.FederalTax,
		ProvincialTax: r.ProvincialTax,
		Total:         r.Total,
		TipPercent:    r.TipPercent,
		Discount:      r.Discount,
		PlacedAt:      r.PlacedAt,
		EmployeeRef:   r.EmployeeRef,
		CustomerRef:   r.CustomerRef,
		ECommerce:     r.ECommerce,
		Items:         items,
	}
}

// QueueFilterRequest represents queue listing filter parameters
type QueueFilterRequest struct {
	Status   string `form:"status"`
	DeviceID string `form:"device_id"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

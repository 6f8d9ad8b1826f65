package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRejected  = "rejected"
)

type Order struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	CustomerID  string    `json:"customer_id,omitempty"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"` // pending, completed, rejected
	Created     time.Time `json:"created"`
}

type OrderItem struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"order_id"`
	TicketTypeID string  `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Subtotal returns quantity x price snapshot as an exact decimal.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.PricePerUnit).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal sums item subtotals. The persisted total_amount must always
// equal this, regardless of later ticket type price changes.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Subtotal())
	}
	return total
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusConfirmed = "confirmed"

type Order struct {
	ID            int64           `json:"id" db:"id"`
	UUID          string          `json:"order_uuid" db:"order_uuid"`
	UserID        int64           `json:"user_id" db:"user_id"`
	TicketID      *int64          `json:"ticket_id,omitempty" db:"ticket_id"`
	PaymentID     string          `json:"payment_id" db:"payment_id"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type PaymentOrder struct {
	OrderID  string          `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of a single order line.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
// Delivered and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	return s == OrderStatusPending && next != OrderStatusPending
}

// Order is one finalized purchase line. Unit price and total are
// computed at checkout time and frozen; later product price or
// discount changes never alter them.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	ProductID   string      `json:"productId" db:"product_id"`
	Quantity    int         `json:"quantity" db:"quantity"`
	UnitPrice   float64     `json:"unitPrice" db:"unit_price"`
	TotalAmount float64     `json:"totalAmount" db:"total_amount"`
	PromoCode   *string     `json:"promoCode,omitempty" db:"promo_code"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// PlaceOrderRequest is the optional payload for POST /api/orders.
type PlaceOrderRequest struct {
	PromoCode *string `json:"promoCode,omitempty"`
}

// OrderUpdate enumerates the fields an admin may change on an order.
// Nil fields are left untouched.
type OrderUpdate struct {
	Status *OrderStatus `json:"status,omitempty"`
}

// PaymentLinkResponse carries the hosted checkout URL.
type PaymentLinkResponse struct {
	PaymentLink string `json:"paymentLink"`
}

// WebhookEvent records a processed payment gateway event. The event ID
// is the idempotency key: a replayed delivery finds the row already
// present and is dropped.
type WebhookEvent struct {
	EventID     string    `json:"eventId" db:"event_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	ProcessedAt time.Time `json:"processedAt" db:"processed_at"`
}

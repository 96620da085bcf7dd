package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user pending cart record. One cart per user; the
// record is created lazily on first add and emptied, never deleted, on
// checkout.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is a single line in a cart. A product appears at most once
// per cart; repeated adds merge by summing quantity.
type CartItem struct {
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Position  int       `json:"-" db:"position"`
}

// CartAddRequest is the payload for adding a product to the cart.
type CartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartSetQuantityRequest is the payload for setting a line's quantity.
type CartSetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLine is a cart line enriched with product details and the
// discounted unit price, mirroring what the storefront renders.
type CartLine struct {
	ProductID       string  `json:"productId"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	DiscountedPrice float64 `json:"discountedPrice"`
	Discount        int     `json:"discount"`
	NumberInStock   int     `json:"numberInStock"`
	ImageURL        string  `json:"imageUrl"`
	Quantity        int     `json:"quantity"`
}

// CartResponse is the detailed cart view returned to clients. An empty
// Products slice is a valid state, not an error.
type CartResponse struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"userId"`
	Products []CartLine `json:"products"`
}

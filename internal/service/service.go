package service

import (
	"context"

	"shop-kart/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartService defines operations on a user's pending cart.
type CartService interface {
	// Get retrieves the user's cart as a detailed view. An absent cart
	// is returned as an empty view, not an error.
	Get(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// AddProduct adds a product to the cart, merging with an existing
	// line by summing quantities. The merged quantity may not exceed
	// the product's available stock.
	AddProduct(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error)

	// SetQuantity sets the quantity of an existing line.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error)

	// Clear removes every line from the cart. The cart record itself
	// survives. Clearing an already empty cart is a no-op.
	Clear(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// Increment raises an existing line's quantity by one, capped by stock.
	Increment(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)

	// Decrement lowers an existing line's quantity by one, removing the
	// line when it reaches zero.
	Decrement(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)

	// Remove deletes a line from the cart.
	Remove(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error)
}

// CheckoutService coordinates cart, inventory, pricing and the order
// ledger to turn cart contents into recorded orders.
type CheckoutService interface {
	// PlaceOrder consumes the user's cart: validates every line,
	// reserves stock, records one order per line with frozen totals and
	// clears the cart, all in one transaction. An optional promo code
	// grants an extra discount on each line.
	PlaceOrder(ctx context.Context, userID uuid.UUID, promoCode *string) ([]model.Order, error)

	// CreatePaymentLink validates the cart against current stock and
	// creates a hosted payment session; the returned URL completes the
	// checkout out-of-band via the gateway webhook.
	CreatePaymentLink(ctx context.Context, userID uuid.UUID) (string, error)

	// HandleWebhook verifies a gateway event payload and, for checkout
	// completions not seen before, fulfils the user's cart exactly as
	// PlaceOrder does. Replayed events are dropped.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// OrderService defines operations on recorded orders.
type OrderService interface {
	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// Update applies an allow-listed update to an order. Status changes
	// follow the pending -> delivered | cancelled machine.
	Update(ctx context.Context, orderID uuid.UUID, update *model.OrderUpdate) (*model.Order, error)

	// Delete removes an order belonging to the given user context.
	Delete(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)
}

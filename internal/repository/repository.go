package repository

import (
	"context"

	"shop-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil if the
	// product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// GetByIDsForUpdate retrieves multiple products by their IDs with
	// row locks held for the duration of the transaction.
	GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error)

	// ReserveStock decrements a product's available stock by quantity
	// as a single conditional update. Returns the new stock level, or
	// ErrProductNotFound / ErrInsufficientStock without changing
	// anything.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByUser retrieves a user's cart and its items ordered by
	// position. Returns a nil cart if the user has none yet.
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, []model.CartItem, error)

	// EnsureCart creates the user's cart row if absent and locks it for
	// the duration of the transaction. All same-user cart mutations and
	// checkouts funnel through this lock.
	EnsureCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (uuid.UUID, error)

	// GetItems retrieves a cart's items within the transaction.
	GetItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem sets the quantity for a product line, appending the
	// line at the end of the cart if it is new.
	UpsertItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) error

	// RemoveItem deletes a product line. Returns false if the line was
	// not present.
	RemoveItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string) (bool, error)

	// ClearItems deletes all lines, keeping the cart record.
	ClearItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrders inserts order lines within the provided transaction.
	CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error

	// GetByID retrieves a single order. Returns nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves a single order with its row locked.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// UpdateStatus sets the status of an order within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Delete removes an order belonging to the given user. Returns nil
	// if no such order exists for that user.
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*model.Order, error)
}

// WebhookEventRepository records processed payment gateway events.
type WebhookEventRepository interface {
	// MarkProcessed records the event ID. Returns true the first time
	// an event is seen and false on replay; the row is written inside
	// the caller's transaction so it commits or rolls back with the
	// checkout itself.
	MarkProcessed(ctx context.Context, tx pgx.Tx, eventID string, userID uuid.UUID) (bool, error)
}

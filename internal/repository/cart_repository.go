package repository

import (
	"context"
	"fmt"
	"time"

	"shop-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetByUser retrieves a user's cart and its items. A nil cart with no
// error means the user has no cart yet; callers treat that as empty.
func (r *cartRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, []model.CartItem, error) {
	cartQuery := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, cartQuery, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("user_id", userID.String()).Msg("cart not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, nil, fmt.Errorf("failed to query cart: %w", err)
	}

	itemsQuery := `
		SELECT cart_id, product_id, quantity, position
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to query cart items")
		return nil, nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items, err := collectCartItems(rows, r.logger)
	if err != nil {
		return nil, nil, err
	}

	return &cart, items, nil
}

// EnsureCart creates the user's cart row if it does not exist and takes
// a row lock either way. The lock serializes all mutations of one
// user's cart for the duration of the transaction.
func (r *cartRepository) EnsureCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (uuid.UUID, error) {
	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var cartID uuid.UUID
	err := tx.QueryRow(ctx, query, uuid.New(), userID, time.Now()).Scan(&cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure cart")
		return uuid.Nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	return cartID, nil
}

// GetItems retrieves a cart's items within the transaction, in cart order.
func (r *cartRepository) GetItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT cart_id, product_id, quantity, position
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position
	`

	rows, err := tx.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	return collectCartItems(rows, r.logger)
}

// UpsertItem sets the quantity for a product line. A new line is
// appended at the end of the cart.
func (r *cartRepository) UpsertItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, position)
		VALUES (
			$1, $2, $3,
			COALESCE((SELECT MAX(position) + 1 FROM cart_items WHERE cart_id = $1), 1)
		)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`

	_, err := tx.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", cartID.String()).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("cart item upserted")

	return nil
}

// RemoveItem deletes a product line from the cart.
func (r *cartRepository) RemoveItem(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, productID string) (bool, error) {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	tag, err := tx.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ClearItems empties the cart without deleting the cart record itself.
func (r *cartRepository) ClearItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1
	`

	_, err := tx.Exec(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart items cleared")

	return nil
}

// collectCartItems scans all rows into a cart item slice.
func collectCartItems(rows pgx.Rows, logger zerolog.Logger) ([]model.CartItem, error) {
	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.CartID, &item.ProductID, &item.Quantity, &item.Position)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

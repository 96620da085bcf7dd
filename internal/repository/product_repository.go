package repository

import (
	"context"
	"fmt"

	"shop-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, title, description, price, discount, number_in_stock, image_url, category, created_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.Discount,
		&p.NumberInStock,
		&p.ImageURL,
		&p.Category,
		&p.CreatedAt,
	)
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY title
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// GetByIDsForUpdate retrieves multiple products with their rows locked
// until the transaction ends. Rows are locked in ID order to avoid
// deadlocks between concurrent checkouts sharing products.
func (r *productRepository) GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, r.logger)
}

// ReserveStock decrements available stock by quantity if and only if
// enough is available, as a single conditional update. Two concurrent
// reservations for the last unit cannot both succeed.
func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error) {
	query := `
		UPDATE products
		SET number_in_stock = number_in_stock - $2
		WHERE id = $1 AND number_in_stock >= $2
		RETURNING number_in_stock
	`

	var remaining int
	err := tx.QueryRow(ctx, query, productID, quantity).Scan(&remaining)
	if err == nil {
		r.logger.Debug().
			Str("product_id", productID).
			Int("quantity", quantity).
			Int("remaining", remaining).
			Msg("stock reserved")
		return remaining, nil
	}

	if err != pgx.ErrNoRows {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to reserve stock")
		return 0, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// The update matched nothing: either the product is missing or the
	// stock is short. Tell the two apart for the caller.
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to check product existence")
		return 0, fmt.Errorf("failed to check product existence: %w", err)
	}

	if !exists {
		r.logger.Debug().Str("product_id", productID).Msg("product not found during reservation")
		return 0, model.ErrProductNotFound
	}

	r.logger.Debug().
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("insufficient stock for reservation")
	return 0, model.ErrInsufficientStock
}

// collectProducts scans all rows into a product slice.
func collectProducts(rows pgx.Rows, logger zerolog.Logger) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

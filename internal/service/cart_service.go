package service

import (
	"context"
	"fmt"

	"shop-kart/internal/model"
	"shop-kart/internal/pricing"
	"shop-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartMutation is the body of a serialized cart modification.
type cartMutation func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error

// cartService implements CartService. Every mutation runs inside a
// transaction that holds the user's cart row lock, so same-user
// modifications are serialized and cannot lose updates.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the user's cart as a detailed view.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart == nil {
		// No cart yet is a valid empty state.
		return &model.CartResponse{UserID: userID, Products: []model.CartLine{}}, nil
	}

	return s.buildResponse(ctx, cart, items)
}

// AddProduct adds a product to the cart, merging by summing quantities.
func (s *cartService) AddProduct(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	if quantity <= 0 {
		s.logger.Warn().
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("invalid quantity")
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add product to cart: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	err = s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		newQuantity := quantity
		if existing := findItem(items, productID); existing != nil {
			newQuantity += existing.Quantity
		}

		if newQuantity > product.NumberInStock {
			s.logger.Warn().
				Str("product_id", productID).
				Int("requested", newQuantity).
				Int("in_stock", product.NumberInStock).
				Msg("requested quantity exceeds available stock")
			return model.ErrExceedsStock
		}

		return s.cartRepo.UpsertItem(ctx, tx, cartID, productID, newQuantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("product added to cart")

	return s.Get(ctx, userID)
}

// SetQuantity sets the quantity of an existing line.
func (s *cartService) SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*model.CartResponse, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to set cart quantity: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	err = s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		if findItem(items, productID) == nil {
			return model.ErrCartItemNotFound
		}

		if quantity > product.NumberInStock {
			return model.ErrExceedsStock
		}

		return s.cartRepo.UpsertItem(ctx, tx, cartID, productID, quantity)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Increment raises an existing line's quantity by one.
func (s *cartService) Increment(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment cart quantity: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	err = s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		existing := findItem(items, productID)
		if existing == nil {
			return model.ErrCartItemNotFound
		}

		if existing.Quantity+1 > product.NumberInStock {
			return model.ErrExceedsStock
		}

		return s.cartRepo.UpsertItem(ctx, tx, cartID, productID, existing.Quantity+1)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Decrement lowers an existing line's quantity by one, removing the
// line at zero.
func (s *cartService) Decrement(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	err := s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		existing := findItem(items, productID)
		if existing == nil {
			return model.ErrCartItemNotFound
		}

		if existing.Quantity <= 1 {
			_, err := s.cartRepo.RemoveItem(ctx, tx, cartID, productID)
			return err
		}

		return s.cartRepo.UpsertItem(ctx, tx, cartID, productID, existing.Quantity-1)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Clear removes every line from the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	err := s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		return s.cartRepo.ClearItems(ctx, tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Msg("cart cleared")

	return s.Get(ctx, userID)
}

// Remove deletes a line from the cart.
func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, productID string) (*model.CartResponse, error) {
	err := s.mutate(ctx, userID, func(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, items []model.CartItem) error {
		removed, err := s.cartRepo.RemoveItem(ctx, tx, cartID, productID)
		if err != nil {
			return err
		}
		if !removed {
			return model.ErrCartItemNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID).
		Msg("product removed from cart")

	return s.Get(ctx, userID)
}

// mutate runs fn inside a transaction holding the user's cart lock,
// with the current items loaded.
func (s *cartService) mutate(ctx context.Context, userID uuid.UUID, fn cartMutation) (err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to modify cart: %w", err)
	}

	// Roll back unless the mutation committed
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cartID, err := s.cartRepo.EnsureCart(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("failed to modify cart: %w", err)
	}

	items, err := s.cartRepo.GetItems(ctx, tx, cartID)
	if err != nil {
		return fmt.Errorf("failed to modify cart: %w", err)
	}

	if err = fn(ctx, tx, cartID, items); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit cart mutation")
		return fmt.Errorf("failed to modify cart: %w", err)
	}

	return nil
}

// buildResponse enriches cart items with product details and the
// discounted unit price, preserving cart order. Lines whose product has
// been removed from the catalogue are skipped.
func (s *cartService) buildResponse(ctx context.Context, cart *model.Cart, items []model.CartItem) (*model.CartResponse, error) {
	resp := &model.CartResponse{
		ID:       cart.ID,
		UserID:   cart.UserID,
		Products: []model.CartLine{},
	}

	if len(items) == 0 {
		return resp, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Msg("cart references missing product, skipping line")
			continue
		}

		resp.Products = append(resp.Products, model.CartLine{
			ProductID:       p.ID,
			Title:           p.Title,
			Price:           p.Price,
			DiscountedPrice: pricing.DiscountedUnitPrice(p.Price, p.Discount),
			Discount:        p.Discount,
			NumberInStock:   p.NumberInStock,
			ImageURL:        p.ImageURL,
			Quantity:        item.Quantity,
		})
	}

	return resp, nil
}

// findItem returns the cart line for productID, or nil.
func findItem(items []model.CartItem, productID string) *model.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i]
		}
	}
	return nil
}

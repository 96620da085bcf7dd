package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"shop-kart/internal/model"
	"shop-kart/internal/payment"
	"shop-kart/internal/pricing"
	"shop-kart/internal/promo"
	"shop-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CheckoutConfig holds checkout-time settings.
type CheckoutConfig struct {
	// PromoBenefitPercent is the extra percentage off each line when a
	// valid promo code is supplied.
	PromoBenefitPercent int

	// Currency, SuccessURL and CancelURL parametrise payment sessions.
	Currency   string
	SuccessURL string
	CancelURL  string
}

// checkoutService implements CheckoutService. The whole checkout
// (pre-validation, stock reservation, order creation, cart clearing)
// runs inside one transaction, so a failure on any line leaves no
// partial stock decrement or half-recorded order behind.
type checkoutService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	webhookRepo repository.WebhookEventRepository
	validator   promo.Validator
	gateway     payment.Gateway
	cfg         CheckoutConfig
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service. The gateway may be
// nil when payments are disabled; payment-link and webhook operations
// then fail fast.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	webhookRepo repository.WebhookEventRepository,
	validator promo.Validator,
	gateway payment.Gateway,
	cfg CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		webhookRepo: webhookRepo,
		validator:   validator,
		gateway:     gateway,
		cfg:         cfg,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// PlaceOrder consumes the user's cart and records one order per line.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, promoCode *string) (orders []model.Order, err error) {
	promoPercent := 0
	if promoCode != nil && *promoCode != "" {
		if err := s.validator.Validate(ctx, *promoCode); err != nil {
			s.logger.Warn().
				Str("promo_code", *promoCode).
				Err(err).
				Msg("invalid promo code")
			return nil, err
		}
		promoPercent = s.cfg.PromoBenefitPercent
	} else {
		promoCode = nil
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cartID, err := s.cartRepo.EnsureCart(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	items, err := s.cartRepo.GetItems(ctx, tx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if len(items) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	orders, err = s.fulfillCart(ctx, tx, userID, cartID, items, promoCode, promoPercent)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit checkout")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("order_count", len(orders)).
		Msg("order placed successfully")

	return orders, nil
}

// fulfillCart performs the checkout write sequence within the caller's
// transaction: validate all lines, reserve all stock, record orders,
// clear the cart. Validation of every line happens before the first
// reservation, so a failing line aborts before any stock moves.
func (s *checkoutService) fulfillCart(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	cartID uuid.UUID,
	items []model.CartItem,
	promoCode *string,
	promoPercent int,
) ([]model.Order, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Phase 1: every line must reference an existing product with
	// enough stock before anything is written.
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Msg("cart references missing product")
			return nil, model.ErrProductNotFound
		}

		if item.Quantity > p.NumberInStock {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Int("requested", item.Quantity).
				Int("in_stock", p.NumberInStock).
				Msg("insufficient stock for cart line")
			return nil, model.ErrInsufficientStock
		}
	}

	// Phase 2: reserve and record.
	now := time.Now()
	orders := make([]model.Order, 0, len(items))
	for _, item := range items {
		p := byID[item.ProductID]

		if _, err := s.productRepo.ReserveStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to reserve stock for %s: %w", item.ProductID, err)
		}

		unitPrice := pricing.DiscountedUnitPrice(p.Price, p.Discount)
		total := pricing.LineTotal(unitPrice, item.Quantity)
		if promoPercent > 0 {
			total = pricing.ApplyPromo(total, promoPercent)
		}

		orders = append(orders, model.Order{
			ID:          uuid.New(),
			UserID:      userID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			TotalAmount: total,
			PromoCode:   promoCode,
			Status:      model.OrderStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.orderRepo.CreateOrders(ctx, tx, orders); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err := s.cartRepo.ClearItems(ctx, tx, cartID); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return orders, nil
}

// CreatePaymentLink validates the cart against current stock and
// creates a hosted payment session carrying the user reference.
func (s *checkoutService) CreatePaymentLink(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.gateway == nil {
		return "", model.ErrGateway
	}

	cart, items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create payment link: %w", err)
	}

	if cart == nil || len(items) == 0 {
		return "", model.ErrEmptyCart
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("failed to create payment link: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Availability is only checked here, not reserved; the reservation
	// happens when the gateway confirms payment.
	lines := make([]payment.SessionLine, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return "", model.ErrProductNotFound
		}
		if item.Quantity > p.NumberInStock {
			return "", model.ErrInsufficientStock
		}

		unitPrice := pricing.DiscountedUnitPrice(p.Price, p.Discount)
		lines = append(lines, payment.SessionLine{
			Name:       p.Title,
			UnitAmount: int64(math.Round(unitPrice * 100)),
			Quantity:   int64(item.Quantity),
		})
	}

	url, err := s.gateway.CreateSession(&payment.SessionRequest{
		ClientReferenceID: userID.String(),
		Currency:          s.cfg.Currency,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		Lines:             lines,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("payment session creation failed")
		return "", model.ErrGateway
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("line_count", len(lines)).
		Msg("payment link created")

	return url, nil
}

// HandleWebhook verifies a gateway event and fulfils the referenced
// user's cart for first-time checkout completions.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	if s.gateway == nil {
		return model.ErrGateway
	}

	completed, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("failed to process webhook: %w", err)
	}
	if completed == nil {
		// Not a checkout completion; acknowledge and move on.
		return nil
	}

	userID, err := uuid.Parse(completed.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("webhook event %s carries invalid client reference %q: %w",
			completed.EventID, completed.ClientReferenceID, err)
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to process webhook: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// The event record commits atomically with the checkout writes, so
	// a replay after a failed attempt gets another chance while a
	// replay after success is dropped here.
	first, err := s.webhookRepo.MarkProcessed(ctx, tx, completed.EventID, userID)
	if err != nil {
		return fmt.Errorf("failed to process webhook: %w", err)
	}
	if !first {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Info().
			Str("event_id", completed.EventID).
			Msg("duplicate webhook delivery ignored")
		return nil
	}

	cartID, err := s.cartRepo.EnsureCart(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("failed to process webhook: %w", err)
	}

	items, err := s.cartRepo.GetItems(ctx, tx, cartID)
	if err != nil {
		return fmt.Errorf("failed to process webhook: %w", err)
	}

	if len(items) == 0 {
		err = model.ErrEmptyCart
		return fmt.Errorf("webhook event %s: %w", completed.EventID, err)
	}

	orders, err := s.fulfillCart(ctx, tx, userID, cartID, items, nil, 0)
	if err != nil {
		return fmt.Errorf("webhook event %s: %w", completed.EventID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("event_id", completed.EventID).Msg("failed to commit webhook checkout")
		return fmt.Errorf("failed to process webhook: %w", err)
	}

	s.logger.Info().
		Str("event_id", completed.EventID).
		Str("user_id", userID.String()).
		Int("order_count", len(orders)).
		Msg("webhook checkout completed")

	return nil
}

package service

import (
	"context"
	"fmt"

	"shop-kart/internal/model"
	"shop-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// ListByUser retrieves a user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}

	return orders, nil
}

// Update applies an allow-listed update to an order. The status field
// follows the pending -> delivered | cancelled machine; terminal states
// cannot be left.
func (s *orderService) Update(ctx context.Context, orderID uuid.UUID, update *model.OrderUpdate) (order *model.Order, err error) {
	if update == nil || update.Status == nil {
		return nil, model.ErrEmptyUpdate
	}

	if !update.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	current, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if current == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !current.Status.CanTransitionTo(*update.Status) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(current.Status)).
			Str("to", string(*update.Status)).
			Msg("order status transition rejected")
		err = model.ErrInvalidTransition
		return nil, err
	}

	order, err = s.orderRepo.UpdateStatus(ctx, tx, orderID, *update.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit order update")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(order.Status)).
		Msg("order updated")

	return order, nil
}

// Delete removes an order belonging to the given user context.
func (s *orderService) Delete(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.Delete(ctx, orderID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order")
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", userID.String()).
		Msg("order deleted")

	return order, nil
}

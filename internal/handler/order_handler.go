package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"shop-kart/internal/middleware"
	"shop-kart/internal/model"
	"shop-kart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxWebhookBodyBytes caps the webhook payload size.
const maxWebhookBodyBytes = 64 * 1024

// OrderHandler handles order and checkout HTTP requests.
type OrderHandler struct {
	orders   service.OrderService
	checkout service.CheckoutService
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, checkout service.CheckoutService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		checkout: checkout,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests: the direct checkout path.
// The body is optional and may carry a promo code.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorised", h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if r.Body != nil {
		// An empty body is fine; a malformed one is not.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}
	}

	orders, err := h.checkout.PlaceOrder(r.Context(), userID, req.PromoCode)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orders)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorised", h.logger)
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Update handles PUT /api/orders/{id} requests (admin only).
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderIDFromPath(w, r)
	if !ok {
		return
	}

	var update model.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	order, err := h.orders.Update(r.Context(), orderID, &update)
	if err != nil {
		switch err {
		case model.ErrOrderNotFound:
			writeError(w, http.StatusNotFound, "order not found", h.logger)
		case model.ErrInvalidTransition, model.ErrInvalidStatus, model.ErrEmptyUpdate:
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		default:
			writeError(w, http.StatusInternalServerError, "failed to update order", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id} requests (admin only). The
// order must belong to the deleting user's own context.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorised", h.logger)
		return
	}

	orderID, ok := h.orderIDFromPath(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Delete(r.Context(), orderID, userID)
	if err != nil {
		if err == model.ErrOrderNotFound {
			writeError(w, http.StatusNotFound, "order not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// PaymentLink handles POST /api/orders/payment-link requests.
func (h *OrderHandler) PaymentLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorised", h.logger)
		return
	}

	url, err := h.checkout.CreatePaymentLink(r.Context(), userID)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.PaymentLinkResponse{PaymentLink: url})
}

// Webhook handles POST /api/orders/webhook requests from the payment
// gateway. Failures are logged and never surfaced: the gateway always
// receives a 200 so it does not hammer the endpoint with retries, and
// its own retry of a successfully processed event is dropped by the
// idempotency ledger.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.checkout.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.logger.Error().Err(err).Msg("webhook processing failed")
	}

	w.WriteHeader(http.StatusOK)
}

// writeCheckoutError maps checkout errors to HTTP responses.
func (h *OrderHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	switch err {
	case model.ErrEmptyCart:
		writeError(w, http.StatusBadRequest, "cart is empty", h.logger)
	case model.ErrProductNotFound:
		writeError(w, http.StatusBadRequest, "one or more products not found", h.logger)
	case model.ErrInsufficientStock:
		writeError(w, http.StatusBadRequest, "insufficient stock for one or more products", h.logger)
	case model.ErrInvalidPromoCode:
		writeError(w, http.StatusBadRequest, "invalid promo code", h.logger)
	case model.ErrInvalidPromoLength:
		writeError(w, http.StatusBadRequest, "promo code must be between 8 and 10 characters", h.logger)
	case model.ErrGateway:
		writeError(w, http.StatusBadGateway, "payment gateway request failed", h.logger)
	default:
		writeError(w, http.StatusInternalServerError, "failed to process checkout", h.logger)
	}
}

// orderIDFromPath extracts and parses the order ID from the request
// path, writing the error response itself on failure.
func (h *OrderHandler) orderIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "order ID is required", h.logger)
		return uuid.Nil, false
	}

	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}

	return orderID, true
}

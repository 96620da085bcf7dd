package payment

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// stripeGateway implements Gateway over Stripe hosted Checkout.
type stripeGateway struct {
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripeGateway creates a Stripe-backed payment gateway.
func NewStripeGateway(apiKey, webhookSecret string, logger zerolog.Logger) Gateway {
	stripe.Key = apiKey

	return &stripeGateway{
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("component", "stripe-gateway").Logger(),
	}
}

// CreateSession creates a hosted checkout session and returns its URL.
func (g *stripeGateway) CreateSession(req *SessionRequest) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(req.Lines))
	for i, line := range req.Lines {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientReferenceID),
	}

	s, err := session.New(params)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("client_reference_id", req.ClientReferenceID).
			Msg("failed to create checkout session")
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info().
		Str("session_id", s.ID).
		Str("client_reference_id", req.ClientReferenceID).
		Int("line_count", len(req.Lines)).
		Msg("checkout session created")

	return s.URL, nil
}

// ParseEvent verifies the webhook signature and extracts completed
// checkouts. Other event types are acknowledged but ignored.
func (g *stripeGateway) ParseEvent(payload []byte, signature string) (*CompletedCheckout, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		g.logger.Debug().
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("ignoring webhook event type")
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		g.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to decode checkout session")
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	return &CompletedCheckout{
		EventID:           event.ID,
		ClientReferenceID: s.ClientReferenceID,
	}, nil
}

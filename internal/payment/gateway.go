// Package payment adapts the external payment gateway: hosted checkout
// session creation and verification of completion webhooks.
package payment

// SessionLine is one billable line of a checkout session. UnitAmount is
// in the currency's minor unit (cents).
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes a hosted checkout session to create.
// ClientReferenceID is an opaque value the gateway echoes back in the
// completion event; it carries the user ID.
type SessionRequest struct {
	ClientReferenceID string
	Currency          string
	SuccessURL        string
	CancelURL         string
	Lines             []SessionLine
}

// CompletedCheckout is a verified checkout-completion event.
type CompletedCheckout struct {
	EventID           string
	ClientReferenceID string
}

// Gateway defines the interface to the external payment provider.
type Gateway interface {
	// CreateSession creates a hosted checkout session and returns the
	// URL the customer is redirected to.
	CreateSession(req *SessionRequest) (string, error)

	// ParseEvent verifies a webhook payload against its signature and
	// returns the completed checkout it describes. Event types other
	// than checkout completion return (nil, nil).
	ParseEvent(payload []byte, signature string) (*CompletedCheckout, error)
}

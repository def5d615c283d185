package payments

import (
	"context"
	"time"

	"github.com/jacquesmit/myriad-green/models"
)

// Webhook event types the service reacts to. Anything else is a no-op.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutRequest carries everything a provider needs to open a hosted
// checkout session.
type CheckoutRequest struct {
	Cart      []models.CartItem
	Currency  string
	Origin    string
	IsBooking bool
	BookingID string
}

// CheckoutSession is the provider's answer: where to send the customer and
// the session identifier everything else is keyed by.
type CheckoutSession struct {
	URL       string
	SessionID string
}

// WebhookEvent is the provider-agnostic shape of an asynchronous payment
// event. AmountTotal is nil when the provider did not report a final amount.
type WebhookEvent struct {
	Type        string
	SessionID   string
	AmountTotal *int64
	Currency    string
	Metadata    map[string]string
}

// ProviderError exposes the non-sensitive diagnostic fields of a provider
// failure so handlers can surface them without leaking secrets.
type ProviderError struct {
	Message string
	Type    string
	Code    string
	Param   string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider abstracts the payment dependency so orchestration logic can be
// tested against fakes and the provider swapped without touching it.
type Provider interface {
	// CreateCheckout opens a hosted checkout session for the cart.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// ConstructWebhookEvent verifies the signature and decodes the payload.
	ConstructWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error)

	// ParseWebhookEvent decodes the payload without verification. Only for
	// explicitly insecure deployments.
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)

	// ListCheckoutSessions returns sessions created since the given time,
	// newest first, capped at max.
	ListCheckoutSessions(ctx context.Context, since time.Time, max int) ([]models.ProviderSession, error)

	// LatestSession returns the most recently created session, or nil when
	// there is none.
	LatestSession(ctx context.Context) (*models.ProviderSession, error)
}

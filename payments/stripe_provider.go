package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/jacquesmit/myriad-green/models"
)

// Stripe requires HTTPS image URLs; the catalog has none, so a placeholder
// keeps the hosted page rendering.
const placeholderImage = "https://via.placeholder.com/150"

// StripeProvider implements Provider against the Stripe Checkout API.
type StripeProvider struct {
	webhookSecret string
	currency      string
}

func NewStripeProvider(secretKey, webhookSecret, currency string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		webhookSecret: webhookSecret,
		currency:      strings.ToLower(currency),
	}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	currency := req.Currency
	if currency == "" {
		currency = p.currency
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Cart))
	for _, item := range req.Cart {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:   stripe.String(item.Name),
			Images: stripe.StringSlice([]string{placeholderImage}),
		}
		if desc := strings.TrimSpace(item.Description); desc != "" {
			productData.Description = stripe.String(desc)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.MinorUnits()),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	successURL := fmt.Sprintf("%s/thank-you-order.html?sessionId={CHECKOUT_SESSION_ID}", req.Origin)
	cancelURL := fmt.Sprintf("%s/checkout.html", req.Origin)
	if req.IsBooking {
		successURL = fmt.Sprintf("%s/thank-you.html?bookingId=%s&sessionId={CHECKOUT_SESSION_ID}",
			req.Origin, url.QueryEscape(req.BookingID))
		cancelURL = fmt.Sprintf("%s/booking-page.html", req.Origin)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	params.Context = ctx
	flowType := models.FlowOrder
	if req.IsBooking {
		flowType = models.FlowBooking
	}
	params.AddMetadata("flow_type", flowType)
	params.AddMetadata("bookingId", req.BookingID)

	s, err := session.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &CheckoutSession{URL: s.URL, SessionID: s.ID}, nil
}

func (p *StripeProvider) ConstructWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return decodeSessionEvent(string(event.Type), event.Data.Raw)
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event struct {
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	return decodeSessionEvent(event.Type, event.Data.Object)
}

func (p *StripeProvider) ListCheckoutSessions(ctx context.Context, since time.Time, max int) ([]models.ProviderSession, error) {
	params := &stripe.CheckoutSessionListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var sessions []models.ProviderSession
	iter := session.List(params)
	for iter.Next() {
		if len(sessions) >= max {
			break
		}
		sessions = append(sessions, toProviderSession(iter.CheckoutSession()))
	}
	if err := iter.Err(); err != nil {
		return sessions, wrapStripeError(err)
	}
	return sessions, nil
}

func (p *StripeProvider) LatestSession(ctx context.Context) (*models.ProviderSession, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := session.List(params)
	for iter.Next() {
		s := toProviderSession(iter.CheckoutSession())
		return &s, nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeError(err)
	}
	return nil, nil
}

func toProviderSession(s *stripe.CheckoutSession) models.ProviderSession {
	return models.ProviderSession{
		ID:          s.ID,
		CreatedISO:  time.Unix(s.Created, 0).UTC().Format(time.RFC3339),
		Status:      string(s.Status),
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
	}
}

// decodeSessionEvent extracts the session fields the consumers need. The
// checkout.session object keeps amount_total nullable, so it stays a pointer.
func decodeSessionEvent(eventType string, object []byte) (*WebhookEvent, error) {
	var sess struct {
		ID          string            `json:"id"`
		AmountTotal *int64            `json:"amount_total"`
		Currency    string            `json:"currency"`
		Metadata    map[string]string `json:"metadata"`
	}
	if len(object) > 0 {
		if err := json.Unmarshal(object, &sess); err != nil {
			return nil, fmt.Errorf("malformed event object: %w", err)
		}
	}
	return &WebhookEvent{
		Type:        eventType,
		SessionID:   sess.ID,
		AmountTotal: sess.AmountTotal,
		Currency:    sess.Currency,
		Metadata:    sess.Metadata,
	}, nil
}

func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Message: stripeErr.Msg,
			Type:    string(stripeErr.Type),
			Code:    string(stripeErr.Code),
			Param:   stripeErr.Param,
			Err:     err,
		}
	}
	return &ProviderError{Message: err.Error(), Err: err}
}

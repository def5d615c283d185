package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/events"
	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/repository"
)

// WebhookError marks a rejected delivery (bad signature or payload). Handlers
// map it to HTTP 400 so the provider retries only requests worth retrying.
type WebhookError struct {
	msg string
	err error
}

func (e *WebhookError) Error() string { return e.msg }

func (e *WebhookError) Unwrap() error { return e.err }

// WebhookService applies provider events to the store. Transitions are
// column sets, so at-least-once delivery converges; sub-step failures are
// logged and the delivery still acknowledged, since a provider retry cannot
// fix a persistence outage.
type WebhookService struct {
	provider         payments.Provider
	payments         repository.PaymentRepository
	orders           repository.OrderRepository
	bookings         repository.BookingRepository
	events           repository.EventRepository
	publisher        events.Publisher
	secretConfigured bool
	allowUnverified  bool
	logger           *zap.Logger
}

func NewWebhookService(
	provider payments.Provider,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	publisher events.Publisher,
	secretConfigured bool,
	allowUnverified bool,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		provider:         provider,
		payments:         paymentRepo,
		orders:           orderRepo,
		bookings:         bookingRepo,
		events:           eventRepo,
		publisher:        publisher,
		secretConfigured: secretConfigured,
		allowUnverified:  allowUnverified,
		logger:           logger,
	}
}

// HandleWebhook decodes and applies one delivery. A non-nil return means the
// request itself was invalid; processing failures never surface.
func (s *WebhookService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.decode(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case payments.EventCheckoutCompleted:
		s.handleCompleted(ctx, event)
	case payments.EventCheckoutExpired:
		s.handleExpired(ctx, event)
	default:
		// Forward-compatible no-op.
	}
	return nil
}

func (s *WebhookService) decode(payload []byte, sigHeader string) (*payments.WebhookEvent, error) {
	if s.secretConfigured {
		event, err := s.provider.ConstructWebhookEvent(payload, sigHeader)
		if err != nil {
			return nil, &WebhookError{msg: fmt.Sprintf("Webhook Error: %v", err), err: err}
		}
		return event, nil
	}

	if !s.allowUnverified {
		return nil, &WebhookError{msg: "Webhook Error: no signing secret configured"}
	}

	// Explicitly insecure mode for local development only.
	s.logger.Warn("accepting unverified webhook payload; ALLOW_UNVERIFIED_WEBHOOKS is enabled")
	event, err := s.provider.ParseWebhookEvent(payload)
	if err != nil {
		return nil, &WebhookError{msg: fmt.Sprintf("Webhook Error: %v", err), err: err}
	}
	return event, nil
}

func (s *WebhookService) handleCompleted(ctx context.Context, event *payments.WebhookEvent) {
	payment, err := s.payments.FindBySession(ctx, event.SessionID)
	if err != nil {
		s.logger.Warn("payment lookup failed",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		payment = nil
	}
	// Replays converge on the terminal status; skip the audit side effects so
	// events do not accumulate.
	replay := payment != nil && payment.Status == models.PaymentStatusCompleted

	if err := s.payments.SetCompleted(ctx, event.SessionID, event.AmountTotal, event.Currency); err != nil {
		s.logger.Warn("payment status update failed",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}

	flowType := event.Metadata["flow_type"]
	bookingID := event.Metadata["bookingId"]
	if payment != nil {
		flowType = payment.FlowType
		bookingID = payment.BookingID
	}

	if payment != nil && payment.OrderID != nil {
		s.markOrderPaid(ctx, event, *payment, replay)
		return
	}

	if flowType == models.FlowBooking || bookingID != "" {
		s.confirmBooking(ctx, event, bookingID, replay)
	}
}

func (s *WebhookService) markOrderPaid(ctx context.Context, event *payments.WebhookEvent, payment models.Payment, replay bool) {
	order, err := s.orders.FindByID(ctx, *payment.OrderID)
	if err != nil {
		s.logger.Warn("order lookup failed",
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err),
		)
		return
	}
	if order.Status == models.OrderStatusPaid {
		return
	}

	if err := s.orders.MarkPaid(ctx, order.ID, time.Now()); err != nil {
		s.logger.Warn("order status update failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return
	}
	if replay {
		return
	}
	s.appendEvent(ctx, models.ParentOrder, order.ID.String(), event.SessionID)
	s.publishSucceeded(ctx, event, order.ID.String(), "", models.FlowOrder)
}

func (s *WebhookService) confirmBooking(ctx context.Context, event *payments.WebhookEvent, bookingID string, replay bool) {
	if bookingID == "" {
		return
	}
	if err := s.bookings.Confirm(ctx, bookingID, event.SessionID); err != nil {
		s.logger.Warn("booking status update failed",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		return
	}
	if replay {
		return
	}
	s.appendEvent(ctx, models.ParentBooking, bookingID, event.SessionID)
	s.publishSucceeded(ctx, event, "", bookingID, models.FlowBooking)
}

func (s *WebhookService) handleExpired(ctx context.Context, event *payments.WebhookEvent) {
	if err := s.payments.SetExpired(ctx, event.SessionID); err != nil {
		s.logger.Warn("payment expire update failed",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}

func (s *WebhookService) appendEvent(ctx context.Context, parentType, parentID, sessionID string) {
	err := s.events.Append(ctx, parentType, parentID, models.EventPaymentSucceeded, map[string]any{
		"sessionId": sessionID,
	})
	if err != nil {
		s.logger.Warn("event log failed",
			zap.String("parent_id", parentID),
			zap.Error(err),
		)
	}
}

func (s *WebhookService) publishSucceeded(ctx context.Context, event *payments.WebhookEvent, orderID, bookingID, flowType string) {
	var amount int64
	if event.AmountTotal != nil {
		amount = *event.AmountTotal
	}
	err := s.publisher.PublishOrderEvent(ctx, models.OrderEvent{
		Type:      "payment_succeeded",
		OrderID:   orderID,
		BookingID: bookingID,
		SessionID: event.SessionID,
		FlowType:  flowType,
		Amount:    amount,
		Currency:  event.Currency,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("order event publish failed", zap.Error(err))
	}
}

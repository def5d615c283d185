package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/events"
	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/repository"
)

// ValidationError marks request problems the caller can fix. Handlers map it
// to HTTP 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

var (
	ErrCartEmpty              = &ValidationError{msg: "Cart is empty"}
	ErrInvalidCartItem        = &ValidationError{msg: "Invalid cart item: quantity must be at least 1 and price non-negative"}
	ErrMissingCustomerDetails = &ValidationError{msg: "Missing required customer details (name, email, phone, address)"}
)

// CheckoutRequest is the parsed checkout form.
type CheckoutRequest struct {
	Cart             []models.CartItem
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    string
	CustomerAddress  string
	Origin           string
	BookingID        string
	BookingDateTime  string
	BookingHours     string
	BookingEmergency bool
	BookingMessage   string
}

// CheckoutService orchestrates session creation. Only validation and the
// provider call can fail the request; every persistence and notification step
// is best-effort and merely logged.
type CheckoutService struct {
	provider  payments.Provider
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	events    repository.EventRepository
	publisher events.Publisher
	notifier  *Notifier
	currency  string
	logger    *zap.Logger
}

func NewCheckoutService(
	provider payments.Provider,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	eventRepo repository.EventRepository,
	publisher events.Publisher,
	notifier *Notifier,
	currency string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		provider:  provider,
		payments:  paymentRepo,
		orders:    orderRepo,
		customers: customerRepo,
		events:    eventRepo,
		publisher: publisher,
		notifier:  notifier,
		currency:  currency,
		logger:    logger,
	}
}

// CreateCheckoutSession runs the full orchestration and returns the redirect
// URL. See the package tests for the failure-containment contract.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if err := validateCheckout(req); err != nil {
		return "", err
	}
	isBooking := req.BookingID != ""

	// Resolve or create the customer. Non-fatal: checkout proceeds without it.
	customerID, err := s.customers.Upsert(ctx, req.CustomerEmail, req.CustomerName, req.CustomerPhone)
	if err != nil {
		s.logger.Warn("customer upsert skipped/failed", zap.Error(err))
		customerID = ""
	}

	session, err := s.provider.CreateCheckout(ctx, payments.CheckoutRequest{
		Cart:      req.Cart,
		Currency:  s.currency,
		Origin:    req.Origin,
		IsBooking: isBooking,
		BookingID: req.BookingID,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("checkout session created",
		zap.String("session_id", session.SessionID),
		zap.Bool("booking", isBooking),
	)

	totalMinor := models.CartTotalMinorUnits(req.Cart)
	flowType := models.FlowOrder
	if isBooking {
		flowType = models.FlowBooking
	}
	payment := &models.Payment{
		SessionID:     session.SessionID,
		FlowType:      flowType,
		BookingID:     req.BookingID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Currency:      s.currency,
		AmountTotal:   totalMinor,
		Mode:          "payment",
		Status:        models.PaymentStatusCreated,
		CustomerID:    customerID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.logger.Warn("payment record write failed",
			zap.String("session_id", session.SessionID),
			zap.Error(err),
		)
	}

	var order *models.Order
	if !isBooking {
		order = s.createOrder(ctx, req, session.SessionID, customerID, totalMinor)
	}

	note := CheckoutNotification{
		Cart:             req.Cart,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		IsBooking:        isBooking,
		BookingID:        req.BookingID,
		BookingDateTime:  req.BookingDateTime,
		BookingHours:     req.BookingHours,
		BookingEmergency: req.BookingEmergency,
		BookingMessage:   req.BookingMessage,
	}
	emailSent := s.notifier.SendCustomerConfirmation(ctx, note)
	s.notifier.SendInternalNotification(ctx, note)

	if order != nil {
		if err := s.orders.SetEmailStatus(ctx, order.ID, emailSent, time.Now()); err != nil {
			s.logger.Warn("order email status update failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		} else if emailSent {
			s.appendEvent(ctx, models.ParentOrder, order.ID.String(), models.EventEmailSent, map[string]any{
				"to": req.CustomerEmail,
			})
		}
	}

	return session.URL, nil
}

// createOrder persists the cart snapshot for non-booking flows. Best-effort:
// a nil return means the order write failed and was logged.
func (s *CheckoutService) createOrder(ctx context.Context, req CheckoutRequest, sessionID, customerID string, totalMinor int64) *models.Order {
	order := &models.Order{
		Cart:            req.Cart,
		SessionID:       sessionID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Status:          models.OrderStatusPendingPayment,
		CustomerID:      customerID,
		EmailSent:       false,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Warn("order write skipped/failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}
	s.logger.Info("order saved",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sessionID),
	)

	if err := s.payments.LinkOrder(ctx, sessionID, order.ID); err != nil {
		s.logger.Warn("payment-order link failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	s.appendEvent(ctx, models.ParentOrder, order.ID.String(), models.EventCreated, map[string]any{
		"sessionId":   sessionID,
		"amountTotal": totalMinor,
		"currency":    s.currency,
	})

	if err := s.publisher.PublishOrderEvent(ctx, models.OrderEvent{
		Type:      "order_created",
		OrderID:   order.ID.String(),
		SessionID: sessionID,
		FlowType:  models.FlowOrder,
		Amount:    totalMinor,
		Currency:  s.currency,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("order event publish failed", zap.Error(err))
	}
	return order
}

func (s *CheckoutService) appendEvent(ctx context.Context, parentType, parentID, eventType string, payload map[string]any) {
	if err := s.events.Append(ctx, parentType, parentID, eventType, payload); err != nil {
		s.logger.Warn("event log failed",
			zap.String("type", eventType),
			zap.String("parent_id", parentID),
			zap.Error(err),
		)
	}
}

func validateCheckout(req CheckoutRequest) error {
	if len(req.Cart) == 0 {
		return ErrCartEmpty
	}
	for _, item := range req.Cart {
		if item.Quantity < 1 || item.Price < 0 {
			return ErrInvalidCartItem
		}
	}
	if req.CustomerName == "" || req.CustomerEmail == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		return ErrMissingCustomerDetails
	}
	return nil
}

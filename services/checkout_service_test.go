package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/services"
)

type checkoutEnv struct {
	provider  *fakeProvider
	payments  *fakePaymentRepo
	orders    *fakeOrderRepo
	customers *fakeCustomerRepo
	events    *fakeEventRepo
	publisher *fakePublisher
	primary   *fakeSender
	svc       *services.CheckoutService
}

func newCheckoutEnv() *checkoutEnv {
	env := &checkoutEnv{
		provider:  &fakeProvider{session: &payments.CheckoutSession{URL: "https://checkout.example/s/cs_test_1", SessionID: "cs_test_1"}},
		payments:  newFakePaymentRepo(),
		orders:    newFakeOrderRepo(),
		customers: &fakeCustomerRepo{},
		events:    &fakeEventRepo{},
		publisher: &fakePublisher{},
		primary:   &fakeSender{},
	}
	logger, _ := zap.NewDevelopment()
	notifier := services.NewNotifier(env.primary, nil, services.NotifierConfig{
		CompanyName:      "Myriad Green",
		Currency:         "zar",
		OrderNotifyEmail: "ops@myriadgreen.example",
		TemplateOrder:    "tpl_order",
		TemplateBooking:  "tpl_booking",
	}, logger)
	env.svc = services.NewCheckoutService(
		env.provider, env.payments, env.orders, env.customers, env.events,
		env.publisher, notifier, "zar", logger,
	)
	return env
}

func orderRequest() services.CheckoutRequest {
	return services.CheckoutRequest{
		Cart: []models.CartItem{
			{Name: "Widget", Price: 50.00, Quantity: 2},
		},
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+27 82 000 0000",
		CustomerEmail:   "Jane@Example.com",
		CustomerAddress: "1 Garden Rd, Pretoria",
		Origin:          "https://myriadgreen.example",
	}
}

func TestCreateCheckoutSession_OrderFlow(t *testing.T) {
	env := newCheckoutEnv()

	url, err := env.svc.CreateCheckoutSession(context.Background(), orderRequest())

	assert.Nil(t, err)
	assert.Equal(t, "https://checkout.example/s/cs_test_1", url)

	payment := env.payments.payments["cs_test_1"]
	if assert.NotNil(t, payment) {
		assert.Equal(t, models.FlowOrder, payment.FlowType)
		assert.Equal(t, int64(10000), payment.AmountTotal)
		assert.Equal(t, models.PaymentStatusCreated, payment.Status)
		assert.NotNil(t, payment.OrderID)
	}

	order, findErr := env.orders.FindBySession(context.Background(), "cs_test_1")
	if assert.Nil(t, findErr) {
		assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
		assert.True(t, order.EmailSent)
	}

	assert.Equal(t, 1, env.events.countByType(models.EventCreated))
	assert.Equal(t, 1, env.events.countByType(models.EventEmailSent))
	if assert.Len(t, env.publisher.published, 1) {
		assert.Equal(t, "order_created", env.publisher.published[0].Type)
		assert.Equal(t, int64(10000), env.publisher.published[0].Amount)
	}
	// Customer confirmation plus the internal copy.
	assert.Len(t, env.primary.sent, 2)
}

func TestCreateCheckoutSession_BookingFlow(t *testing.T) {
	env := newCheckoutEnv()
	req := orderRequest()
	req.Cart = []models.CartItem{{Name: "Booking: Sprinkler Repair", Price: 650, Quantity: 1}}
	req.BookingID = "bk_42"
	req.BookingDateTime = "2026-09-02T09:00"

	url, err := env.svc.CreateCheckoutSession(context.Background(), req)

	assert.Nil(t, err)
	assert.NotEmpty(t, url)

	payment := env.payments.payments["cs_test_1"]
	if assert.NotNil(t, payment) {
		assert.Equal(t, models.FlowBooking, payment.FlowType)
		assert.Equal(t, "bk_42", payment.BookingID)
		assert.Nil(t, payment.OrderID)
	}
	// Bookings never create an order record or order events.
	assert.Empty(t, env.orders.orders)
	assert.Empty(t, env.events.appended)
	assert.Empty(t, env.publisher.published)
}

func TestCreateCheckoutSession_EmptyCart(t *testing.T) {
	env := newCheckoutEnv()
	req := orderRequest()
	req.Cart = nil

	_, err := env.svc.CreateCheckoutSession(context.Background(), req)

	var verr *services.ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, "Cart is empty", verr.Error())
	}
	assert.Equal(t, 0, env.provider.createCalls)
	assert.Equal(t, 0, env.customers.calls)
}

func TestCreateCheckoutSession_InvalidCartItem(t *testing.T) {
	env := newCheckoutEnv()
	req := orderRequest()
	req.Cart = []models.CartItem{{Name: "Widget", Price: 50, Quantity: 0}}

	_, err := env.svc.CreateCheckoutSession(context.Background(), req)

	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, env.provider.createCalls)
}

func TestCreateCheckoutSession_MissingCustomerDetails(t *testing.T) {
	env := newCheckoutEnv()
	req := orderRequest()
	req.CustomerPhone = ""

	_, err := env.svc.CreateCheckoutSession(context.Background(), req)

	var verr *services.ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Contains(t, verr.Error(), "Missing required customer details")
	}
	assert.Equal(t, 0, env.provider.createCalls)
}

func TestCreateCheckoutSession_ProviderFailure(t *testing.T) {
	env := newCheckoutEnv()
	env.provider.session = nil
	env.provider.createErr = &payments.ProviderError{Message: "card_declined", Type: "card_error"}

	_, err := env.svc.CreateCheckoutSession(context.Background(), orderRequest())

	var perr *payments.ProviderError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, env.payments.payments)
	assert.Empty(t, env.orders.orders)
}

func TestCreateCheckoutSession_StorageFailuresAreContained(t *testing.T) {
	env := newCheckoutEnv()
	env.customers.upsertErr = errors.New("db down")
	env.payments.createErr = errors.New("db down")
	env.orders.createErr = errors.New("db down")
	env.events.appendErr = errors.New("db down")
	env.publisher.publishErr = errors.New("broker down")
	env.primary.sendErr = errors.New("smtp down")

	url, err := env.svc.CreateCheckoutSession(context.Background(), orderRequest())

	assert.Nil(t, err)
	assert.Equal(t, "https://checkout.example/s/cs_test_1", url)
}

func TestCreateCheckoutSession_EmailFailureRecordedOnOrder(t *testing.T) {
	env := newCheckoutEnv()
	env.primary.sendErr = errors.New("channel rejected")

	_, err := env.svc.CreateCheckoutSession(context.Background(), orderRequest())

	assert.Nil(t, err)
	order, findErr := env.orders.FindBySession(context.Background(), "cs_test_1")
	if assert.Nil(t, findErr) {
		assert.False(t, order.EmailSent)
		assert.NotNil(t, order.EmailUpdatedAt)
	}
	assert.Equal(t, 0, env.events.countByType(models.EventEmailSent))
}

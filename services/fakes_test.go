package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/sender"
)

// ---- fake payment repository ----

type fakePaymentRepo struct {
	createErr       error
	findErr         error
	linkErr         error
	setCompletedErr error
	setExpiredErr   error

	payments      map[string]*models.Payment
	completedSets int
	expiredSets   int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*models.Payment{}}
}

func (f *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.payments[p.SessionID] = &cp
	return nil
}

func (f *fakePaymentRepo) FindBySession(_ context.Context, sessionID string) (*models.Payment, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.payments[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) LinkOrder(_ context.Context, sessionID string, orderID uuid.UUID) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	if p, ok := f.payments[sessionID]; ok {
		id := orderID
		p.OrderID = &id
	}
	return nil
}

func (f *fakePaymentRepo) SetCompleted(_ context.Context, sessionID string, amountTotal *int64, currency string) error {
	if f.setCompletedErr != nil {
		return f.setCompletedErr
	}
	f.completedSets++
	if p, ok := f.payments[sessionID]; ok {
		p.Status = models.PaymentStatusCompleted
		if amountTotal != nil {
			p.AmountTotal = *amountTotal
		}
		if currency != "" {
			p.Currency = currency
		}
	}
	return nil
}

func (f *fakePaymentRepo) SetExpired(_ context.Context, sessionID string) error {
	if f.setExpiredErr != nil {
		return f.setExpiredErr
	}
	f.expiredSets++
	if p, ok := f.payments[sessionID]; ok {
		p.Status = models.PaymentStatusExpired
	}
	return nil
}

// ---- fake order repository ----

type fakeOrderRepo struct {
	createErr   error
	findErr     error
	sinceErr    error
	markPaidErr error
	emailErr    error

	orders     map[uuid.UUID]*models.Order
	sinceList  []models.Order
	paidSets   int
	emailCalls int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPendingPayment
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) FindBySession(_ context.Context, sessionID string) (*models.Order, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, o := range f.orders {
		if o.SessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) FindRecent(_ context.Context, limit int) ([]models.Order, error) {
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeOrderRepo) FindSince(_ context.Context, _ time.Time) ([]models.Order, error) {
	if f.sinceErr != nil {
		return nil, f.sinceErr
	}
	return f.sinceList, nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, orderID uuid.UUID, paidAt time.Time) error {
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	f.paidSets++
	if o, ok := f.orders[orderID]; ok {
		o.Status = models.OrderStatusPaid
		at := paidAt
		o.PaidAt = &at
	}
	return nil
}

func (f *fakeOrderRepo) SetEmailStatus(_ context.Context, orderID uuid.UUID, sent bool, at time.Time) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emailCalls++
	if o, ok := f.orders[orderID]; ok {
		o.EmailSent = sent
		ts := at
		o.EmailUpdatedAt = &ts
	}
	return nil
}

// ---- fake customer repository ----

type fakeCustomerRepo struct {
	id        string
	upsertErr error
	calls     int
}

func (f *fakeCustomerRepo) Upsert(_ context.Context, email, _, _ string) (string, error) {
	f.calls++
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	if f.id != "" {
		return f.id, nil
	}
	return models.NormalizeEmail(email), nil
}

// ---- fake booking repository ----

type fakeBookingRepo struct {
	confirmErr error
	confirmed  map[string]string // bookingID -> sessionID
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{confirmed: map[string]string{}}
}

func (f *fakeBookingRepo) Confirm(_ context.Context, bookingID, sessionID string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed[bookingID] = sessionID
	return nil
}

// ---- fake event repository ----

type appendedEvent struct {
	parentType string
	parentID   string
	eventType  string
	payload    map[string]any
}

type fakeEventRepo struct {
	appendErr error
	appended  []appendedEvent
}

func (f *fakeEventRepo) Append(_ context.Context, parentType, parentID, eventType string, payload map[string]any) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, appendedEvent{parentType, parentID, eventType, payload})
	return nil
}

func (f *fakeEventRepo) ListByParent(_ context.Context, parentType, parentID string) ([]models.LifecycleEvent, error) {
	var out []models.LifecycleEvent
	for _, e := range f.appended {
		if e.parentType == parentType && e.parentID == parentID {
			out = append(out, models.LifecycleEvent{ParentType: e.parentType, ParentID: e.parentID, Type: e.eventType})
		}
	}
	return out, nil
}

func (f *fakeEventRepo) countByType(eventType string) int {
	n := 0
	for _, e := range f.appended {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

// ---- fake event publisher ----

type fakePublisher struct {
	publishErr error
	published  []models.OrderEvent
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// ---- fake payment provider ----

type fakeProvider struct {
	session      *payments.CheckoutSession
	createErr    error
	createCalls  int
	event        *payments.WebhookEvent
	constructErr error
	parseErr     error
	sessions     []models.ProviderSession
	listErr      error
	latest       *models.ProviderSession
}

func (f *fakeProvider) CreateCheckout(_ context.Context, _ payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.createCalls++
	return f.session, f.createErr
}

func (f *fakeProvider) ConstructWebhookEvent(_ []byte, _ string) (*payments.WebhookEvent, error) {
	return f.event, f.constructErr
}

func (f *fakeProvider) ParseWebhookEvent(_ []byte) (*payments.WebhookEvent, error) {
	return f.event, f.parseErr
}

func (f *fakeProvider) ListCheckoutSessions(_ context.Context, _ time.Time, _ int) ([]models.ProviderSession, error) {
	return f.sessions, f.listErr
}

func (f *fakeProvider) LatestSession(_ context.Context) (*models.ProviderSession, error) {
	return f.latest, nil
}

// ---- fake email sender ----

type fakeSender struct {
	sendErr error
	sent    []sender.Message
}

func (f *fakeSender) SendEmail(_ context.Context, msg sender.Message) (sender.SendResult, error) {
	if f.sendErr != nil {
		return sender.SendResult{}, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return sender.SendResult{MessageID: "msg_1", SentAt: time.Now()}, nil
}

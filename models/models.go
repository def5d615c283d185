package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeEmail lower-cases and trims an email address. Customer records are
// keyed by the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Flow types distinguish a product order from a service booking.
const (
	FlowOrder   = "order"
	FlowBooking = "booking"
)

// Payment statuses mirror the checkout session lifecycle at the provider.
const (
	PaymentStatusCreated   = "created"
	PaymentStatusCompleted = "completed"
	PaymentStatusExpired   = "expired"
)

// Order statuses.
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
)

// BookingStatusConfirmed is the only transition this service writes to a
// booking; the record itself is created upstream.
const BookingStatusConfirmed = "confirmed"

// Lifecycle event types (append-only audit trail).
const (
	EventCreated          = "created"
	EventEmailSent        = "email_sent"
	EventPaymentSucceeded = "payment_succeeded"
)

// Lifecycle event parent types.
const (
	ParentOrder   = "order"
	ParentBooking = "booking"
)

type CartItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// MinorUnits converts the item's unit price to minor currency units.
func (i CartItem) MinorUnits() int64 {
	return int64(math.Round(i.Price * 100))
}

// CartTotalMinorUnits sums unit price times quantity across the cart, in
// minor currency units.
func CartTotalMinorUnits(cart []CartItem) int64 {
	var total int64
	for _, item := range cart {
		total += item.MinorUnits() * int64(item.Quantity)
	}
	return total
}

// CartTotalMajorUnits sums the cart in major currency units (used for email
// copy and reconciliation comparisons).
func CartTotalMajorUnits(cart []CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Customer is keyed by normalized email and upserted on every checkout
// attempt. Never deleted by this service.
type Customer struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Phones    []string  `gorm:"serializer:json" json:"phones"`
	Emails    []string  `gorm:"serializer:json" json:"emails"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Payment is keyed by the provider checkout session ID. Created by the
// checkout orchestrator, mutated only by the webhook consumer.
type Payment struct {
	SessionID     string     `gorm:"primaryKey" json:"sessionId"`
	FlowType      string     `gorm:"type:varchar(20);not null" json:"flow_type"`
	BookingID     string     `gorm:"type:varchar(64);index" json:"bookingId"`
	CustomerEmail string     `gorm:"type:varchar(255)" json:"customerEmail"`
	CustomerName  string     `gorm:"type:varchar(255)" json:"customerName"`
	Currency      string     `gorm:"type:varchar(10)" json:"currency"`
	AmountTotal   int64      `json:"amountTotal"` // minor units
	Mode          string     `gorm:"type:varchar(20)" json:"mode"`
	Status        string     `gorm:"type:varchar(20);not null" json:"status"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index" json:"orderId,omitempty"`
	CustomerID    string     `gorm:"type:varchar(255);index" json:"customerId,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Order snapshots the cart and customer contact details for non-booking
// flows. Status moves pending_payment -> paid via the webhook consumer.
type Order struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Cart            []CartItem `gorm:"serializer:json" json:"cart"`
	SessionID       string     `gorm:"uniqueIndex;not null" json:"sessionId"`
	CustomerName    string     `gorm:"type:varchar(255)" json:"customerName"`
	CustomerPhone   string     `gorm:"type:varchar(64)" json:"customerPhone"`
	CustomerEmail   string     `gorm:"type:varchar(255);index" json:"customerEmail"`
	CustomerAddress string     `json:"customerAddress"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	CustomerID      string     `gorm:"type:varchar(255);index" json:"customerId,omitempty"`
	EmailSent       bool       `json:"emailSent"`
	EmailUpdatedAt  *time.Time `json:"emailUpdatedAt,omitempty"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Booking records are created by the booking flow before checkout; this
// service only confirms them and links the payment session.
type Booking struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	Status           string    `gorm:"type:varchar(20)" json:"status"`
	StripeSessionID  string    `gorm:"index" json:"stripeSessionId"`
	PaymentSessionID string    `gorm:"index" json:"paymentSessionId"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// LifecycleEvent is an append-only audit entry attached to an order or
// booking.
type LifecycleEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ParentType string         `gorm:"type:varchar(20);not null;index:idx_event_parent" json:"parentType"`
	ParentID   string         `gorm:"not null;index:idx_event_parent" json:"parentId"`
	Type       string         `gorm:"type:varchar(40);not null" json:"type"`
	Payload    map[string]any `gorm:"serializer:json" json:"payload,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

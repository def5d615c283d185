package models

import "time"

// OrderEvent is the message published to the order-events topic when an
// order is created or paid. Consumers use it for the same audit trail the
// lifecycle_events table provides in storage.
type OrderEvent struct {
	Type      string    `json:"type"` // "order_created" or "payment_succeeded"
	OrderID   string    `json:"order_id,omitempty"`
	BookingID string    `json:"booking_id,omitempty"`
	SessionID string    `json:"session_id"`
	FlowType  string    `json:"flow_type"`
	Amount    int64     `json:"amount"` // smallest currency unit
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"` // UTC event time
}

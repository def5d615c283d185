package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jacquesmit/myriad-green/models"
)

// BookingRepository writes the single transition this service owns on
// bookings: confirmation plus the payment session link. The record itself is
// created by the booking flow before checkout, but the upsert keeps webhook
// processing safe when that write raced or failed.
type BookingRepository interface {
	Confirm(ctx context.Context, bookingID, sessionID string) error
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) BookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Confirm(ctx context.Context, bookingID, sessionID string) error {
	booking := models.Booking{
		ID:               bookingID,
		Status:           models.BookingStatusConfirmed,
		StripeSessionID:  sessionID,
		PaymentSessionID: sessionID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "stripe_session_id", "payment_session_id", "updated_at"}),
		}).
		Create(&booking).Error
}

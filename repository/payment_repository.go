package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jacquesmit/myriad-green/models"
)

// PaymentRepository stores payment records keyed by provider session ID.
// Status transitions are plain column sets so webhook replays converge.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindBySession(ctx context.Context, sessionID string) (*models.Payment, error)
	LinkOrder(ctx context.Context, sessionID string, orderID uuid.UUID) error
	SetCompleted(ctx context.Context, sessionID string, amountTotal *int64, currency string) error
	SetExpired(ctx context.Context, sessionID string) error
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormPaymentRepository) FindBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) LinkOrder(ctx context.Context, sessionID string, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("session_id = ?", sessionID).
		Update("order_id", orderID).Error
}

func (r *GormPaymentRepository) SetCompleted(ctx context.Context, sessionID string, amountTotal *int64, currency string) error {
	updates := map[string]any{"status": models.PaymentStatusCompleted}
	if amountTotal != nil {
		updates["amount_total"] = *amountTotal
	}
	if currency != "" {
		updates["currency"] = currency
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("session_id = ?", sessionID).
		Updates(updates).Error
}

func (r *GormPaymentRepository) SetExpired(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("session_id = ?", sessionID).
		Update("status", models.PaymentStatusExpired).Error
}

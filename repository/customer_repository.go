package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jacquesmit/myriad-green/models"
)

// CustomerRepository upserts customer records keyed by normalized email.
type CustomerRepository interface {
	Upsert(ctx context.Context, email, name, phone string) (string, error)
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Upsert creates the customer when absent, otherwise refreshes the latest
// seen name. Returns the customer ID (normalized email), or "" when the
// email normalizes to nothing.
func (r *GormCustomerRepository) Upsert(ctx context.Context, email, name, phone string) (string, error) {
	id := models.NormalizeEmail(email)
	if id == "" {
		return "", nil
	}

	var existing models.Customer
	err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer := models.Customer{
			ID:     id,
			Name:   name,
			Emails: []string{id},
		}
		if phone != "" {
			customer.Phones = []string{phone}
		}
		if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
			return "", err
		}
		return id, nil
	case err != nil:
		return "", err
	default:
		// keep latest seen details
		updates := map[string]any{"name": existing.Name}
		if name != "" {
			updates["name"] = name
		}
		if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return "", err
		}
		return id, nil
	}
}

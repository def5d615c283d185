package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jacquesmit/myriad-green/models"
)

// EventRepository appends lifecycle audit entries. Append-only, nothing here
// ever updates or deletes.
type EventRepository interface {
	Append(ctx context.Context, parentType, parentID, eventType string, payload map[string]any) error
	ListByParent(ctx context.Context, parentType, parentID string) ([]models.LifecycleEvent, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Append(ctx context.Context, parentType, parentID, eventType string, payload map[string]any) error {
	event := models.LifecycleEvent{
		ParentType: parentType,
		ParentID:   parentID,
		Type:       eventType,
		Payload:    payload,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *GormEventRepository) ListByParent(ctx context.Context, parentType, parentID string) ([]models.LifecycleEvent, error) {
	var events []models.LifecycleEvent
	if err := r.db.WithContext(ctx).
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmylchreest/eventexport/internal/models"
)

// eventRepo implements EventRepository using GORM.
type eventRepo struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *gorm.DB) *eventRepo {
	return &eventRepo{db: db}
}

// GetByID retrieves an event by ID within a company.
func (r *eventRepo) GetByID(ctx context.Context, eventID, companyID models.ULID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", eventID, companyID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting event by ID: %w", err)
	}
	return &event, nil
}

// GetAll retrieves all events.
func (r *eventRepo) GetAll(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	if err := r.db.WithContext(ctx).Order("starts_at DESC, created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("getting all events: %w", err)
	}
	return events, nil
}

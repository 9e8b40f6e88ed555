package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/schooldesk/reservations-api/internal/models"
	"gorm.io/gorm"
)

// nextArrivalPriority is the queue position for a brand-new waitlist
// registration: one past the current waitlist size.
func nextArrivalPriority(tx *gorm.DB, eventID uint) (int, error) {
	var n int64
	err := tx.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationWaitlist).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return int(n) + 1, nil
}

// nextDemotionPriority places a demoted registration at the back of the
// queue: one past the largest priority ever handed out for the event.
func nextDemotionPriority(tx *gorm.DB, eventID uint) (int, error) {
	var max int64
	err := tx.Model(&models.Registration{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(MAX(waitlist_priority), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("max waitlist priority: %w", err)
	}
	return int(max) + 1, nil
}

// Waitlist returns the event's pending registrations in FIFO order.
// Promotion is always an explicit admin action; nothing in the engine
// consumes this queue automatically.
func (e *Engine) Waitlist(ctx context.Context, eventID uint, actor Actor) ([]models.Registration, error) {
	if _, err := e.eventForActor(ctx, eventID, actor); err != nil {
		return nil, err
	}

	var regs []models.Registration
	err := e.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationWaitlist).
		Order("waitlist_priority ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	return regs, nil
}

// eventForActor loads an event and enforces tenant scope. Cross-tenant
// lookups report NotFound rather than Forbidden so event ids cannot be
// probed across schools.
func (e *Engine) eventForActor(ctx context.Context, eventID uint, actor Actor) (*models.Event, error) {
	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, newError(KindNotFound, "event not found")
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event.SchoolID != actor.SchoolID {
		return nil, newError(KindNotFound, "event not found")
	}
	return &event, nil
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

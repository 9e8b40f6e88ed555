package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schooldesk/reservations-api/internal/models"
)

// EventParams configures a new bookable event.
type EventParams struct {
	Name                      string
	Type                      models.EventType
	Capacity                  int
	StartsAt                  time.Time
	AllowCancellation         bool
	CancellationDeadlineHours int
	RequireCancellationReason bool
}

// CreateEvent creates an event in the acting admin's school.
func (e *Engine) CreateEvent(ctx context.Context, params EventParams, actor Actor) (*models.Event, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, newError(KindValidation, "event name is required")
	}
	switch params.Type {
	case models.EventCapacityBased:
		if params.Capacity < 1 {
			return nil, newError(KindValidation, "capacity must be at least 1")
		}
	case models.EventTableBased:
	default:
		return nil, newError(KindValidation, "event type must be %s or %s",
			models.EventCapacityBased, models.EventTableBased)
	}
	if err := (mutation{op: "event.create", schoolID: actor.SchoolID, eventWrite: true}).validate(); err != nil {
		return nil, err
	}

	event := models.Event{
		SchoolID:                  actor.SchoolID,
		Name:                      params.Name,
		Type:                      params.Type,
		Capacity:                  params.Capacity,
		StartsAt:                  params.StartsAt,
		Status:                    models.EventOpen,
		AllowCancellation:         params.AllowCancellation,
		CancellationDeadlineHours: params.CancellationDeadlineHours,
		RequireCancellationReason: params.RequireCancellationReason,
	}
	if err := e.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

// AddTable adds a physical table to a table-based event.
func (e *Engine) AddTable(ctx context.Context, eventID uint, capacity, minOrder int, actor Actor) (*models.Table, error) {
	if capacity < 1 {
		return nil, newError(KindValidation, "table capacity must be at least 1")
	}
	if minOrder < 0 || minOrder > capacity {
		return nil, newError(KindValidation, "minimum order must be between 0 and the table capacity")
	}

	event, err := e.eventForActor(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	if event.Type != models.EventTableBased {
		return nil, newError(KindValidation, "tables can only be added to %s events", models.EventTableBased)
	}

	table := models.Table{
		EventID:  eventID,
		Capacity: capacity,
		MinOrder: minOrder,
		Status:   models.TableAvailable,
	}
	if err := e.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, fmt.Errorf("insert table: %w", err)
	}
	return &table, nil
}

// SetEventStatus opens, pauses or closes registration for an event.
func (e *Engine) SetEventStatus(ctx context.Context, eventID uint, status models.EventStatus, actor Actor) error {
	switch status {
	case models.EventOpen, models.EventPaused, models.EventClosed:
	default:
		return newError(KindValidation, "unknown event status %q", status)
	}
	if _, err := e.eventForActor(ctx, eventID, actor); err != nil {
		return err
	}
	return e.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("status", status).Error
}

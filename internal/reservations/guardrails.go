package reservations

import (
	"context"

	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
)

// opDelete is the one write path allowed to hard-delete a registration.
const opDelete = "registration.delete"

// mutation is validated at the start of every engine write path. It
// replaces the ambient middleware guards of a typical web framework with
// an explicit, per-operation check.
type mutation struct {
	op         string
	eventID    uint
	schoolID   uint
	eventWrite bool
	hardDelete bool
}

func (m mutation) validate() error {
	if m.hardDelete && m.op != opDelete {
		return newError(KindInvariant, "hard delete attempted outside the sanctioned delete path (op=%s)", m.op)
	}
	if m.eventWrite {
		if m.schoolID == 0 {
			return newError(KindInvariant, "event write without a school (op=%s)", m.op)
		}
		return nil
	}
	if m.eventID == 0 {
		return newError(KindInvariant, "registration write without an event (op=%s)", m.op)
	}
	return nil
}

// checkOverbooking is the post-commit safety net: a separate read, outside
// any transaction, comparing confirmed spots against capacity. Under
// correct isolation an overage is unreachable; if it ever happens we alert
// the operator but leave the committed registration alone. Detection, not
// prevention. The check races with concurrent writes, so it is strictly a
// monitoring signal.
func (e *Engine) checkOverbooking(ctx context.Context, eventID uint) {
	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		e.log.Warn("overbooking check: event read failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}
	if event.Type != models.EventCapacityBased {
		return
	}

	var confirmed int64
	err := e.db.WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationConfirmed).
		Select("COALESCE(SUM(spots_count), 0)").
		Scan(&confirmed).Error
	if err != nil {
		e.log.Warn("overbooking check: aggregate failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}

	if int(confirmed) <= event.Capacity {
		return
	}

	overage := int(confirmed) - event.Capacity
	e.log.Error("event is overbooked",
		zap.Uint("event_id", eventID),
		zap.Int("capacity", event.Capacity),
		zap.Int64("confirmed", confirmed),
		zap.Int("overage", overage),
	)
	if e.notifier != nil {
		if err := e.notifier.NotifyOverbooking(eventID, event.Capacity, int(confirmed), overage); err != nil {
			e.log.Warn("overbooking notification failed", zap.Uint("event_id", eventID), zap.Error(err))
		}
	}
}

package reservations

import (
	"context"
	"fmt"

	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AllocationResult is what a successful registration request produces.
// AssignedTable is set only for confirmed table-based registrations.
type AllocationResult struct {
	Registration  models.Registration
	AssignedTable *models.Table
}

// Register routes a public registration request to the allocator matching
// the event type. Count means requested spots for capacity-based events
// and party size for table-based ones.
func (e *Engine) Register(ctx context.Context, eventID uint, count int, contact ContactInfo) (*AllocationResult, error) {
	var event models.Event
	if err := e.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, newError(KindNotFound, "event not found")
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	switch event.Type {
	case models.EventCapacityBased:
		return e.RegisterSpots(ctx, eventID, count, contact)
	case models.EventTableBased:
		return e.RegisterTable(ctx, eventID, count, contact)
	default:
		return nil, newError(KindValidation, "event has unknown type %q", event.Type)
	}
}

// RegisterSpots admits a registration against a capacity-based event. The
// admission decision uses the confirmed-spots aggregate computed inside
// the same serializable transaction; the cached SpotsReserved counter is
// only ever a display hint.
func (e *Engine) RegisterSpots(ctx context.Context, eventID uint, requestedSpots int, contact ContactInfo) (*AllocationResult, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if requestedSpots < 1 {
		return nil, newError(KindValidation, "spots count must be at least 1")
	}
	if err := (mutation{op: "registration.create", eventID: eventID}).validate(); err != nil {
		return nil, err
	}

	var reg models.Registration
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		event, err := openEvent(tx, eventID, models.EventCapacityBased)
		if err != nil {
			return err
		}

		confirmed, err := confirmedSpots(tx, eventID, 0)
		if err != nil {
			return err
		}

		code, err := uniqueConfirmationCode(tx, eventID)
		if err != nil {
			return err
		}
		token, err := e.issuer.Mint(eventID, contact.PhoneNumber)
		if err != nil {
			return fmt.Errorf("mint cancellation token: %w", err)
		}

		reg = models.Registration{
			EventID:           eventID,
			SpotsCount:        requestedSpots,
			ConfirmationCode:  code,
			GuestName:         contact.Name,
			PhoneNumber:       contact.PhoneNumber,
			CancellationToken: token,
		}

		if event.Capacity-confirmed >= requestedSpots {
			reg.Status = models.RegistrationConfirmed
		} else {
			reg.Status = models.RegistrationWaitlist
			priority, err := nextArrivalPriority(tx, eventID)
			if err != nil {
				return err
			}
			reg.WaitlistPriority = priority
		}

		if err := tx.Create(&reg).Error; err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}

		if reg.Status == models.RegistrationConfirmed {
			if err := reserveSpots(tx, eventID, requestedSpots); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.checkOverbooking(ctx, eventID)

	e.log.Info("registration allocated",
		zap.Uint("event_id", eventID),
		zap.Uint("registration_id", reg.ID),
		zap.String("status", string(reg.Status)),
		zap.Int("spots", requestedSpots),
	)
	return &AllocationResult{Registration: reg}, nil
}

// confirmedSpots is the authoritative confirmed-seat aggregate. A non-zero
// excludeRegID leaves that registration's own contribution out, which is
// what promotion re-validation needs.
func confirmedSpots(tx *gorm.DB, eventID uint, excludeRegID uint) (int, error) {
	q := tx.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationConfirmed)
	if excludeRegID != 0 {
		q = q.Where("id <> ?", excludeRegID)
	}
	var total int64
	if err := q.Select("COALESCE(SUM(spots_count), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("aggregate confirmed spots: %w", err)
	}
	return int(total), nil
}

// reserveSpots bumps the cached counter. Drift is tolerated; Reconcile
// repairs it and no decision ever reads it.
func reserveSpots(tx *gorm.DB, eventID uint, spots int) error {
	err := tx.Model(&models.Event{}).Where("id = ?", eventID).
		UpdateColumn("spots_reserved", gorm.Expr("spots_reserved + ?", spots)).Error
	if err != nil {
		return fmt.Errorf("increment spots_reserved: %w", err)
	}
	return nil
}

// releaseSpots reverses reserveSpots, clamped at zero so a drifted
// counter can never go negative.
func releaseSpots(tx *gorm.DB, eventID uint, spots int) error {
	err := tx.Model(&models.Event{}).Where("id = ?", eventID).
		UpdateColumn("spots_reserved", gorm.Expr("MAX(spots_reserved - ?, 0)", spots)).Error
	if err != nil {
		return fmt.Errorf("decrement spots_reserved: %w", err)
	}
	return nil
}

// openEvent loads the event inside the deciding transaction and checks it
// accepts registrations.
func openEvent(tx *gorm.DB, eventID uint, wantType models.EventType) (*models.Event, error) {
	var event models.Event
	if err := tx.First(&event, eventID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, newError(KindNotFound, "event not found")
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event.Type != wantType {
		return nil, newError(KindValidation, "event is not %s", wantType)
	}
	if event.Status != models.EventOpen {
		return nil, newError(KindValidation, "event is not open for registration")
	}
	return &event, nil
}

// Reconcile recomputes the cached SpotsReserved counter from the
// authoritative aggregate. This is the admin "fix" for counter drift.
func (e *Engine) Reconcile(ctx context.Context, eventID uint, actor Actor) (before, after int, err error) {
	if _, err = e.eventForActor(ctx, eventID, actor); err != nil {
		return 0, 0, err
	}
	err = e.inTx(ctx, func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			return fmt.Errorf("load event: %w", err)
		}
		confirmed, err := confirmedSpots(tx, eventID, 0)
		if err != nil {
			return err
		}
		before, after = event.SpotsReserved, confirmed
		return tx.Model(&models.Event{}).Where("id = ?", eventID).
			UpdateColumn("spots_reserved", confirmed).Error
	})
	if err != nil {
		return 0, 0, err
	}
	if before != after {
		e.log.Warn("spots_reserved counter drift repaired",
			zap.Uint("event_id", eventID), zap.Int("before", before), zap.Int("after", after))
	}
	return before, after, nil
}

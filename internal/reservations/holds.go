package reservations

import (
	"github.com/schooldesk/reservations-api/internal/models"
	"gorm.io/gorm"
)

// Every acquisition path has a matching release path; these two helpers
// are that symmetry, shared by cancellation, demotion, deletion and the
// admin status guard.

// releaseAllocation reverses whatever a CONFIRMED registration holds:
// the seat-count for capacity-based events, the table for table-based
// ones. Non-confirmed registrations hold nothing.
func releaseAllocation(tx *gorm.DB, event *models.Event, reg *models.Registration) error {
	if reg.Status != models.RegistrationConfirmed {
		return nil
	}
	switch event.Type {
	case models.EventCapacityBased:
		return releaseSpots(tx, event.ID, reg.SpotsCount)
	case models.EventTableBased:
		return releaseTable(tx, reg.ID)
	}
	return nil
}

// acquireForPromotion re-runs the admission decision for a registration
// being promoted to CONFIRMED, using the authoritative aggregate and
// excluding the registration's own prior contribution. Insufficient
// room is a validation failure here, not a waitlist routing: the admin
// asked for a specific outcome and must be told it cannot hold.
func acquireForPromotion(tx *gorm.DB, event *models.Event, reg *models.Registration) (*models.Table, error) {
	switch event.Type {
	case models.EventCapacityBased:
		confirmed, err := confirmedSpots(tx, event.ID, reg.ID)
		if err != nil {
			return nil, err
		}
		if event.Capacity-confirmed < reg.SpotsCount {
			return nil, newError(KindValidation,
				"insufficient capacity: %d of %d spots confirmed, %d requested",
				confirmed, event.Capacity, reg.SpotsCount)
		}
		return nil, reserveSpots(tx, event.ID, reg.SpotsCount)
	case models.EventTableBased:
		table, err := smallestFit(tx, event.ID, reg.GuestsCount)
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, newError(KindValidation, "no available table fits a party of %d", reg.GuestsCount)
		}
		if err := claimTable(tx, table, reg.ID); err != nil {
			return nil, err
		}
		return table, nil
	}
	return nil, newError(KindValidation, "event has unknown type %q", event.Type)
}

package reservations

import (
	"context"
	"fmt"

	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionResult reports what an administrative status change produced.
type TransitionResult struct {
	Registration  models.Registration
	AssignedTable *models.Table
}

// Transition applies an administrative status change under the same
// invariants as the public paths:
//
//	any -> CONFIRMED   re-validate capacity excluding the registration's
//	                   own prior contribution, then acquire
//	CONFIRMED -> WAITLIST  release, re-queue at the back (max priority + 1)
//	any -> CANCELLED   release, record ADMIN as the canceller
//	CANCELLED -> *     rejected, cancellation is terminal
func (e *Engine) Transition(ctx context.Context, regID uint, to models.RegistrationStatus, reason string, actor Actor) (*TransitionResult, error) {
	switch to {
	case models.RegistrationConfirmed, models.RegistrationWaitlist, models.RegistrationCancelled:
	default:
		return nil, newError(KindValidation, "cannot transition a registration to %q", to)
	}

	var result TransitionResult
	var eventID uint
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		result = TransitionResult{}
		reg, event, err := registrationForActor(tx, regID, actor)
		if err != nil {
			return err
		}
		eventID = event.ID

		if err := (mutation{op: "registration.transition", eventID: event.ID}).validate(); err != nil {
			return err
		}

		if reg.Status == models.RegistrationCancelled {
			return newError(KindValidation, "registration is cancelled; cancellation is terminal")
		}
		if reg.Status == to {
			result.Registration = *reg
			return nil
		}

		from := reg.Status
		switch to {
		case models.RegistrationConfirmed:
			table, err := acquireForPromotion(tx, event, reg)
			if err != nil {
				return err
			}
			reg.Status = models.RegistrationConfirmed
			reg.WaitlistPriority = 0
			result.AssignedTable = table

		case models.RegistrationWaitlist:
			if err := releaseAllocation(tx, event, reg); err != nil {
				return err
			}
			priority, err := nextDemotionPriority(tx, event.ID)
			if err != nil {
				return err
			}
			reg.Status = models.RegistrationWaitlist
			reg.WaitlistPriority = priority

		case models.RegistrationCancelled:
			if err := cancelRegistration(tx, event, reg, models.CancelledByAdmin, reason); err != nil {
				return err
			}
			result.Registration = *reg
			return nil
		}

		if err := tx.Save(reg).Error; err != nil {
			return fmt.Errorf("save transition: %w", err)
		}
		if err := recordAudit(tx, reg, from, to, fmt.Sprintf("admin:%d", actor.AdminID), reason); err != nil {
			return err
		}
		result.Registration = *reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == models.RegistrationConfirmed {
		e.checkOverbooking(ctx, eventID)
	}

	e.log.Info("registration transitioned",
		zap.Uint("registration_id", regID),
		zap.String("to", string(to)),
		zap.Uint("admin_id", actor.AdminID),
	)
	return &result, nil
}

// Delete removes a registration outright. This is the only hard-delete
// path in the engine; held resources are released first, in the same
// transaction.
func (e *Engine) Delete(ctx context.Context, regID uint, actor Actor) error {
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		reg, event, err := registrationForActor(tx, regID, actor)
		if err != nil {
			return err
		}

		if err := (mutation{op: opDelete, eventID: event.ID, hardDelete: true}).validate(); err != nil {
			return err
		}

		if err := releaseAllocation(tx, event, reg); err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.Registration{}, reg.ID).Error; err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		return recordAudit(tx, reg, reg.Status, "", fmt.Sprintf("admin:%d", actor.AdminID), "deleted")
	})
	if err != nil {
		return err
	}

	e.log.Info("registration deleted",
		zap.Uint("registration_id", regID),
		zap.Uint("admin_id", actor.AdminID),
	)
	return nil
}

// registrationForActor loads a registration with its event and enforces
// tenant scope. Cross-tenant ids report NotFound, same as missing ones.
func registrationForActor(tx *gorm.DB, regID uint, actor Actor) (*models.Registration, *models.Event, error) {
	var reg models.Registration
	if err := tx.First(&reg, regID).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil, newError(KindNotFound, "registration not found")
		}
		return nil, nil, fmt.Errorf("load registration: %w", err)
	}

	var event models.Event
	if err := tx.First(&event, reg.EventID).Error; err != nil {
		return nil, nil, fmt.Errorf("load event: %w", err)
	}
	if event.SchoolID != actor.SchoolID {
		return nil, nil, newError(KindNotFound, "registration not found")
	}
	return &reg, &event, nil
}

func recordAudit(tx *gorm.DB, reg *models.Registration, from, to models.RegistrationStatus, actor, reason string) error {
	audit := models.RegistrationAudit{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		FromStatus:     from,
		ToStatus:       to,
		Actor:          actor,
		Reason:         reason,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

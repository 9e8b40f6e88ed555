package reservations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderResult is handed to the payment collaborator: the PROCESSING
// registration plus the idempotent order id the gateway must echo back.
type OrderResult struct {
	Registration models.Registration
	OrderID      string
}

// CreateOrder pre-creates a PROCESSING registration for an event that
// requires upfront payment. No capacity or table is held yet; the hold
// happens when the gateway confirms and the guard promotes the row.
func (e *Engine) CreateOrder(ctx context.Context, eventID uint, count int, contact ContactInfo) (*OrderResult, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, newError(KindValidation, "party size must be at least 1")
	}
	if err := (mutation{op: "order.create", eventID: eventID}).validate(); err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	var reg models.Registration
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if isRecordNotFound(err) {
				return newError(KindNotFound, "event not found")
			}
			return fmt.Errorf("load event: %w", err)
		}
		if event.Status != models.EventOpen {
			return newError(KindValidation, "event is not open for registration")
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
			Status:            models.RegistrationProcessing,
			ConfirmationCode:  code,
			GuestName:         contact.Name,
			PhoneNumber:       contact.PhoneNumber,
			CancellationToken: token,
			OrderID:           &orderID,
		}
		if event.Type == models.EventTableBased {
			reg.GuestsCount = count
		} else {
			reg.SpotsCount = count
		}
		return createRegistration(tx, &reg)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("payment order created",
		zap.Uint("event_id", eventID),
		zap.Uint("registration_id", reg.ID),
		zap.String("order_id", orderID),
	)
	return &OrderResult{Registration: reg, OrderID: orderID}, nil
}

// CompleteOrder consumes the gateway's success/failure signal for an
// order. Retried callbacks are idempotent: a registration that already
// left PROCESSING returns its recorded outcome with no side effects.
// A successful payment that can no longer be seated routes to WAITLIST,
// the same non-failure routing as the public allocators.
func (e *Engine) CompleteOrder(ctx context.Context, orderID string, success bool) (*models.Registration, error) {
	if orderID == "" {
		return nil, newError(KindValidation, "order id is required")
	}

	var reg models.Registration
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).First(&reg).Error; err != nil {
			if isRecordNotFound(err) {
				return newError(KindNotFound, "order not found")
			}
			return fmt.Errorf("find order: %w", err)
		}
		if reg.Status != models.RegistrationProcessing {
			// Retried callback; outcome already recorded.
			return nil
		}

		var event models.Event
		if err := tx.First(&event, reg.EventID).Error; err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		if err := (mutation{op: "order.complete", eventID: event.ID}).validate(); err != nil {
			return err
		}

		if !success {
			return cancelRegistration(tx, &event, &reg, models.CancelledByAdmin, "payment failed")
		}

		from := reg.Status
		seated, err := trySeat(tx, &event, &reg)
		if err != nil {
			return err
		}
		if seated {
			reg.Status = models.RegistrationConfirmed
		} else {
			priority, err := nextArrivalPriority(tx, event.ID)
			if err != nil {
				return err
			}
			reg.Status = models.RegistrationWaitlist
			reg.WaitlistPriority = priority
		}
		if err := tx.Save(&reg).Error; err != nil {
			return fmt.Errorf("save order completion: %w", err)
		}
		return recordAudit(tx, &reg, from, reg.Status, "payment", orderID)
	})
	if err != nil {
		return nil, err
	}

	if success {
		e.checkOverbooking(ctx, reg.EventID)
	}

	e.log.Info("payment order completed",
		zap.String("order_id", orderID),
		zap.Bool("success", success),
		zap.String("status", string(reg.Status)),
	)
	return &reg, nil
}

// trySeat attempts the admission decision for a paid order, reusing the
// allocators' aggregates. Returns false when the registration must wait.
func trySeat(tx *gorm.DB, event *models.Event, reg *models.Registration) (bool, error) {
	switch event.Type {
	case models.EventCapacityBased:
		confirmed, err := confirmedSpots(tx, event.ID, reg.ID)
		if err != nil {
			return false, err
		}
		if event.Capacity-confirmed < reg.SpotsCount {
			return false, nil
		}
		return true, reserveSpots(tx, event.ID, reg.SpotsCount)
	case models.EventTableBased:
		table, err := smallestFit(tx, event.ID, reg.GuestsCount)
		if err != nil {
			return false, err
		}
		if table == nil {
			return false, nil
		}
		return true, claimTable(tx, table, reg.ID)
	}
	return false, newError(KindValidation, "event has unknown type %q", event.Type)
}

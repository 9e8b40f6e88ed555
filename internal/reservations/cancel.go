package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fixed user-facing messages for the cancellation path. "Not found" and
// "already cancelled" are deliberately the same message so a link cannot
// be used to probe whether someone else cancelled.
const (
	msgInvalidCredential = "Invalid or expired cancellation link"
	msgNotFound          = "Registration not found or already cancelled"
)

// CancelWithCredential processes a self-service cancellation. The checks
// run in a fixed order, each with its own failure kind: credential,
// registration lookup, deadline policy, then required reason. The effect
// transaction releases exactly what the allocation acquired.
func (e *Engine) CancelWithCredential(ctx context.Context, token, reason string) error {
	claims, err := e.issuer.Parse(token)
	if err != nil {
		e.log.Warn("cancellation rejected: bad credential", zap.Error(err))
		return newError(KindInvalidCredential, msgInvalidCredential)
	}

	if err := (mutation{op: "registration.cancel", eventID: claims.EventID}).validate(); err != nil {
		return err
	}

	err = e.inTx(ctx, func(tx *gorm.DB) error {
		var reg models.Registration
		err := tx.Where("event_id = ? AND phone_number = ? AND status IN ?",
			claims.EventID, claims.PhoneNumber,
			[]models.RegistrationStatus{models.RegistrationConfirmed, models.RegistrationWaitlist}).
			Order("id DESC").
			First(&reg).Error
		if err != nil {
			if isRecordNotFound(err) {
				return newError(KindNotFound, msgNotFound)
			}
			return fmt.Errorf("find registration: %w", err)
		}

		var event models.Event
		if err := tx.First(&event, claims.EventID).Error; err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		if !event.AllowCancellation || withinDeadline(event, time.Now()) {
			return newError(KindDeadlineExceeded,
				"Cancellation is no longer possible within %d hours of the event start",
				event.CancellationDeadlineHours)
		}

		reason = strings.TrimSpace(reason)
		if event.RequireCancellationReason && reason == "" {
			return newError(KindValidation, "a cancellation reason is required for this event")
		}

		return cancelRegistration(tx, &event, &reg, models.CancelledByCustomer, reason)
	})
	if err != nil {
		if kind, ok := KindOf(err); ok && kind != KindConflict {
			e.log.Warn("cancellation rejected",
				zap.Uint("event_id", claims.EventID), zap.Error(err))
		}
		return err
	}

	e.log.Info("registration cancelled by customer", zap.Uint("event_id", claims.EventID))
	return nil
}

// withinDeadline reports whether now is already inside the no-cancellation
// window before the event start.
func withinDeadline(event models.Event, now time.Time) bool {
	deadline := time.Duration(event.CancellationDeadlineHours) * time.Hour
	return event.StartsAt.Sub(now) < deadline
}

// cancelRegistration flips the row to CANCELLED and releases its hold, in
// the caller's transaction. Cancellation is one-way: the row is kept for
// audit and never transitions out of CANCELLED again.
func cancelRegistration(tx *gorm.DB, event *models.Event, reg *models.Registration, by models.CancelledBy, reason string) error {
	if err := releaseAllocation(tx, event, reg); err != nil {
		return err
	}

	from := reg.Status
	now := time.Now()
	reg.Status = models.RegistrationCancelled
	reg.CancelledAt = &now
	reg.CancelledBy = by
	reg.CancellationReason = reason
	if err := tx.Save(reg).Error; err != nil {
		return fmt.Errorf("save cancellation: %w", err)
	}

	return recordAudit(tx, reg, from, models.RegistrationCancelled, string(by), reason)
}

// MintCancellationToken re-issues a cancellation credential for an active
// registration, identified by the phone number used at registration time.
func (e *Engine) MintCancellationToken(ctx context.Context, eventID uint, phoneNumber string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return "", newError(KindValidation, "phone number is required")
	}

	var n int64
	err := e.db.WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ? AND phone_number = ? AND status IN ?",
			eventID, phoneNumber,
			[]models.RegistrationStatus{models.RegistrationConfirmed, models.RegistrationWaitlist}).
		Count(&n).Error
	if err != nil {
		return "", fmt.Errorf("find registration: %w", err)
	}
	if n == 0 {
		return "", newError(KindNotFound, msgNotFound)
	}

	return e.issuer.Mint(eventID, phoneNumber)
}

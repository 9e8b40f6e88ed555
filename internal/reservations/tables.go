package reservations

import (
	"context"
	"fmt"

	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterTable admits a party against a table-based event using a
// smallest-fit search: the smallest AVAILABLE table whose minimum order
// and capacity both accommodate the party. Larger tables are kept free
// for larger future parties. No fit means WAITLIST, not failure.
func (e *Engine) RegisterTable(ctx context.Context, eventID uint, guestsCount int, contact ContactInfo) (*AllocationResult, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if guestsCount < 1 {
		return nil, newError(KindValidation, "guests count must be at least 1")
	}
	if err := (mutation{op: "registration.create", eventID: eventID}).validate(); err != nil {
		return nil, err
	}

	var reg models.Registration
	var assigned *models.Table
	err := e.inTx(ctx, func(tx *gorm.DB) error {
		assigned = nil
		if _, err := openEvent(tx, eventID, models.EventTableBased); err != nil {
			return err
		}

		table, err := smallestFit(tx, eventID, guestsCount)
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
			GuestsCount:       guestsCount,
			ConfirmationCode:  code,
			GuestName:         contact.Name,
			PhoneNumber:       contact.PhoneNumber,
			CancellationToken: token,
		}

		if table == nil {
			reg.Status = models.RegistrationWaitlist
			priority, err := nextArrivalPriority(tx, eventID)
			if err != nil {
				return err
			}
			reg.WaitlistPriority = priority
			return createRegistration(tx, &reg)
		}

		// Tables reference registrations, so the registration row
		// must exist before the table can point at it.
		reg.Status = models.RegistrationConfirmed
		if err := createRegistration(tx, &reg); err != nil {
			return err
		}
		if err := claimTable(tx, table, reg.ID); err != nil {
			return err
		}
		assigned = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("table registration allocated",
		zap.Uint("event_id", eventID),
		zap.Uint("registration_id", reg.ID),
		zap.String("status", string(reg.Status)),
		zap.Int("guests", guestsCount),
	)
	return &AllocationResult{Registration: reg, AssignedTable: assigned}, nil
}

func createRegistration(tx *gorm.DB, reg *models.Registration) error {
	if err := tx.Create(reg).Error; err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// smallestFit returns the smallest AVAILABLE table satisfying
// minOrder <= guests <= capacity, or nil when none fits. The secondary
// sort by id makes the choice deterministic between equal-capacity tables.
func smallestFit(tx *gorm.DB, eventID uint, guests int) (*models.Table, error) {
	var table models.Table
	err := tx.Where("event_id = ? AND status = ? AND capacity >= ? AND min_order <= ?",
		eventID, models.TableAvailable, guests, guests).
		Order("capacity ASC, id ASC").
		First(&table).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("search tables: %w", err)
	}
	return &table, nil
}

// claimTable flips the chosen table to RESERVED, guarded on it still
// being AVAILABLE. If a concurrent transaction won the table, this
// reports a conflict so the whole allocation retries and re-runs the
// search with one fewer candidate.
func claimTable(tx *gorm.DB, table *models.Table, regID uint) error {
	res := tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", table.ID, models.TableAvailable).
		Updates(map[string]interface{}{
			"status":         models.TableReserved,
			"reserved_by_id": regID,
		})
	if res.Error != nil {
		return fmt.Errorf("reserve table: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindConflict, "table %d was taken concurrently", table.ID)
	}
	table.Status = models.TableReserved
	table.ReservedByID = &regID
	return nil
}

// releaseTable frees whatever table the registration holds, clearing both
// the status and the back-reference atomically. A registration that holds
// no table is a no-op.
func releaseTable(tx *gorm.DB, regID uint) error {
	err := tx.Model(&models.Table{}).
		Where("reserved_by_id = ? AND status = ?", regID, models.TableReserved).
		Updates(map[string]interface{}{
			"status":         models.TableAvailable,
			"reserved_by_id": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("release table: %w", err)
	}
	return nil
}

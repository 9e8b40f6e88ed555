// Package reservations is the reservation and capacity allocation engine.
// It decides, under concurrent demand, whether a registration becomes
// CONFIRMED or WAITLIST, assigns tables for table-based events, and
// reverses those effects symmetrically on cancellation or status change.
//
// All correctness comes from the store's serializable transactions; the
// engine holds no cross-request state and may run in multiple processes
// at once.
package reservations

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/schooldesk/reservations-api/internal/credentials"
	"github.com/schooldesk/reservations-api/internal/notifier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const txAttempts = 3

// ContactInfo is the public registrant's contact details. PhoneNumber is
// mandatory on every allocation path.
type ContactInfo struct {
	Name        string
	PhoneNumber string
}

// Actor is the already-authenticated admin performing an administrative
// mutation. The engine only checks tenant scope; authentication belongs
// to the auth layer.
type Actor struct {
	AdminID  uint
	SchoolID uint
	Role     string
}

type Engine struct {
	db        *gorm.DB
	log       *zap.Logger
	notifier  notifier.Notifier
	issuer    *credentials.Issuer
	txTimeout time.Duration
}

func New(db *gorm.DB, log *zap.Logger, n notifier.Notifier, issuer *credentials.Issuer, txTimeout time.Duration) *Engine {
	if txTimeout <= 0 {
		txTimeout = 10 * time.Second
	}
	return &Engine{db: db, log: log, notifier: n, issuer: issuer, txTimeout: txTimeout}
}

// inTx runs fn in a serializable transaction with a bounded timeout,
// retrying a bounded number of times on serialization conflicts. A
// transaction that keeps conflicting surfaces as KindConflict so the
// caller can retry, rather than as a silent inconsistency.
func (e *Engine) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.txTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = e.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !isSerializationConflict(err) {
			return err
		}
	}
	return wrapError(KindConflict, err, "operation conflicted with concurrent requests, please retry")
}

// isSerializationConflict recognizes transient isolation failures across
// the drivers we run on: SQLite busy/locked errors and the PostgreSQL
// serialization failure class (SQLSTATE 40001).
func isSerializationConflict(err error) bool {
	if err == nil {
		return false
	}
	if kind, ok := KindOf(err); ok && kind == KindConflict {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLSTATE 40001")
}

func validateContact(contact ContactInfo) error {
	if strings.TrimSpace(contact.PhoneNumber) == "" {
		return newError(KindValidation, "phone number is required")
	}
	return nil
}

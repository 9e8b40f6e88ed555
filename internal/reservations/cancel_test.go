package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/schooldesk/reservations-api/internal/models"
)

func TestCancel_ReleasesSpotsSymmetrically(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 5)

	baseline := reloadEvent(t, db, event.ID).SpotsReserved

	result, err := engine.RegisterSpots(context.Background(), event.ID, 3, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != baseline+3 {
		t.Fatalf("expected spots_reserved=%d after confirm, got %d", baseline+3, got)
	}

	err = engine.CancelWithCredential(context.Background(), result.Registration.CancellationToken, "")
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}

	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != baseline {
		t.Errorf("expected spots_reserved back at baseline %d, got %d", baseline, got)
	}

	var reg models.Registration
	db.First(&reg, result.Registration.ID)
	if reg.Status != models.RegistrationCancelled {
		t.Errorf("expected CANCELLED, got %s", reg.Status)
	}
	if reg.CancelledBy != models.CancelledByCustomer {
		t.Errorf("expected cancelled_by CUSTOMER, got %s", reg.CancelledBy)
	}
	if reg.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}
}

func TestCancel_ReleasesTableSymmetrically(t *testing.T) {
	engine, db := newTestEngine(t)
	event, tables := createTableEvent(t, db, []int{4}, []int{0})

	result, err := engine.RegisterTable(context.Background(), event.ID, 2, contact("pair"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	err = engine.CancelWithCredential(context.Background(), result.Registration.CancellationToken, "")
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}

	got := reloadTable(t, db, tables[0].ID)
	if got.Status != models.TableAvailable {
		t.Errorf("expected table AVAILABLE after cancellation, got %s", got.Status)
	}
	if got.ReservedByID != nil {
		t.Error("expected reserved_by_id cleared")
	}
}

func TestCancel_AlreadyCancelledIsNotFound(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 5)

	result, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	token := result.Registration.CancellationToken

	if err := engine.CancelWithCredential(context.Background(), token, ""); err != nil {
		t.Fatalf("first cancellation failed: %v", err)
	}
	counterAfterFirst := reloadEvent(t, db, event.ID).SpotsReserved

	err = engine.CancelWithCredential(context.Background(), token, "")
	wantKind(t, err, KindNotFound)

	// The second attempt must have no side effects.
	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != counterAfterFirst {
		t.Errorf("second cancellation changed spots_reserved from %d to %d", counterAfterFirst, got)
	}
}

func TestCancel_InvalidToken(t *testing.T) {
	engine, db := newTestEngine(t)
	createCapacityEvent(t, db, 5)

	err := engine.CancelWithCredential(context.Background(), "not-a-token", "")
	wantKind(t, err, KindInvalidCredential)
}

func TestCancel_DeadlineEnforced(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 5)

	result, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	// Event now starts in one hour; the 2-hour deadline has passed.
	db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("starts_at", time.Now().Add(1*time.Hour))

	err = engine.CancelWithCredential(context.Background(), result.Registration.CancellationToken, "")
	wantKind(t, err, KindDeadlineExceeded)

	// 48 hours out the same cancellation succeeds.
	db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("starts_at", time.Now().Add(48*time.Hour))

	if err := engine.CancelWithCredential(context.Background(), result.Registration.CancellationToken, ""); err != nil {
		t.Fatalf("cancellation at 48 hours out failed: %v", err)
	}
}

func TestCancel_CancellationDisabled(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 5)
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("allow_cancellation", false)

	result, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	err = engine.CancelWithCredential(context.Background(), result.Registration.CancellationToken, "")
	wantKind(t, err, KindDeadlineExceeded)
}

func TestCancel_ReasonRequired(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 5)
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("require_cancellation_reason", true)

	result, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	token := result.Registration.CancellationToken

	err = engine.CancelWithCredential(context.Background(), token, "   ")
	wantKind(t, err, KindValidation)

	if err := engine.CancelWithCredential(context.Background(), token, "family conflict"); err != nil {
		t.Fatalf("cancellation with reason failed: %v", err)
	}

	var reg models.Registration
	db.First(&reg, result.Registration.ID)
	if reg.CancellationReason != "family conflict" {
		t.Errorf("expected reason recorded, got %q", reg.CancellationReason)
	}
}

func TestCancel_WaitlistedRegistrationHoldsNothing(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 1)

	if _, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("first")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	waitlisted, err := engine.RegisterSpots(context.Background(), event.ID, 1, ContactInfo{Name: "second", PhoneNumber: "+1-555-0199"})
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
	if waitlisted.Registration.Status != models.RegistrationWaitlist {
		t.Fatalf("expected WAITLIST, got %s", waitlisted.Registration.Status)
	}

	counterBefore := reloadEvent(t, db, event.ID).SpotsReserved
	if err := engine.CancelWithCredential(context.Background(), waitlisted.Registration.CancellationToken, ""); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != counterBefore {
		t.Errorf("cancelling a waitlisted registration changed spots_reserved from %d to %d", counterBefore, got)
	}
}

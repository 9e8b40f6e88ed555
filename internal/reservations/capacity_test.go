package reservations

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/schooldesk/reservations-api/internal/models"
)

func TestRegisterSpots_ConfirmThenWaitlist(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 3)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		result, err := engine.RegisterSpots(ctx, event.ID, 1, contact(fmt.Sprintf("guest-%d", i)))
		if err != nil {
			t.Fatalf("registration %d failed: %v", i, err)
		}
		if result.Registration.ConfirmationCode == "" {
			t.Errorf("registration %d has no confirmation code", i)
		}
		if result.Registration.CancellationToken == "" {
			t.Errorf("registration %d has no cancellation token", i)
		}
	}

	if n := countByStatus(t, db, event.ID, models.RegistrationConfirmed); n != 3 {
		t.Errorf("expected 3 confirmed, got %d", n)
	}
	if n := countByStatus(t, db, event.ID, models.RegistrationWaitlist); n != 2 {
		t.Errorf("expected 2 waitlisted, got %d", n)
	}
	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != 3 {
		t.Errorf("expected spots_reserved=3, got %d", got)
	}

	// Waitlist priorities are FIFO by arrival.
	var waitlisted []models.Registration
	db.Where("event_id = ? AND status = ?", event.ID, models.RegistrationWaitlist).
		Order("waitlist_priority ASC").Find(&waitlisted)
	for i, reg := range waitlisted {
		if reg.WaitlistPriority != i+1 {
			t.Errorf("waitlist entry %d has priority %d", i, reg.WaitlistPriority)
		}
	}
}

func TestRegisterSpots_Concurrent(t *testing.T) {
	db := newTestDB(t, "file:capacity_concurrent?mode=memory&cache=shared")
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection so concurrent transactions genuinely serialize.
	sqlDB.SetMaxOpenConns(1)

	engine := newEngineOn(db)
	event := createCapacityEvent(t, db, 3)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.RegisterSpots(context.Background(), event.ID, 1, contact(fmt.Sprintf("guest-%d", i)))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent registration %d failed: %v", i, err)
		}
	}

	if n := countByStatus(t, db, event.ID, models.RegistrationConfirmed); n != 3 {
		t.Errorf("expected exactly 3 confirmed under contention, got %d", n)
	}
	if n := countByStatus(t, db, event.ID, models.RegistrationWaitlist); n != 2 {
		t.Errorf("expected 2 waitlisted under contention, got %d", n)
	}

	var confirmedSpotsTotal int64
	db.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", event.ID, models.RegistrationConfirmed).
		Select("COALESCE(SUM(spots_count), 0)").Scan(&confirmedSpotsTotal)
	if int(confirmedSpotsTotal) > event.Capacity {
		t.Errorf("capacity invariant violated: %d confirmed spots for capacity %d", confirmedSpotsTotal, event.Capacity)
	}
}

func TestRegisterSpots_MissingPhone(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 3)

	_, err := engine.RegisterSpots(context.Background(), event.ID, 1, ContactInfo{Name: "no-phone", PhoneNumber: "  "})
	wantKind(t, err, KindValidation)

	var total int64
	db.Model(&models.Registration{}).Count(&total)
	if total != 0 {
		t.Errorf("rejected registration must write nothing, found %d rows", total)
	}
}

func TestRegisterSpots_AggregateBeatsCachedCounter(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 3)

	// Drift the display counter far past capacity; admission must ignore it.
	db.Model(&models.Event{}).Where("id = ?", event.ID).UpdateColumn("spots_reserved", 999)

	result, err := engine.RegisterSpots(context.Background(), event.ID, 2, contact("guest"))
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if result.Registration.Status != models.RegistrationConfirmed {
		t.Errorf("expected CONFIRMED despite drifted counter, got %s", result.Registration.Status)
	}
}

func TestRegisterSpots_PartyLargerThanRemaining(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 3)

	if _, err := engine.RegisterSpots(context.Background(), event.ID, 2, contact("first")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	result, err := engine.RegisterSpots(context.Background(), event.ID, 2, contact("second"))
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
	if result.Registration.Status != models.RegistrationWaitlist {
		t.Errorf("expected WAITLIST when party exceeds remaining capacity, got %s", result.Registration.Status)
	}
	if result.Registration.WaitlistPriority != 1 {
		t.Errorf("expected waitlist priority 1, got %d", result.Registration.WaitlistPriority)
	}
}

func TestRegisterSpots_ClosedEvent(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 3)
	db.Model(&models.Event{}).Where("id = ?", event.ID).Update("status", models.EventClosed)

	_, err := engine.RegisterSpots(context.Background(), event.ID, 1, contact("late"))
	wantKind(t, err, KindValidation)
}

func TestReconcile_RepairsDrift(t *testing.T) {
	engine, db := newTestEngine(t)
	event := createCapacityEvent(t, db, 10)

	if _, err := engine.RegisterSpots(context.Background(), event.ID, 4, contact("guest")); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	db.Model(&models.Event{}).Where("id = ?", event.ID).UpdateColumn("spots_reserved", 7)

	before, after, err := engine.Reconcile(context.Background(), event.ID, testActor())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if before != 7 || after != 4 {
		t.Errorf("expected 7 -> 4, got %d -> %d", before, after)
	}
	if got := reloadEvent(t, db, event.ID).SpotsReserved; got != 4 {
		t.Errorf("expected spots_reserved=4 after reconcile, got %d", got)
	}
}

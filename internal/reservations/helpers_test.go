package reservations

import (
	"testing"
	"time"

	"github.com/schooldesk/reservations-api/internal/credentials"
	"github.com/schooldesk/reservations-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSchoolID = 1

func testActor() Actor {
	return Actor{AdminID: 1, SchoolID: testSchoolID, Role: "admin"}
}

func newTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Event{},
		&models.Table{},
		&models.Registration{},
		&models.RegistrationAudit{},
	)
	if err != nil {
		t.Fatalf("failed to auto migrate: %v", err)
	}
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t, ":memory:")
	return newEngineOn(db), db
}

func newEngineOn(db *gorm.DB) *Engine {
	issuer := credentials.NewIssuer("test-secret", time.Hour)
	return New(db, zap.NewNop(), nil, issuer, 10*time.Second)
}

func createCapacityEvent(t *testing.T, db *gorm.DB, capacity int) *models.Event {
	t.Helper()
	event := models.Event{
		SchoolID:                  testSchoolID,
		Name:                      "Spring Gala",
		Type:                      models.EventCapacityBased,
		Capacity:                  capacity,
		StartsAt:                  time.Now().Add(14 * 24 * time.Hour),
		Status:                    models.EventOpen,
		AllowCancellation:         true,
		CancellationDeadlineHours: 2,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return &event
}

func createTableEvent(t *testing.T, db *gorm.DB, capacities, minOrders []int) (*models.Event, []models.Table) {
	t.Helper()
	event := models.Event{
		SchoolID:                  testSchoolID,
		Name:                      "Parents Dinner",
		Type:                      models.EventTableBased,
		StartsAt:                  time.Now().Add(14 * 24 * time.Hour),
		Status:                    models.EventOpen,
		AllowCancellation:         true,
		CancellationDeadlineHours: 2,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	tables := make([]models.Table, 0, len(capacities))
	for i := range capacities {
		table := models.Table{
			EventID:  event.ID,
			Capacity: capacities[i],
			MinOrder: minOrders[i],
			Status:   models.TableAvailable,
		}
		if err := db.Create(&table).Error; err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		tables = append(tables, table)
	}
	return &event, tables
}

func contact(name string) ContactInfo {
	return ContactInfo{Name: name, PhoneNumber: "+1-555-0100"}
}

func countByStatus(t *testing.T, db *gorm.DB, eventID uint, status models.RegistrationStatus) int64 {
	t.Helper()
	var n int64
	err := db.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&n).Error
	if err != nil {
		t.Fatalf("failed to count registrations: %v", err)
	}
	return n
}

func reloadEvent(t *testing.T, db *gorm.DB, id uint) *models.Event {
	t.Helper()
	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	return &event
}

func reloadTable(t *testing.T, db *gorm.DB, id uint) *models.Table {
	t.Helper()
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		t.Fatalf("failed to reload table: %v", err)
	}
	return &table
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected an engine error, got %v", err)
	}
	if got != kind {
		t.Fatalf("expected kind %d, got %d (%v)", kind, got, err)
	}
}

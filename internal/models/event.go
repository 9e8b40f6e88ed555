package models

import (
	"time"

	"gorm.io/gorm"
)

type EventType string

const (
	EventCapacityBased EventType = "CAPACITY_BASED"
	EventTableBased    EventType = "TABLE_BASED"
)

type EventStatus string

const (
	EventOpen   EventStatus = "OPEN"
	EventPaused EventStatus = "PAUSED"
	EventClosed EventStatus = "CLOSED"
)

type Event struct {
	gorm.Model
	SchoolID uint      `json:"school_id" gorm:"index;not null"`
	Name     string    `json:"name"`
	Type     EventType `json:"type"`
	StartsAt time.Time `json:"starts_at"`

	// Capacity and SpotsReserved are meaningful for CAPACITY_BASED events
	// only. SpotsReserved is a display hint; every admission decision
	// re-aggregates confirmed spots inside its own transaction.
	Capacity      int `json:"capacity"`
	SpotsReserved int `json:"spots_reserved"`

	Status EventStatus `json:"status" gorm:"default:OPEN"`

	AllowCancellation         bool `json:"allow_cancellation"`
	CancellationDeadlineHours int  `json:"cancellation_deadline_hours"`
	RequireCancellationReason bool `json:"require_cancellation_reason"`
}

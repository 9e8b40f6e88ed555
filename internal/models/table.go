package models

import (
	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableReserved  TableStatus = "RESERVED"
)

// Table is a physical table at a TABLE_BASED event. A table is RESERVED
// iff ReservedByID points at a non-cancelled registration; both fields are
// always written together in the same transaction as the registration.
type Table struct {
	gorm.Model
	EventID  uint        `json:"event_id" gorm:"index;not null"`
	Capacity int         `json:"capacity"`
	MinOrder int         `json:"min_order"`
	Status   TableStatus `json:"status" gorm:"default:AVAILABLE"`

	ReservedByID *uint `json:"reserved_by_id"`
}

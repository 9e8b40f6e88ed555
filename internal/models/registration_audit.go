package models

import (
	"gorm.io/gorm"
)

// RegistrationAudit is an append-only snapshot written alongside every
// status transition. Cancellations are never hard-deleted, so together
// these two tables preserve the full history of a registration.
type RegistrationAudit struct {
	gorm.Model
	RegistrationID uint               `json:"registration_id" gorm:"index"`
	EventID        uint               `json:"event_id" gorm:"index"`
	FromStatus     RegistrationStatus `json:"from_status"`
	ToStatus       RegistrationStatus `json:"to_status"`
	Actor          string             `json:"actor"`
	Reason         string             `json:"reason"`
}

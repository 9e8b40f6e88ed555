package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey authenticates service integrations, e.g. the payment gateway
// callback. Keys belong to an admin and inherit its school scope.
type APIKey struct {
	gorm.Model
	AdminID    uint       `json:"admin_id"`
	Admin      Admin      `json:"admin"`
	Key        string     `json:"key" gorm:"uniqueIndex"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

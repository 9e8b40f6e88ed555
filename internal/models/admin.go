package models

import (
	"gorm.io/gorm"
)

// Admin is a school staff account. Accounts are provisioned out of band;
// OAuth login only matches an existing row by email.
type Admin struct {
	gorm.Model
	SchoolID uint   `json:"school_id" gorm:"index;not null"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	RegistrationConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationWaitlist   RegistrationStatus = "WAITLIST"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
	RegistrationProcessing RegistrationStatus = "PROCESSING"
)

type CancelledBy string

const (
	CancelledByAdmin    CancelledBy = "ADMIN"
	CancelledByCustomer CancelledBy = "CUSTOMER"
)

type Registration struct {
	gorm.Model
	EventID uint               `json:"event_id" gorm:"index:idx_event_code,unique;index;not null"`
	Event   Event              `json:"-" gorm:"foreignKey:EventID"`
	Status  RegistrationStatus `json:"status" gorm:"index"`

	// SpotsCount is used by capacity-based events, GuestsCount by
	// table-based events. The other one stays zero.
	SpotsCount  int `json:"spots_count"`
	GuestsCount int `json:"guests_count"`

	// WaitlistPriority orders the waitlist, smaller = earlier.
	WaitlistPriority int `json:"waitlist_priority"`

	ConfirmationCode string `json:"confirmation_code" gorm:"index:idx_event_code,unique"`
	GuestName        string `json:"guest_name"`
	PhoneNumber      string `json:"phone_number" gorm:"index"`

	CancellationToken string `json:"-"`

	// OrderID is the idempotency key for payment callbacks. Set only on
	// registrations created through the payment path.
	OrderID *string `json:"order_id,omitempty" gorm:"uniqueIndex"`

	CancelledAt        *time.Time  `json:"cancelled_at"`
	CancelledBy        CancelledBy `json:"cancelled_by"`
	CancellationReason string      `json:"cancellation_reason"`
}

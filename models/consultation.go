package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Booking state machine: CANCELLED is terminal.
const (
	ConsultationStatusOpen      = "OPEN"
	ConsultationStatusConfirmed = "CONFIRMED"
	ConsultationStatusCancelled = "CANCELLED"
)

const (
	PreferredContactEmail = "EMAIL"
	PreferredContactPhone = "PHONE"
)

type Consultation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName   string `gorm:"not null" json:"firstName"`
	LastName    string `gorm:"not null" json:"lastName"`
	Email       string `gorm:"not null" json:"email"`
	PhoneNumber string `gorm:"index;not null" json:"phoneNumber"`

	PreferredContact string `gorm:"type:varchar(10)" json:"preferredContact"`

	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Message string    `json:"message"`

	Status string `gorm:"type:varchar(10);not null;default:'OPEN'" json:"status"`

	UserID uint `gorm:"index;not null" json:"userId"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Summary renders the booking details included in SMS notifications.
func (c *Consultation) Summary() string {
	return fmt.Sprintf("%s %s on %s at %s (%s)",
		c.FirstName, c.LastName, c.Date.Format("2006-01-02"), c.Time, c.PhoneNumber)
}

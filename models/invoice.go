package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment state machine: UNPAID is the only non-terminal state.
const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusFailed = "FAILED"
)

type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Correlation token echoed back by the payment processor inside its
	// order object. Immutable once assigned.
	OrderReference string `gorm:"uniqueIndex;not null" json:"orderReference"`

	FirstName   string `gorm:"not null" json:"firstName"`
	LastName    string `gorm:"not null" json:"lastName"`
	ClientEmail string `json:"clientEmail"`
	PhoneNumber string `json:"phoneNumber"`

	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode int    `json:"zipcode"`

	Date       time.Time `json:"date"`
	TotalPrice float64   `gorm:"type:decimal(10,2)" json:"totalPrice"`

	Status string `gorm:"type:varchar(10);not null;default:'UNPAID'" json:"status"`
	Sent   bool   `gorm:"default:false" json:"sent"` // invoice document already delivered

	UserID *uint `gorm:"index" json:"userId,omitempty"` // nullable, guest invoices allowed

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	InvoiceID uint    `gorm:"index;not null" json:"-"`
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category  string  `json:"category"`
}

func (i *Invoice) ClientName() string {
	return i.FirstName + " " + i.LastName
}

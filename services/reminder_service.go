// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"maidgroup-backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService re-sends payment links for invoices that have sat UNPAID
// past the configured age. It recovers deliveries lost to the accepted
// partial state where an invoice persisted but its link never reached the
// client.
type ReminderService struct {
	db        *gorm.DB
	invoices  *InvoiceService
	afterDays int
}

func NewReminderService(db *gorm.DB, invoices *InvoiceService, afterDays int) *ReminderService {
	return &ReminderService{db: db, invoices: invoices, afterDays: afterDays}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.ResendUnpaidLinks)

	c.Start()
	log.Println("Invoice reminder scheduler started")
}

func (s *ReminderService) ResendUnpaidLinks() {
	log.Println("Starting unpaid invoice reminder processing...")

	invoices, err := s.UnpaidOlderThan(s.afterDays)
	if err != nil {
		log.Printf("Failed to fetch unpaid invoices: %v", err)
		return
	}

	for i := range invoices {
		invoice := &invoices[i]
		if invoice.ClientEmail == "" {
			continue
		}
		if _, err := s.invoices.resendPaymentLink(context.Background(), invoice); err != nil {
			if errors.Is(err, ErrInvoiceAlreadyPaid) {
				continue
			}
			log.Printf("Failed to resend payment link for invoice %d: %v", invoice.ID, err)
			continue
		}
		log.Printf("Payment link re-sent for invoice %d (%s)", invoice.ID, invoice.OrderReference)
	}

	log.Println("Unpaid invoice reminder processing completed")
}

func (s *ReminderService) UnpaidOlderThan(days int) ([]models.Invoice, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	var invoices []models.Invoice
	err := s.db.Preload("Items").
		Where("status = ? AND created_at < ?", models.PaymentStatusUnpaid, cutoff).
		Find(&invoices).Error
	return invoices, err
}

package services

import (
	"context"
	"testing"
	"time"

	"maidgroup-backend/models"
)

func TestReminderService(t *testing.T) {
	setup := func(t *testing.T) (*ReminderService, *InvoiceService, *fakeMailer) {
		svc, db, _, mailer, _ := newTestInvoiceService(t)
		return NewReminderService(db, svc, 3), svc, mailer
	}

	age := func(t *testing.T, svc *InvoiceService, invoice *models.Invoice, days int) {
		t.Helper()
		createdAt := time.Now().AddDate(0, 0, -days)
		if err := svc.db.Model(&models.Invoice{}).
			Where("id = ?", invoice.ID).
			Update("created_at", createdAt).Error; err != nil {
			t.Fatalf("failed to age invoice: %v", err)
		}
	}

	t.Run("selects only stale unpaid invoices", func(t *testing.T) {
		reminders, svc, _ := setup(t)

		stale := validInvoice()
		if _, err := svc.Create(context.Background(), stale, "key-1"); err != nil {
			t.Fatal(err)
		}
		age(t, svc, stale, 5)

		fresh := validInvoice()
		if _, err := svc.Create(context.Background(), fresh, "key-2"); err != nil {
			t.Fatal(err)
		}

		paid := validInvoice()
		if _, err := svc.Create(context.Background(), paid, "key-3"); err != nil {
			t.Fatal(err)
		}
		age(t, svc, paid, 5)
		if err := svc.CompletePayment(context.Background(), paid, "COMPLETED"); err != nil {
			t.Fatal(err)
		}

		invoices, err := reminders.UnpaidOlderThan(3)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(invoices) != 1 || invoices[0].ID != stale.ID {
			t.Fatalf("expected only the stale unpaid invoice, got %d results", len(invoices))
		}
	})

	t.Run("resends links for stale invoices", func(t *testing.T) {
		reminders, svc, mailer := setup(t)

		stale := validInvoice()
		if _, err := svc.Create(context.Background(), stale, "key-1"); err != nil {
			t.Fatal(err)
		}
		age(t, svc, stale, 5)
		mailer.sent = nil

		reminders.ResendUnpaidLinks()

		if len(mailer.sent) != 1 {
			t.Fatalf("expected 1 reminder email, got %d", len(mailer.sent))
		}
		if mailer.sent[0].To != "ada@example.com" {
			t.Fatalf("unexpected recipient %s", mailer.sent[0].To)
		}
	})

	t.Run("skips invoices without an email address", func(t *testing.T) {
		reminders, svc, mailer := setup(t)

		stale := validInvoice()
		if _, err := svc.Create(context.Background(), stale, "key-1"); err != nil {
			t.Fatal(err)
		}
		age(t, svc, stale, 5)
		svc.db.Model(&models.Invoice{}).Where("id = ?", stale.ID).Update("client_email", "")
		mailer.sent = nil

		reminders.ResendUnpaidLinks()

		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email, got %d", len(mailer.sent))
		}
	})
}

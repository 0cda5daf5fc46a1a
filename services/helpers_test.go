package services

import (
	"context"
	"testing"
	"time"

	"maidgroup-backend/models"
	"maidgroup-backend/payments"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Invoice{}, &models.InvoiceItem{}, &models.Consultation{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) SendEmail(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type sentSMS struct {
	To   string
	Body string
}

type fakeSMS struct {
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return nil
}

type fakeGateway struct {
	keys        []string          // idempotency keys seen by GeneratePaymentLink
	linkErr     error
	orders      map[string]string // processor order id -> caller-supplied reference
	retrieveErr error
}

func (f *fakeGateway) GeneratePaymentLink(ctx context.Context, idempotencyKey string, order payments.Order) (string, error) {
	f.keys = append(f.keys, idempotencyKey)
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return "https://pay.example.com/" + order.ReferenceID, nil
}

func (f *fakeGateway) BatchRetrieveOrders(ctx context.Context, orderIDs []string) ([]payments.RetrievedOrder, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	var out []payments.RetrievedOrder
	for _, id := range orderIDs {
		if ref, ok := f.orders[id]; ok {
			out = append(out, payments.RetrievedOrder{ID: id, ReferenceID: ref})
		}
	}
	return out, nil
}

func newTestInvoiceService(t *testing.T) (*InvoiceService, *gorm.DB, *fakeGateway, *fakeMailer, *fakeSMS) {
	t.Helper()
	db := newTestDB(t)
	gateway := &fakeGateway{orders: map[string]string{}}
	mailer := &fakeMailer{}
	sms := &fakeSMS{}
	return NewInvoiceService(db, gateway, mailer, sms, "LOC1"), db, gateway, mailer, sms
}

func adminUser() *models.User {
	return &models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
}

func regularUser(id uint) *models.User {
	return &models.User{ID: id, Email: "user@example.com", Role: models.RoleUser}
}

func validInvoice() *models.Invoice {
	return &models.Invoice{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		ClientEmail: "ada@example.com",
		PhoneNumber: "+12025550123",
		Street:      "12 Main St",
		City:        "Bethesda",
		State:       "MD",
		Zipcode:     20810,
		Date:        time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Name: "Deep clean", Price: 120.50, Category: "cleaning"},
			{Name: "Window wash", Price: 45, Category: "cleaning"},
		},
	}
}

func validConsultation() *models.Consultation {
	return &models.Consultation{
		FirstName:        "Grace",
		LastName:         "Hopper",
		Email:            "grace@example.com",
		PhoneNumber:      "+12025550147",
		PreferredContact: models.PreferredContactPhone,
		Date:             time.Date(2023, 12, 4, 0, 0, 0, 0, time.UTC),
		Time:             "10:30",
		Message:          "Two bedroom apartment",
	}
}

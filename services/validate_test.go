package services

import (
	"errors"
	"testing"
	"time"

	"maidgroup-backend/models"
)

func TestValidateInvoice(t *testing.T) {
	t.Run("accepts a complete invoice", func(t *testing.T) {
		if err := ValidateInvoice(validInvoice()); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	t.Run("phone is optional", func(t *testing.T) {
		invoice := validInvoice()
		invoice.PhoneNumber = ""
		if err := ValidateInvoice(invoice); err != nil {
			t.Fatalf("expected valid without phone, got %v", err)
		}
	})

	cases := []struct {
		name    string
		mutate  func(*models.Invoice)
		field   string
		message string
	}{
		{"missing first name", func(i *models.Invoice) { i.FirstName = "" }, "firstName", "Client first name is required"},
		{"missing last name", func(i *models.Invoice) { i.LastName = "" }, "lastName", "Client last name is required"},
		{"missing street", func(i *models.Invoice) { i.Street = "" }, "street", "Address is required"},
		{"missing city", func(i *models.Invoice) { i.City = "" }, "city", "City is required"},
		{"missing state", func(i *models.Invoice) { i.State = "" }, "state", "State is required"},
		{"missing zipcode", func(i *models.Invoice) { i.Zipcode = 0 }, "zipcode", "Zipcode is required"},
		{"missing date", func(i *models.Invoice) { i.Date = time.Time{} }, "date", "Date is required"},
		{"no items", func(i *models.Invoice) { i.Items = nil }, "items", "Service/Product is required"},
		{"missing email", func(i *models.Invoice) { i.ClientEmail = "" }, "clientEmail", "Email is invalid"},
		{"malformed email", func(i *models.Invoice) { i.ClientEmail = "ada.example.com" }, "clientEmail", "Email is invalid"},
		{"malformed phone", func(i *models.Invoice) { i.PhoneNumber = "12345" }, "phoneNumber", "Phone number is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoice := validInvoice()
			tc.mutate(invoice)
			assertValidation(t, ValidateInvoice(invoice), tc.field, tc.message)
		})
	}

	t.Run("required fields outrank email syntax", func(t *testing.T) {
		invoice := validInvoice()
		invoice.FirstName = ""
		invoice.ClientEmail = "broken"
		assertValidation(t, ValidateInvoice(invoice), "firstName", "Client first name is required")
	})

	t.Run("email syntax outranks phone", func(t *testing.T) {
		invoice := validInvoice()
		invoice.ClientEmail = "broken"
		invoice.PhoneNumber = "12345"
		assertValidation(t, ValidateInvoice(invoice), "clientEmail", "Email is invalid")
	})
}

func TestValidateConsultation(t *testing.T) {
	t.Run("accepts a complete consultation", func(t *testing.T) {
		if err := ValidateConsultation(validConsultation()); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	cases := []struct {
		name    string
		mutate  func(*models.Consultation)
		field   string
		message string
	}{
		{"missing first name", func(c *models.Consultation) { c.FirstName = "" }, "firstName", "First name cannot be empty"},
		{"missing last name", func(c *models.Consultation) { c.LastName = "" }, "lastName", "Last name cannot be empty"},
		{"missing email", func(c *models.Consultation) { c.Email = "" }, "email", "Invalid email address"},
		{"malformed email", func(c *models.Consultation) { c.Email = "grace@" }, "email", "Invalid email address"},
		{"missing phone", func(c *models.Consultation) { c.PhoneNumber = "" }, "phoneNumber", "Must enter a phone number"},
		{"malformed phone", func(c *models.Consultation) { c.PhoneNumber = "867-53" }, "phoneNumber", "Invalid phone number"},
		{"missing preferred contact", func(c *models.Consultation) { c.PreferredContact = "" }, "preferredContact", "Must select a preferred contact method"},
		{"missing date", func(c *models.Consultation) { c.Date = time.Time{} }, "date", "Must select a date for your consultation"},
		{"missing time", func(c *models.Consultation) { c.Time = "" }, "time", "Must select a time for your consultation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consultation := validConsultation()
			tc.mutate(consultation)
			assertValidation(t, ValidateConsultation(consultation), tc.field, tc.message)
		})
	}

	t.Run("phone presence outranks phone validity", func(t *testing.T) {
		consultation := validConsultation()
		consultation.PhoneNumber = ""
		consultation.PreferredContact = ""
		assertValidation(t, ValidateConsultation(consultation), "phoneNumber", "Must enter a phone number")
	})
}

func assertValidation(t *testing.T, err error, field, message string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != field || ve.Message != message {
		t.Fatalf("expected %s/%q, got %s/%q", field, message, ve.Field, ve.Message)
	}
}

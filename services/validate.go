package services

import (
	"maidgroup-backend/models"
	"maidgroup-backend/utils"
)

// ValidateInvoice checks a candidate invoice in fixed rule order: required
// text fields first, then email syntax, then phone. Phone is optional for
// invoices (contact-by-email path) but must parse as a US number when set.
func ValidateInvoice(invoice *models.Invoice) error {
	if invoice.FirstName == "" {
		return invalid("firstName", "Client first name is required")
	}
	if invoice.LastName == "" {
		return invalid("lastName", "Client last name is required")
	}
	if invoice.Street == "" {
		return invalid("street", "Address is required")
	}
	if invoice.City == "" {
		return invalid("city", "City is required")
	}
	if invoice.State == "" {
		return invalid("state", "State is required")
	}
	if invoice.Zipcode == 0 {
		return invalid("zipcode", "Zipcode is required")
	}
	if invoice.Date.IsZero() {
		return invalid("date", "Date is required")
	}
	if len(invoice.Items) == 0 {
		return invalid("items", "Service/Product is required")
	}
	if invoice.ClientEmail == "" || !utils.ValidEmail(invoice.ClientEmail) {
		return invalid("clientEmail", "Email is invalid")
	}
	if invoice.PhoneNumber != "" && !utils.ValidPhoneNumber(invoice.PhoneNumber) {
		return invalid("phoneNumber", "Phone number is invalid")
	}
	return nil
}

// ValidateConsultation mirrors ValidateInvoice's precedence, with phone
// mandatory and the consultation-only fields checked last.
func ValidateConsultation(consultation *models.Consultation) error {
	if consultation.FirstName == "" {
		return invalid("firstName", "First name cannot be empty")
	}
	if consultation.LastName == "" {
		return invalid("lastName", "Last name cannot be empty")
	}
	if consultation.Email == "" || !utils.ValidEmail(consultation.Email) {
		return invalid("email", "Invalid email address")
	}
	if consultation.PhoneNumber == "" {
		return invalid("phoneNumber", "Must enter a phone number")
	}
	if !utils.ValidPhoneNumber(consultation.PhoneNumber) {
		return invalid("phoneNumber", "Invalid phone number")
	}
	if consultation.PreferredContact == "" {
		return invalid("preferredContact", "Must select a preferred contact method")
	}
	if consultation.Date.IsZero() {
		return invalid("date", "Must select a date for your consultation")
	}
	if consultation.Time == "" {
		return invalid("time", "Must select a time for your consultation")
	}
	return nil
}

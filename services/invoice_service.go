// services/invoice_service.go
package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"maidgroup-backend/models"
	"maidgroup-backend/payments"
	"maidgroup-backend/utils"

	"gorm.io/gorm"
)

type InvoiceService struct {
	db         *gorm.DB
	gateway    PaymentGateway
	mailer     EmailSender
	sms        SMSSender
	locationID string
}

func NewInvoiceService(db *gorm.DB, gateway PaymentGateway, mailer EmailSender, sms SMSSender, locationID string) *InvoiceService {
	return &InvoiceService{
		db:         db,
		gateway:    gateway,
		mailer:     mailer,
		sms:        sms,
		locationID: locationID,
	}
}

func (s *InvoiceService) buildOrder(invoice *models.Invoice) payments.Order {
	items := make([]payments.OrderLineItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, payments.OrderLineItem{
			Name:        item.Name,
			Quantity:    "1",
			AmountCents: payments.Cents(item.Price),
		})
	}
	return payments.Order{
		LocationID:  s.locationID,
		ReferenceID: invoice.OrderReference,
		LineItems:   items,
	}
}

// Create validates the invoice, assigns its order reference, persists it
// UNPAID, and requests a payment link keyed by the caller's idempotency key.
// Persistence and link generation are not transactional with each other: if
// the link call fails the invoice remains UNPAID with no delivered link, and
// SendPaymentLink recovers.
func (s *InvoiceService) Create(ctx context.Context, invoice *models.Invoice, idempotencyKey string) (string, error) {
	if err := ValidateInvoice(invoice); err != nil {
		return "", err
	}

	invoice.OrderReference = utils.NewOrderReference()
	invoice.Status = models.PaymentStatusUnpaid
	invoice.Sent = false

	if invoice.TotalPrice == 0 {
		for _, item := range invoice.Items {
			invoice.TotalPrice += item.Price
		}
	}

	if err := s.db.Create(invoice).Error; err != nil {
		return "", err
	}

	link, err := s.gateway.GeneratePaymentLink(ctx, idempotencyKey, s.buildOrder(invoice))
	if err != nil {
		return "", err
	}

	if invoice.ClientEmail != "" {
		if err := s.mailer.SendEmail(invoice.ClientEmail, "Your Invoice Payment Link", "Here is your payment link: "+link); err != nil {
			log.Printf("[invoice] payment link email to %s failed: %v", invoice.ClientEmail, err)
		}
	}

	return link, nil
}

// CompletePayment advances the payment state machine from an external status
// string. Only the recognized terminal statuses act; anything else is ignored.
// Safe to invoke twice with the same terminal status: the status write is
// conditional on UNPAID and the sent flag is claimed with a checked-and-set
// inside the same transaction, so a duplicate delivery cannot regress state
// or re-send the document. Terminal states are never re-entered: a COMPLETED
// event on a FAILED invoice changes nothing and dispatches nothing.
func (s *InvoiceService) CompletePayment(ctx context.Context, invoice *models.Invoice, externalStatus string) error {
	switch externalStatus {
	case "COMPLETED":
		transitioned := false
		claimed := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Invoice{}).
				Where("id = ? AND status = ?", invoice.ID, models.PaymentStatusUnpaid).
				Update("status", models.PaymentStatusPaid)
			if res.Error != nil {
				return res.Error
			}
			transitioned = res.RowsAffected == 1

			// the claim also requires PAID, so a COMPLETED event landing on
			// a FAILED invoice stays a full no-op
			res = tx.Model(&models.Invoice{}).
				Where("id = ? AND sent = ? AND status = ?", invoice.ID, false, models.PaymentStatusPaid).
				Update("sent", true)
			if res.Error != nil {
				return res.Error
			}
			claimed = res.RowsAffected == 1
			return nil
		})
		if err != nil {
			return err
		}

		if transitioned {
			invoice.Status = models.PaymentStatusPaid
		}
		if !claimed {
			// document already dispatched, or the invoice is in another
			// terminal state
			return nil
		}
		invoice.Sent = true
		s.dispatchDocument(invoice)
		return nil

	case "FAILED":
		err := s.db.WithContext(ctx).Model(&models.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, models.PaymentStatusUnpaid).
			Update("status", models.PaymentStatusFailed).Error
		if err != nil {
			return err
		}
		if invoice.Status == models.PaymentStatusUnpaid {
			invoice.Status = models.PaymentStatusFailed
		}
		return nil

	default:
		// the pipeline only acts on recognized terminal statuses
		return nil
	}
}

func (s *InvoiceService) dispatchDocument(invoice *models.Invoice) {
	body := "Thank you for your payment. Here is your invoice: " + invoice.OrderReference
	if invoice.ClientEmail != "" {
		if err := s.mailer.SendEmail(invoice.ClientEmail, "Your Invoice", body); err != nil {
			log.Printf("[invoice] invoice email to %s failed: %v", invoice.ClientEmail, err)
		}
		return
	}
	if invoice.PhoneNumber != "" {
		if err := s.sms.SendSMS(invoice.PhoneNumber, body); err != nil {
			log.Printf("[invoice] invoice SMS to %s failed: %v", invoice.PhoneNumber, err)
		}
	}
}

// InvoiceUpdate carries partial-update fields; nil fields leave the stored
// value untouched.
type InvoiceUpdate struct {
	FirstName   *string
	LastName    *string
	ClientEmail *string
	PhoneNumber *string
	Street      *string
	City        *string
	State       *string
	Zipcode     *int
	Date        *time.Time
	TotalPrice  *float64
	Status      *string
	UserID      *uint
	Items       *[]models.InvoiceItem
}

// touchesLockedFields reports whether the payload writes any of the fields
// frozen once an invoice is PAID. Status, user and items deliberately stay
// writable on paid invoices; see DESIGN.md.
func (u *InvoiceUpdate) touchesLockedFields() bool {
	return u.FirstName != nil || u.LastName != nil || u.ClientEmail != nil ||
		u.PhoneNumber != nil || u.Street != nil || u.City != nil ||
		u.State != nil || u.Zipcode != nil || u.Date != nil || u.TotalPrice != nil
}

// Update is admin-only. Fields present in the payload are revalidated
// individually; absent fields keep their stored values.
func (s *InvoiceService) Update(requester *models.User, invoiceID uint, input InvoiceUpdate) (*models.Invoice, error) {
	if err := RequireAdmin(requester); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&invoice, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}

		if invoice.Status == models.PaymentStatusPaid && input.touchesLockedFields() {
			return ErrCannotUpdatePaid
		}

		if input.FirstName != nil {
			invoice.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			invoice.LastName = *input.LastName
		}
		if input.ClientEmail != nil {
			if !utils.ValidEmail(*input.ClientEmail) {
				return invalid("clientEmail", "Email is invalid. Please provide a working email.")
			}
			invoice.ClientEmail = *input.ClientEmail
		}
		if input.PhoneNumber != nil {
			if !utils.ValidPhoneNumber(*input.PhoneNumber) {
				return invalid("phoneNumber", "Phone number is invalid. Please provide a working phone number.")
			}
			invoice.PhoneNumber = *input.PhoneNumber
		}
		if input.Street != nil {
			invoice.Street = *input.Street
		}
		if input.City != nil {
			invoice.City = *input.City
		}
		if input.State != nil {
			invoice.State = *input.State
		}
		if input.Zipcode != nil {
			invoice.Zipcode = *input.Zipcode
		}
		if input.Date != nil {
			invoice.Date = *input.Date
		}
		if input.TotalPrice != nil {
			invoice.TotalPrice = *input.TotalPrice
		}
		if input.Status != nil {
			invoice.Status = *input.Status
		}
		if input.UserID != nil {
			invoice.UserID = input.UserID
		}
		if input.Items != nil {
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			newItems := make([]models.InvoiceItem, 0, len(*input.Items))
			for _, item := range *input.Items {
				item.ID = 0
				item.InvoiceID = invoice.ID
				newItems = append(newItems, item)
			}
			invoice.Items = newItems
		}

		return tx.Save(&invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Delete is admin-only; a missing invoice reports NotFound before the role
// check denies.
func (s *InvoiceService) Delete(requester *models.User, invoiceID uint) error {
	var invoice models.Invoice
	if err := s.db.First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	return s.deleteInvoice(requester, &invoice)
}

func (s *InvoiceService) DeleteByOrderReference(requester *models.User, orderReference string) error {
	var invoice models.Invoice
	if err := s.db.Where("order_reference = ?", orderReference).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	return s.deleteInvoice(requester, &invoice)
}

func (s *InvoiceService) deleteInvoice(requester *models.User, invoice *models.Invoice) error {
	if err := RequireAdmin(requester); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(invoice).Error
	})
}

type InvoiceFilter struct {
	Date           *time.Time
	Status         string
	OrderRefSuffix string
	Sort           string
}

// GetInvoices lists invoices scoped to the requester (admins see all).
// Filters are conjunctive; unrecognized sort keys are ignored; an empty
// result after filtering reports NotFound.
func (s *InvoiceService) GetInvoices(requester *models.User, filter InvoiceFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := ScopeToOwner(s.db.Preload("Items"), requester).Find(&invoices).Error; err != nil {
		return nil, err
	}

	filtered := invoices[:0]
	for _, invoice := range invoices {
		if filter.Date != nil && !utils.SameDay(invoice.Date, *filter.Date) {
			continue
		}
		if filter.Status != "" && invoice.Status != filter.Status {
			continue
		}
		if filter.OrderRefSuffix != "" && !strings.HasSuffix(invoice.OrderReference, filter.OrderRefSuffix) {
			continue
		}
		filtered = append(filtered, invoice)
	}

	if len(filtered) == 0 {
		return nil, ErrInvoiceNotFound
	}

	switch filter.Sort {
	case "recent":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.After(filtered[j].Date) })
	case "oldest":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })
	case "nameAsc":
		sort.Slice(filtered, func(i, j int) bool { return lessByName(&filtered[i], &filtered[j]) })
	case "nameDesc":
		sort.Slice(filtered, func(i, j int) bool { return lessByName(&filtered[j], &filtered[i]) })
	case "statusAsc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Status < filtered[j].Status })
	case "statusDesc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Status > filtered[j].Status })
	default:
		// unknown sort keys are a no-op
	}

	return filtered, nil
}

func lessByName(a, b *models.Invoice) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	return a.FirstName < b.FirstName
}

// GetInvoiceByID fails closed: admin or owner only.
func (s *InvoiceService) GetInvoiceByID(requester *models.User, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Preload("Items").First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if err := Authorize(requester, invoice.UserID); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *InvoiceService) GetInvoiceByOrderReference(requester *models.User, orderReference string) (*models.Invoice, error) {
	invoice, err := s.findByOrderReference(orderReference)
	if err != nil {
		return nil, err
	}
	if err := Authorize(requester, invoice.UserID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) findByOrderReference(orderReference string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Preload("Items").Where("order_reference = ?", orderReference).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// SendPaymentLink regenerates and re-delivers the payment link for an UNPAID
// invoice. Admin-only recovery path for the create's accepted partial state.
func (s *InvoiceService) SendPaymentLink(ctx context.Context, requester *models.User, invoiceID uint) (string, error) {
	if err := RequireAdmin(requester); err != nil {
		return "", err
	}
	var invoice models.Invoice
	if err := s.db.Preload("Items").First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvoiceNotFound
		}
		return "", err
	}
	return s.resendPaymentLink(ctx, &invoice)
}

func (s *InvoiceService) resendPaymentLink(ctx context.Context, invoice *models.Invoice) (string, error) {
	if invoice.Status == models.PaymentStatusPaid {
		return "", ErrInvoiceAlreadyPaid
	}

	// fresh key per attempt; the order reference never changes
	link, err := s.gateway.GeneratePaymentLink(ctx, utils.NewIdempotencyKey(), s.buildOrder(invoice))
	if err != nil {
		return "", err
	}

	if invoice.ClientEmail != "" {
		if err := s.mailer.SendEmail(invoice.ClientEmail, "Your Invoice Payment Link", "Here is your payment link: "+link); err != nil {
			log.Printf("[invoice] payment link email to %s failed: %v", invoice.ClientEmail, err)
		}
	}
	return link, nil
}

// SendInvoiceDocument re-delivers the invoice document for a PAID invoice to
// an arbitrary address. Admin-only.
func (s *InvoiceService) SendInvoiceDocument(requester *models.User, orderReference, email string) error {
	if err := RequireAdmin(requester); err != nil {
		return err
	}
	invoice, err := s.findByOrderReference(orderReference)
	if err != nil {
		return err
	}
	if invoice.Status != models.PaymentStatusPaid {
		return ErrInvoiceNotPaid
	}
	return s.mailer.SendEmail(email, "Your Invoice", "Here is your invoice: "+invoice.OrderReference)
}

// HandleWebhook runs the verified reconciliation pipeline: decode, correlate
// the processor's order id back to the local order reference, and dispatch
// payment.updated events into CompletePayment. Unrecognized shapes and
// unknown references are dropped without error so the sender does not retry
// events this system does not model.
func (s *InvoiceService) HandleWebhook(ctx context.Context, payload []byte) error {
	event := payments.ParseWebhookEvent(payload)
	if !event.Recognized {
		log.Printf("[webhook] unrecognized payload shape, ignoring")
		return nil
	}

	orders, err := s.gateway.BatchRetrieveOrders(ctx, []string{event.OrderID})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		log.Printf("[webhook] no processor order found for id %s, ignoring", event.OrderID)
		return nil
	}
	orderReference := orders[0].ReferenceID

	if event.Type != payments.EventTypePaymentUpdated {
		return nil
	}

	invoice, err := s.findByOrderReference(orderReference)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			log.Printf("[webhook] no invoice for order reference %s, dropping event", orderReference)
			return nil
		}
		return err
	}

	return s.CompletePayment(ctx, invoice, event.PaymentStatus)
}

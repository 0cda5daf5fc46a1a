// controllers/invoice.go
package controllers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"maidgroup-backend/models"
	"maidgroup-backend/payments"
	"maidgroup-backend/services"
	"maidgroup-backend/utils"

	"github.com/gin-gonic/gin"
)

// InvoiceItemInput defines the structure for an invoice line item
type InvoiceItemInput struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Category string  `json:"category"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	ClientEmail string             `json:"clientEmail"`
	PhoneNumber string             `json:"phoneNumber"`
	Street      string             `json:"street"`
	City        string             `json:"city"`
	State       string             `json:"state"`
	Zipcode     int                `json:"zipcode"`
	Date        *time.Time         `json:"date"`
	TotalPrice  float64            `json:"totalPrice"`
	Items       []InvoiceItemInput `json:"items"`
	UserID      *uint              `json:"userId"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	FirstName   *string             `json:"firstName"`
	LastName    *string             `json:"lastName"`
	ClientEmail *string             `json:"clientEmail"`
	PhoneNumber *string             `json:"phoneNumber"`
	Street      *string             `json:"street"`
	City        *string             `json:"city"`
	State       *string             `json:"state"`
	Zipcode     *int                `json:"zipcode"`
	Date        *time.Time          `json:"date"`
	TotalPrice  *float64            `json:"totalPrice"`
	Status      *string             `json:"status" binding:"omitempty,oneof=UNPAID PAID FAILED"`
	UserID      *uint               `json:"userId"`
	Items       *[]InvoiceItemInput `json:"items"`
}

type InvoiceController struct {
	svc      *services.InvoiceService
	verifier *payments.SignatureVerifier
}

func NewInvoiceController(svc *services.InvoiceService, verifier *payments.SignatureVerifier) *InvoiceController {
	return &InvoiceController{svc: svc, verifier: verifier}
}

func toModelItems(inputs []InvoiceItemInput) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for _, item := range inputs {
		items = append(items, models.InvoiceItem{
			Name:     item.Name,
			Price:    item.Price,
			Category: item.Category,
		})
	}
	return items
}

// Create creates a new invoice and returns its payment link
func (ctl *InvoiceController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice := models.Invoice{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		ClientEmail: input.ClientEmail,
		PhoneNumber: input.PhoneNumber,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		Zipcode:     input.Zipcode,
		TotalPrice:  input.TotalPrice,
		Items:       toModelItems(input.Items),
	}
	if input.Date != nil {
		invoice.Date = *input.Date
	}

	// Admins may assign an owner (or none, for guest invoices); everyone
	// else owns what they create.
	if user.IsAdmin() {
		invoice.UserID = input.UserID
	} else {
		id := user.ID
		invoice.UserID = &id
	}

	link, err := ctl.svc.Create(c.Request.Context(), &invoice, utils.NewIdempotencyKey())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "The unique link for this payment has been sent!",
		"paymentLink": link,
		"invoice":     invoice,
	})
}

// HandleWebhook verifies and processes inbound payment processor events
func (ctl *InvoiceController) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}

	// signature check happens before any parsing
	signature := c.GetHeader("X-Square-Signature")
	if err := ctl.verifier.Verify(body, signature); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid signature")
		return
	}

	if err := ctl.svc.HandleWebhook(c.Request.Context(), body); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	// empty success whether or not the event was actionable
	c.Status(http.StatusOK)
}

// GetInvoices lists invoices visible to the requester with optional filters
func (ctl *InvoiceController) GetInvoices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := services.InvoiceFilter{
		Status:         c.Query("status"),
		Sort:           c.Query("sort"),
		OrderRefSuffix: c.Query("orderRefSuffix"),
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	invoices, err := ctl.svc.GetInvoices(user, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (ctl *InvoiceController) GetInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ctl.svc.GetInvoiceByID(user, uint(invoiceID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (ctl *InvoiceController) GetInvoiceByOrderReference(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invoice, err := ctl.svc.GetInvoiceByOrderReference(user, c.Param("orderReference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Update applies a partial update to an invoice (admin only)
func (ctl *InvoiceController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	update := services.InvoiceUpdate{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		ClientEmail: input.ClientEmail,
		PhoneNumber: input.PhoneNumber,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		Zipcode:     input.Zipcode,
		Date:        input.Date,
		TotalPrice:  input.TotalPrice,
		Status:      input.Status,
		UserID:      input.UserID,
	}
	if input.Items != nil {
		items := toModelItems(*input.Items)
		update.Items = &items
	}

	invoice, err := ctl.svc.Update(user, uint(invoiceID), update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (ctl *InvoiceController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	if err := ctl.svc.Delete(user, uint(invoiceID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "This invoice has been deleted."})
}

func (ctl *InvoiceController) DeleteByOrderReference(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderReference := c.Param("orderReference")
	if err := ctl.svc.DeleteByOrderReference(user, orderReference); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "The invoice with order reference " + orderReference + " has been deleted."})
}

// SendPaymentLink re-sends the payment link for an unpaid invoice (admin only)
func (ctl *InvoiceController) SendPaymentLink(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	link, err := ctl.svc.SendPaymentLink(c.Request.Context(), user, uint(invoiceID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"paymentLink": link})
}

// SendInvoiceDocument re-delivers a paid invoice document (admin only)
func (ctl *InvoiceController) SendInvoiceDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := ctl.svc.SendInvoiceDocument(user, c.Param("orderReference"), input.Email); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "The invoice has been sent."})
}

// controllers/consultation.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"maidgroup-backend/models"
	"maidgroup-backend/services"
	"maidgroup-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateConsultationInput defines the expected JSON structure for booking a consultation
type CreateConsultationInput struct {
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	PhoneNumber      string     `json:"phoneNumber"`
	PreferredContact string     `json:"preferredContact" binding:"omitempty,oneof=EMAIL PHONE"`
	Date             *time.Time `json:"date"`
	Time             string     `json:"time"`
	Message          string     `json:"message"`
}

// UpdateConsultationInput defines the expected JSON structure for updating a consultation
type UpdateConsultationInput struct {
	FirstName        *string    `json:"firstName"`
	LastName         *string    `json:"lastName"`
	Email            *string    `json:"email"`
	PhoneNumber      *string    `json:"phoneNumber"`
	PreferredContact *string    `json:"preferredContact" binding:"omitempty,oneof=EMAIL PHONE"`
	Date             *time.Time `json:"date"`
	Time             *string    `json:"time"`
	Message          *string    `json:"message"`
	Status           *string    `json:"status" binding:"omitempty,oneof=OPEN CONFIRMED CANCELLED"`
}

type ConsultationController struct {
	svc *services.ConsultationService
}

func NewConsultationController(svc *services.ConsultationService) *ConsultationController {
	return &ConsultationController{svc: svc}
}

// Create books a new consultation for the requester
func (ctl *ConsultationController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	consultation := models.Consultation{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		PreferredContact: input.PreferredContact,
		Time:             input.Time,
		Message:          input.Message,
	}
	if input.Date != nil {
		consultation.Date = *input.Date
	}

	if err := ctl.svc.Create(user, &consultation); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, consultation)
}

// GetConsultations lists consultations visible to the requester with optional filters
func (ctl *ConsultationController) GetConsultations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := services.ConsultationFilter{
		Status:           c.Query("status"),
		PreferredContact: c.Query("preferredContact"),
		Name:             c.Query("name"),
		Email:            c.Query("email"),
		Sort:             c.Query("sort"),
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	consultations, err := ctl.svc.GetConsultations(user, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultations)
}

func (ctl *ConsultationController) GetConsultation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	consultationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	consultation, err := ctl.svc.GetConsultationByID(user, uint(consultationID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

func (ctl *ConsultationController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	consultationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	var input UpdateConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	consultation, err := ctl.svc.Update(user, uint(consultationID), services.ConsultationUpdate{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		PreferredContact: input.PreferredContact,
		Date:             input.Date,
		Time:             input.Time,
		Message:          input.Message,
		Status:           input.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, consultation)
}

func (ctl *ConsultationController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	consultationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	if err := ctl.svc.Delete(user, uint(consultationID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "This consultation has been deleted."})
}

// HandleInboundSMS processes text replies relayed by the SMS provider.
// Unlike the payment webhook, an unmatched number and a malformed command
// are surfaced as distinct failures.
func (ctl *ConsultationController) HandleInboundSMS(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")

	if from == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing sender")
		return
	}

	if err := ctl.svc.CancelByInboundMessage(from, body); err != nil {
		respondServiceError(c, err)
		return
	}

	c.String(http.StatusOK, "Your consultation has been cancelled.")
}

package controllers

import (
	"errors"
	"net/http"

	"maidgroup-backend/config"
	"maidgroup-backend/models"
	"maidgroup-backend/services"
	"maidgroup-backend/utils"

	"github.com/gin-gonic/gin"
)

// currentUser resolves the acting principal set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found in context")
		return nil, false
	}

	var user models.User
	if err := config.DB.First(&user, userID.(uint)).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	return &user, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses in
// one place so every handler surfaces failures consistently.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrConsultationNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConsultationExists):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvoiceAlreadyPaid),
		errors.Is(err, services.ErrCannotUpdatePaid),
		errors.Is(err, services.ErrInvoiceNotPaid),
		errors.Is(err, services.ErrConsultationCancelled),
		errors.Is(err, services.ErrInvalidSMSMessage):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

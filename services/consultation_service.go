// services/consultation_service.go
package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"maidgroup-backend/models"
	"maidgroup-backend/utils"

	"gorm.io/gorm"
)

type ConsultationService struct {
	db         *gorm.DB
	sms        SMSSender
	adminPhone string
}

func NewConsultationService(db *gorm.DB, sms SMSSender, adminPhone string) *ConsultationService {
	return &ConsultationService{db: db, sms: sms, adminPhone: adminPhone}
}

// Create validates the request, guards against duplicate ids, opens the
// booking and notifies both the client and the administrative contact.
func (s *ConsultationService) Create(requester *models.User, consultation *models.Consultation) error {
	if consultation.ID != 0 {
		var existing models.Consultation
		err := s.db.First(&existing, consultation.ID).Error
		if err == nil {
			return ErrConsultationExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if err := ValidateConsultation(consultation); err != nil {
		return err
	}

	consultation.Status = models.ConsultationStatusOpen
	if requester != nil {
		consultation.UserID = requester.ID
	}

	if err := s.db.Create(consultation).Error; err != nil {
		return err
	}

	clientMessage := "Your consultation has been booked! We will contact you shortly to confirm details. " +
		consultation.Summary() +
		" Notifications regarding your consultation will be sent via SMS. Reply CANCEL to cancel your consultation."
	adminMessage := "The following consultation has been booked: " + consultation.Summary()

	s.notify(consultation.PhoneNumber, clientMessage)
	s.notify(s.adminPhone, adminMessage)

	return nil
}

func (s *ConsultationService) notify(to, body string) {
	if to == "" {
		return
	}
	if err := s.sms.SendSMS(to, body); err != nil {
		log.Printf("[consultation] SMS to %s failed: %v", to, err)
	}
}

// ConsultationUpdate carries partial-update fields; nil fields leave the
// stored value untouched.
type ConsultationUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	PhoneNumber      *string
	PreferredContact *string
	Date             *time.Time
	Time             *string
	Message          *string
	Status           *string
}

func (s *ConsultationService) Update(requester *models.User, consultationID uint, input ConsultationUpdate) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := s.db.First(&consultation, consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}

	if err := Authorize(requester, &consultation.UserID); err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		consultation.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		consultation.LastName = *input.LastName
	}
	if input.Email != nil {
		if !utils.ValidEmail(*input.Email) {
			return nil, invalid("email", "Invalid email address")
		}
		consultation.Email = *input.Email
	}
	if input.PhoneNumber != nil {
		if !utils.ValidPhoneNumber(*input.PhoneNumber) {
			return nil, invalid("phoneNumber", "Invalid phone number")
		}
		consultation.PhoneNumber = *input.PhoneNumber
	}
	if input.PreferredContact != nil {
		consultation.PreferredContact = *input.PreferredContact
	}
	if input.Date != nil {
		consultation.Date = *input.Date
	}
	if input.Time != nil {
		consultation.Time = *input.Time
	}
	if input.Message != nil {
		consultation.Message = *input.Message
	}
	if input.Status != nil {
		// CANCELLED is terminal
		if consultation.Status == models.ConsultationStatusCancelled {
			return nil, ErrConsultationCancelled
		}
		consultation.Status = *input.Status
	}

	if err := s.db.Save(&consultation).Error; err != nil {
		return nil, err
	}
	return &consultation, nil
}

func (s *ConsultationService) Delete(requester *models.User, consultationID uint) error {
	var consultation models.Consultation
	if err := s.db.First(&consultation, consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultationNotFound
		}
		return err
	}
	if err := Authorize(requester, &consultation.UserID); err != nil {
		return err
	}
	return s.db.Delete(&consultation).Error
}

type ConsultationFilter struct {
	Date             *time.Time
	Status           string
	PreferredContact string
	Name             string
	Email            string
	Sort             string
}

// GetConsultations mirrors the invoice listing: ownership scoped, conjunctive
// filters, unknown sort keys ignored, empty result reports NotFound.
func (s *ConsultationService) GetConsultations(requester *models.User, filter ConsultationFilter) ([]models.Consultation, error) {
	var consultations []models.Consultation
	if err := ScopeToOwner(s.db, requester).Find(&consultations).Error; err != nil {
		return nil, err
	}

	filtered := consultations[:0]
	for _, consultation := range consultations {
		if filter.Date != nil && !utils.SameDay(consultation.Date, *filter.Date) {
			continue
		}
		if filter.Status != "" && consultation.Status != filter.Status {
			continue
		}
		if filter.PreferredContact != "" && consultation.PreferredContact != filter.PreferredContact {
			continue
		}
		if filter.Name != "" && !strings.Contains(
			strings.ToLower(consultation.FirstName+" "+consultation.LastName),
			strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Email != "" && !strings.EqualFold(consultation.Email, filter.Email) {
			continue
		}
		filtered = append(filtered, consultation)
	}

	if len(filtered) == 0 {
		return nil, ErrConsultationNotFound
	}

	switch filter.Sort {
	case "recent":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.After(filtered[j].Date) })
	case "oldest":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })
	case "nameAsc":
		sort.Slice(filtered, func(i, j int) bool { return lessConsultByName(&filtered[i], &filtered[j]) })
	case "nameDesc":
		sort.Slice(filtered, func(i, j int) bool { return lessConsultByName(&filtered[j], &filtered[i]) })
	}

	return filtered, nil
}

func lessConsultByName(a, b *models.Consultation) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	return a.FirstName < b.FirstName
}

// GetConsultationByID fails closed: admin or owner only.
func (s *ConsultationService) GetConsultationByID(requester *models.User, consultationID uint) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := s.db.First(&consultation, consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	if err := Authorize(requester, &consultation.UserID); err != nil {
		return nil, err
	}
	return &consultation, nil
}

// CancelByInboundMessage cancels the consultation registered to the sending
// phone number when the reply body is exactly CANCEL (any case). This is the
// only transition driven by an unauthenticated channel; authenticity rests on
// possession of the registered number, an accepted trust boundary.
func (s *ConsultationService) CancelByInboundMessage(from, body string) error {
	var consultation models.Consultation
	err := s.db.Where("phone_number = ?", from).Order("created_at DESC").First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConsultationNotFound
		}
		return err
	}

	// the command must equal CANCEL, case aside; no trimming
	if !strings.EqualFold(body, "CANCEL") {
		return ErrInvalidSMSMessage
	}

	if consultation.Status == models.ConsultationStatusCancelled {
		return ErrConsultationCancelled
	}

	consultation.Status = models.ConsultationStatusCancelled
	if err := s.db.Save(&consultation).Error; err != nil {
		return err
	}

	s.notify(from, "Your consultation has successfully been cancelled. Thank you for considering our services.")
	s.notify(s.adminPhone, "The following consultation has been cancelled: "+consultation.Summary())

	return nil
}

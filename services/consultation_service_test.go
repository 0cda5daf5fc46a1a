package services

import (
	"errors"
	"testing"
	"time"

	"maidgroup-backend/models"
)

func newTestConsultationService(t *testing.T) (*ConsultationService, *fakeSMS) {
	t.Helper()
	sms := &fakeSMS{}
	return NewConsultationService(newTestDB(t), sms, "+13015550100"), sms
}

func TestConsultationCreate(t *testing.T) {
	t.Run("opens booking and notifies both parties", func(t *testing.T) {
		svc, sms := newTestConsultationService(t)

		consultation := validConsultation()
		if err := svc.Create(regularUser(4), consultation); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if consultation.Status != models.ConsultationStatusOpen {
			t.Fatalf("expected OPEN, got %s", consultation.Status)
		}
		if consultation.UserID != 4 {
			t.Fatalf("expected requester as owner, got %d", consultation.UserID)
		}

		if len(sms.sent) != 2 {
			t.Fatalf("expected client and admin SMS, got %d", len(sms.sent))
		}
		if sms.sent[0].To != "+12025550147" {
			t.Fatalf("expected client notified first, got %s", sms.sent[0].To)
		}
		if sms.sent[1].To != "+13015550100" {
			t.Fatalf("expected admin contact notified, got %s", sms.sent[1].To)
		}
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		svc, _ := newTestConsultationService(t)

		first := validConsultation()
		if err := svc.Create(regularUser(4), first); err != nil {
			t.Fatal(err)
		}

		duplicate := validConsultation()
		duplicate.ID = first.ID
		if err := svc.Create(regularUser(4), duplicate); !errors.Is(err, ErrConsultationExists) {
			t.Fatalf("expected ErrConsultationExists, got %v", err)
		}
	})

	t.Run("validation failure sends nothing", func(t *testing.T) {
		svc, sms := newTestConsultationService(t)

		consultation := validConsultation()
		consultation.PhoneNumber = ""
		err := svc.Create(regularUser(4), consultation)
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(sms.sent) != 0 {
			t.Fatalf("expected no SMS, got %d", len(sms.sent))
		}
	})

	t.Run("notification failure does not fail the booking", func(t *testing.T) {
		svc, sms := newTestConsultationService(t)
		sms.err = errors.New("carrier down")

		consultation := validConsultation()
		if err := svc.Create(regularUser(4), consultation); err != nil {
			t.Fatalf("create must survive SMS failure, got %v", err)
		}
	})
}

func TestConsultationUpdate(t *testing.T) {
	setup := func(t *testing.T) (*ConsultationService, *models.Consultation) {
		svc, _ := newTestConsultationService(t)
		consultation := validConsultation()
		if err := svc.Create(regularUser(4), consultation); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		return svc, consultation
	}

	t.Run("owner updates own booking", func(t *testing.T) {
		svc, consultation := setup(t)
		timeSlot := "14:00"
		updated, err := svc.Update(regularUser(4), consultation.ID, ConsultationUpdate{Time: &timeSlot})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Time != "14:00" {
			t.Fatalf("expected time update, got %s", updated.Time)
		}
		if updated.FirstName != "Grace" {
			t.Fatal("absent fields must keep stored values")
		}
	})

	t.Run("stranger is denied", func(t *testing.T) {
		svc, consultation := setup(t)
		timeSlot := "14:00"
		if _, err := svc.Update(regularUser(5), consultation.ID, ConsultationUpdate{Time: &timeSlot}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("admin confirms any booking", func(t *testing.T) {
		svc, consultation := setup(t)
		status := models.ConsultationStatusConfirmed
		updated, err := svc.Update(adminUser(), consultation.ID, ConsultationUpdate{Status: &status})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Status != models.ConsultationStatusConfirmed {
			t.Fatalf("expected CONFIRMED, got %s", updated.Status)
		}
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		svc, consultation := setup(t)
		cancelled := models.ConsultationStatusCancelled
		if _, err := svc.Update(adminUser(), consultation.ID, ConsultationUpdate{Status: &cancelled}); err != nil {
			t.Fatal(err)
		}

		open := models.ConsultationStatusOpen
		if _, err := svc.Update(adminUser(), consultation.ID, ConsultationUpdate{Status: &open}); !errors.Is(err, ErrConsultationCancelled) {
			t.Fatalf("expected ErrConsultationCancelled, got %v", err)
		}
	})

	t.Run("rejects invalid contact fields", func(t *testing.T) {
		svc, consultation := setup(t)
		bad := "nope"
		if _, err := svc.Update(adminUser(), consultation.ID, ConsultationUpdate{Email: &bad}); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := svc.Update(adminUser(), consultation.ID, ConsultationUpdate{PhoneNumber: &bad}); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("missing booking reports not found", func(t *testing.T) {
		svc, _ := newTestConsultationService(t)
		timeSlot := "14:00"
		if _, err := svc.Update(adminUser(), 77, ConsultationUpdate{Time: &timeSlot}); !errors.Is(err, ErrConsultationNotFound) {
			t.Fatalf("expected ErrConsultationNotFound, got %v", err)
		}
	})
}

func TestConsultationDelete(t *testing.T) {
	svc, _ := newTestConsultationService(t)
	consultation := validConsultation()
	if err := svc.Create(regularUser(4), consultation); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(regularUser(5), consultation.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Delete(regularUser(4), consultation.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := svc.Delete(adminUser(), consultation.ID); !errors.Is(err, ErrConsultationNotFound) {
		t.Fatalf("expected ErrConsultationNotFound after delete, got %v", err)
	}
}

func TestGetConsultations(t *testing.T) {
	svc, _ := newTestConsultationService(t)

	first := validConsultation()
	if err := svc.Create(regularUser(4), first); err != nil {
		t.Fatal(err)
	}
	second := validConsultation()
	second.FirstName = "Alan"
	second.LastName = "Turing"
	second.Email = "alan@example.com"
	second.PhoneNumber = "+12025550162"
	second.PreferredContact = models.PreferredContactEmail
	second.Date = time.Date(2023, 12, 6, 0, 0, 0, 0, time.UTC)
	if err := svc.Create(regularUser(5), second); err != nil {
		t.Fatal(err)
	}

	t.Run("filters compose conjunctively", func(t *testing.T) {
		date := time.Date(2023, 12, 4, 0, 0, 0, 0, time.UTC)
		results, err := svc.GetConsultations(adminUser(), ConsultationFilter{
			Date:             &date,
			Status:           models.ConsultationStatusOpen,
			PreferredContact: models.PreferredContactPhone,
		})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(results) != 1 || results[0].ID != first.ID {
			t.Fatalf("expected exactly the first booking, got %d results", len(results))
		}
	})

	t.Run("name filter is a case-insensitive substring", func(t *testing.T) {
		results, err := svc.GetConsultations(adminUser(), ConsultationFilter{Name: "turing"})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(results) != 1 || results[0].ID != second.ID {
			t.Fatalf("expected the Turing booking, got %d results", len(results))
		}
	})

	t.Run("email filter matches case-insensitively", func(t *testing.T) {
		results, err := svc.GetConsultations(adminUser(), ConsultationFilter{Email: "ALAN@example.com"})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(results) != 1 || results[0].ID != second.ID {
			t.Fatalf("expected the Turing booking, got %d results", len(results))
		}
	})

	t.Run("non-admin sees only own bookings", func(t *testing.T) {
		results, err := svc.GetConsultations(regularUser(4), ConsultationFilter{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(results) != 1 || results[0].ID != first.ID {
			t.Fatalf("expected only the owned booking, got %d results", len(results))
		}
	})

	t.Run("no matches reports not found", func(t *testing.T) {
		if _, err := svc.GetConsultations(adminUser(), ConsultationFilter{Name: "nobody"}); !errors.Is(err, ErrConsultationNotFound) {
			t.Fatalf("expected ErrConsultationNotFound, got %v", err)
		}
	})

	t.Run("sorting", func(t *testing.T) {
		results, err := svc.GetConsultations(adminUser(), ConsultationFilter{Sort: "recent"})
		if err != nil {
			t.Fatal(err)
		}
		if results[0].ID != second.ID {
			t.Fatal("expected most recent first")
		}
		results, err = svc.GetConsultations(adminUser(), ConsultationFilter{Sort: "nameAsc"})
		if err != nil {
			t.Fatal(err)
		}
		if results[0].LastName != "Hopper" {
			t.Fatalf("expected Hopper first, got %s", results[0].LastName)
		}
	})
}

func TestGetConsultationAuthorization(t *testing.T) {
	svc, _ := newTestConsultationService(t)
	consultation := validConsultation()
	if err := svc.Create(regularUser(4), consultation); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetConsultationByID(regularUser(5), consultation.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for stranger, got %v", err)
	}
	if _, err := svc.GetConsultationByID(regularUser(4), consultation.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.GetConsultationByID(adminUser(), consultation.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if _, err := svc.GetConsultationByID(adminUser(), 999); !errors.Is(err, ErrConsultationNotFound) {
		t.Fatalf("expected ErrConsultationNotFound, got %v", err)
	}
}

func TestCancelByInboundMessage(t *testing.T) {
	setup := func(t *testing.T) (*ConsultationService, *fakeSMS, *models.Consultation) {
		svc, sms := newTestConsultationService(t)
		consultation := validConsultation()
		if err := svc.Create(regularUser(4), consultation); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		sms.sent = nil
		return svc, sms, consultation
	}

	t.Run("cancel keyword cancels, any case", func(t *testing.T) {
		for _, body := range []string{"CANCEL", "cancel", "CaNcEl"} {
			svc, sms, consultation := setup(t)

			if err := svc.CancelByInboundMessage(consultation.PhoneNumber, body); err != nil {
				t.Fatalf("cancel with %q failed: %v", body, err)
			}
			stored, err := svc.GetConsultationByID(adminUser(), consultation.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Status != models.ConsultationStatusCancelled {
				t.Fatalf("expected CANCELLED, got %s", stored.Status)
			}
			if len(sms.sent) != 2 {
				t.Fatalf("expected client and admin SMS, got %d", len(sms.sent))
			}
			if sms.sent[1].To != "+13015550100" {
				t.Fatalf("expected admin contact notified, got %s", sms.sent[1].To)
			}
		}
	})

	t.Run("other keywords are rejected without state change", func(t *testing.T) {
		svc, sms, consultation := setup(t)

		for _, body := range []string{"stop", " CANCEL ", "CANCEL please"} {
			if err := svc.CancelByInboundMessage(consultation.PhoneNumber, body); !errors.Is(err, ErrInvalidSMSMessage) {
				t.Fatalf("expected ErrInvalidSMSMessage for %q, got %v", body, err)
			}
		}
		stored, err := svc.GetConsultationByID(adminUser(), consultation.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.ConsultationStatusOpen {
			t.Fatalf("expected OPEN, got %s", stored.Status)
		}
		if len(sms.sent) != 0 {
			t.Fatalf("expected no SMS, got %d", len(sms.sent))
		}
	})

	t.Run("repeated cancel texts do not renotify", func(t *testing.T) {
		svc, sms, consultation := setup(t)

		if err := svc.CancelByInboundMessage(consultation.PhoneNumber, "CANCEL"); err != nil {
			t.Fatal(err)
		}
		if err := svc.CancelByInboundMessage(consultation.PhoneNumber, "CANCEL"); !errors.Is(err, ErrConsultationCancelled) {
			t.Fatalf("expected ErrConsultationCancelled, got %v", err)
		}
		if len(sms.sent) != 2 {
			t.Fatalf("expected notifications only for the first cancel, got %d", len(sms.sent))
		}
	})

	t.Run("unknown sender reports not found", func(t *testing.T) {
		svc, _, _ := setup(t)
		if err := svc.CancelByInboundMessage("+19995550000", "CANCEL"); !errors.Is(err, ErrConsultationNotFound) {
			t.Fatalf("expected ErrConsultationNotFound, got %v", err)
		}
	})

	t.Run("targets the most recent booking for the number", func(t *testing.T) {
		svc, _, consultation := setup(t)

		later := validConsultation()
		later.Date = time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
		if err := svc.Create(regularUser(4), later); err != nil {
			t.Fatal(err)
		}

		if err := svc.CancelByInboundMessage(consultation.PhoneNumber, "CANCEL"); err != nil {
			t.Fatal(err)
		}
		stored, err := svc.GetConsultationByID(adminUser(), later.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.ConsultationStatusCancelled {
			t.Fatalf("expected the newest booking cancelled, got %s", stored.Status)
		}
		earlier, err := svc.GetConsultationByID(adminUser(), consultation.ID)
		if err != nil {
			t.Fatal(err)
		}
		if earlier.Status != models.ConsultationStatusOpen {
			t.Fatalf("expected the earlier booking untouched, got %s", earlier.Status)
		}
	})
}

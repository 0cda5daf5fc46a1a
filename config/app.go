package config

import (
	"os"
	"strconv"
)

// App carries the settings injected into services at construction.
// Nothing below is read from the environment outside of Load.
type App struct {
	// Destination for administrative booking/cancellation notifications.
	AdminPhone string

	// Square
	SquareAccessToken     string
	SquareLocationID      string
	SquareSignatureKey    string
	SquareNotificationURL string
	SquareBaseURL         string

	// Twilio sender number
	TwilioFromNumber string

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Days an invoice may sit UNPAID before the reminder cron re-sends its link.
	ReminderAfterDays int
}

func Load() App {
	reminderDays := 3
	if env := os.Getenv("REMINDER_AFTER_DAYS"); env != "" {
		if d, err := strconv.Atoi(env); err == nil {
			reminderDays = d
		}
	}

	return App{
		AdminPhone:            os.Getenv("ADMIN_PHONE"),
		SquareAccessToken:     os.Getenv("SQUARE_ACCESS_TOKEN"),
		SquareLocationID:      os.Getenv("SQUARE_LOCATION_ID"),
		SquareSignatureKey:    os.Getenv("SQUARE_SIGNATURE_KEY"),
		SquareNotificationURL: os.Getenv("SQUARE_NOTIFICATION_URL"),
		SquareBaseURL:         os.Getenv("SQUARE_BASE_URL"),
		TwilioFromNumber:      os.Getenv("TWILIO_PHONE_NUMBER"),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              os.Getenv("SMTP_PORT"),
		SMTPUser:              os.Getenv("SMTP_USER"),
		SMTPPass:              os.Getenv("SMTP_PASS"),
		SMTPFrom:              os.Getenv("SMTP_FROM"),
		ReminderAfterDays:     reminderDays,
	}
}

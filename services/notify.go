// services/notify.go
package services

import (
	"context"
	"net/smtp"
	"os"
	"strings"

	"maidgroup-backend/payments"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// PaymentGateway is the external payment processor surface the invoice
// lifecycle depends on. Failures propagate unchanged; retry policy is the
// processor's concern.
type PaymentGateway interface {
	GeneratePaymentLink(ctx context.Context, idempotencyKey string, order payments.Order) (string, error)
	BatchRetrieveOrders(ctx context.Context, orderIDs []string) ([]payments.RetrievedOrder, error)
}

// Notification collaborators are fire-and-forget from the lifecycle's
// perspective; a send failure never rolls back a state transition.
type SMSSender interface {
	SendSMS(to, body string) error
}

type EmailSender interface {
	SendEmail(to, subject, body string) error
}

type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(from string) *TwilioSMS {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioSMS{
		from: from,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (t *TwilioSMS) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	return err
}

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

func (m *SMTPMailer) SendEmail(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg))
}

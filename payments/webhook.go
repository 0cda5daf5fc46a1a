package payments

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureVerifier recomputes the HMAC the processor signs its webhook
// deliveries with: base64(HMAC-SHA1(key, notification URL + raw body)).
type SignatureVerifier struct {
	key             string
	notificationURL string
}

func NewSignatureVerifier(key, notificationURL string) *SignatureVerifier {
	return &SignatureVerifier{key: key, notificationURL: notificationURL}
}

// Verify must run before the payload is parsed. Comparison is constant time.
func (v *SignatureVerifier) Verify(body []byte, signature string) error {
	mac := hmac.New(sha1.New, []byte(v.key))
	mac.Write([]byte(v.notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

const EventTypePaymentUpdated = "payment.updated"

// WebhookEvent is the decoded form of an inbound processor event. Payloads
// that do not carry the expected data.object.payment branch decode to the
// unrecognized variant rather than an error, since the sender retries on
// failure responses indefinitely.
type WebhookEvent struct {
	Type          string
	OrderID       string // the processor's own order id, not the local reference
	PaymentStatus string
	Recognized    bool
}

func ParseWebhookEvent(payload []byte) WebhookEvent {
	var raw struct {
		Type string `json:"type"`
		Data *struct {
			Object struct {
				Payment *struct {
					OrderID string `json:"order_id"`
					Status  string `json:"status"`
				} `json:"payment"`
			} `json:"object"`
		} `json:"data"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return WebhookEvent{}
	}
	if raw.Data == nil || raw.Data.Object.Payment == nil {
		return WebhookEvent{Type: raw.Type}
	}

	return WebhookEvent{
		Type:          raw.Type,
		OrderID:       raw.Data.Object.Payment.OrderID,
		PaymentStatus: raw.Data.Object.Payment.Status,
		Recognized:    true,
	}
}

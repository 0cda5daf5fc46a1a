package services

import "errors"

var (
	ErrInvoiceNotFound       = errors.New("no invoice was found")
	ErrConsultationNotFound  = errors.New("no consultation was found")
	ErrUnauthorized          = errors.New("you are not authorized to perform this action")
	ErrConsultationExists    = errors.New("consultation already exists")
	ErrConsultationCancelled = errors.New("consultation has already been cancelled")
	ErrInvoiceAlreadyPaid    = errors.New("invoice has already been paid")
	ErrInvoiceNotPaid        = errors.New("cannot send an invoice that is not paid")
	ErrCannotUpdatePaid      = errors.New("cannot update an invoice that is already paid")
	ErrInvalidSMSMessage     = errors.New("invalid message")
)

// ValidationError reports the first violated rule for a candidate invoice or
// consultation. Rule precedence is fixed; callers depend on which message
// surfaces first.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

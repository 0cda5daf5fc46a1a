// utils/validation.go
package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

var validate = validator.New()

// ValidPhoneNumber reports whether the number parses as a valid US national number
func ValidPhoneNumber(phone string) bool {
	num, err := phonenumbers.Parse(phone, "US")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// ValidEmail performs an RFC-level syntax check, not a deliverability check
func ValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

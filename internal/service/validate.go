package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxEmailLen       = 254
	maxNameLen        = 150
	maxPhoneLen       = 15
	maxProductNameLen = 255
)

var maxPrice = decimal.New(1, 8)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if utf8.RuneCountInString(email) > maxEmailLen {
		return invalid("email", fmt.Sprintf("Ensure this field has no more than %d characters.", maxEmailLen))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "Enter a valid email address.")
	}
	return nil
}

func maxLen(field, value string, n int) error {
	if utf8.RuneCountInString(value) > n {
		return invalid(field, fmt.Sprintf("Ensure this field has no more than %d characters.", n))
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return invalid("price", "Ensure this value is greater than or equal to 0.")
	case !p.Equal(p.Round(2)):
		return invalid("price", "Ensure that there are no more than 2 decimal places.")
	case !p.LessThan(maxPrice):
		return invalid("price", "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "This field may not be blank.")
	}
	return maxLen("name", name, maxProductNameLen)
}

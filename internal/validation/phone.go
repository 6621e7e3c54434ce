package validation

import (
	"strings"

	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

// CountryCode is prefixed to every stored phone number.
const CountryCode = "91"

// NormalizePhone reduces raw input to its digits and returns the canonical
// +<country><10 digits> form.
func NormalizePhone(raw string) (string, error) {
	digits := DigitsOnly(raw)
	if len(digits) == len(CountryCode)+10 && strings.HasPrefix(digits, CountryCode) {
		digits = digits[len(CountryCode):]
	}
	if len(digits) != 10 {
		return "", apperrors.NewValidationError("phone", "please enter a valid 10-digit phone number")
	}
	return "+" + CountryCode + digits, nil
}

// LocalPhone strips the country prefix for display in edit forms.
func LocalPhone(canonical string) string {
	return strings.TrimPrefix(canonical, "+"+CountryCode)
}

// DigitsOnly drops every non-digit rune.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

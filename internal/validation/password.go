package validation

import "strings"

// PasswordSymbols is the allowed symbol set for the symbol requirement.
const PasswordSymbols = "@$!%*?&"

// MinPasswordLength is the shortest accepted signup password.
const MinPasswordLength = 8

// Strength tiers reported to the signup form.
type Strength string

const (
	StrengthNone   Strength = "none"
	StrengthWeak   Strength = "weak"
	StrengthFair   Strength = "fair"
	StrengthGood   Strength = "good"
	StrengthStrong Strength = "strong"
)

// PasswordRequirements lists which of the five signup requirements are met.
type PasswordRequirements struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

// Met counts satisfied requirements.
func (r PasswordRequirements) Met() int {
	n := 0
	for _, ok := range []bool{r.Length, r.Uppercase, r.Lowercase, r.Number, r.Special} {
		if ok {
			n++
		}
	}
	return n
}

// CheckPassword evaluates pw against the signup requirements.
func CheckPassword(pw string) PasswordRequirements {
	req := PasswordRequirements{Length: len(pw) >= MinPasswordLength}
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			req.Uppercase = true
		case r >= 'a' && r <= 'z':
			req.Lowercase = true
		case r >= '0' && r <= '9':
			req.Number = true
		case strings.ContainsRune(PasswordSymbols, r):
			req.Special = true
		}
	}
	return req
}

// PasswordStrength maps the met-requirement count to a tier.
func PasswordStrength(pw string) Strength {
	if pw == "" {
		return StrengthNone
	}
	switch met := CheckPassword(pw).Met(); {
	case met <= 2:
		return StrengthWeak
	case met == 3:
		return StrengthFair
	case met == 4:
		return StrengthGood
	default:
		return StrengthStrong
	}
}

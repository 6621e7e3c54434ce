package validation

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

const (
	DefaultRating     = 4.0
	MaxRating         = 5.0
	MaxUsernameLength = 30
	DefaultExperience = "1 year"
)

// ServiceCatalogue is the fixed list offered when registering a helper.
var ServiceCatalogue = []string{
	"Cleaning",
	"Plumbing",
	"Electrical",
	"Home Repairs",
	"Gardening",
	"Painting",
	"Cooking",
	"Tutoring",
	"Pet Care",
	"Moving",
	"IT Support",
	"Photography",
}

// CanonicalServiceType matches s case-insensitively against the catalogue.
func CanonicalServiceType(s string) (string, error) {
	needle := strings.TrimSpace(s)
	for _, svc := range ServiceCatalogue {
		if strings.EqualFold(svc, needle) {
			return svc, nil
		}
	}
	return "", apperrors.NewValidationError("service_type", "unknown service type")
}

// DeriveUsername builds a username from a display name.
func DeriveUsername(name string) string {
	u := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	return Truncate(u, MaxUsernameLength)
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NormalizeUsername lowercases an explicitly chosen username. Whitespace is
// rejected rather than silently removed.
func NormalizeUsername(raw string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return "", apperrors.NewValidationError("username", "username is required")
	}
	if strings.IndexFunc(u, unicode.IsSpace) >= 0 {
		return "", apperrors.NewValidationError("username", "username cannot contain spaces")
	}
	if len(u) > MaxUsernameLength {
		return "", apperrors.NewValidationError("username", fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	}
	return u, nil
}

// ParseRating reads a rating, defaulting to 4.0 and clamping to [0,5].
func ParseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRating, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewValidationError("rating", "rating must be a number")
	}
	return ClampRating(v), nil
}

// ClampRating bounds r to [0,5].
func ClampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > MaxRating:
		return MaxRating
	default:
		return r
	}
}

// ParsePrice reads an optional non-negative price per hour.
func ParsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.NewValidationError("price_per_hour", "price must be a non-negative number")
	}
	return &v, nil
}

// ParseSkills splits a comma separated list, dropping blanks.
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// FormatEmployeeID renders the TS-EMP-NNN form.
func FormatEmployeeID(n int) string {
	return fmt.Sprintf("TS-EMP-%03d", n)
}

// RandomEmployeeID picks a number in [100,999].
func RandomEmployeeID() string {
	return FormatEmployeeID(100 + rand.Intn(900))
}

// TitleCase upper-cases the first letter of each word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ServiceID derives the booking service id from a category name.
func ServiceID(category string) string {
	return strings.Join(strings.Fields(strings.ToLower(category)), "_")
}

// OptionalString trims s and returns nil when it is empty.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

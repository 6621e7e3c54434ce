package repository

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

func contactFields() bson.M {
	return bson.M{
		"_id":        "c-1",
		"full_name":  "Meera",
		"email":      "meera@example.com",
		"message":    "Do you cover Pune?",
		"status":     "new",
		"created_at": time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func mustRaw(t *testing.T, m bson.M) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestSchemaOfSplitsRequiredAndOptional(t *testing.T) {
	if !contactSchema.allowed["phone"] {
		t.Fatal("phone should be allowed")
	}
	for _, key := range contactSchema.required {
		if key == "phone" {
			t.Fatal("phone should be optional")
		}
	}
	if len(contactSchema.required) != 6 {
		t.Fatalf("required = %v", contactSchema.required)
	}
}

func TestStrictDecodeAcceptsKnownShape(t *testing.T) {
	var doc contactDoc
	if err := strictDecode(mustRaw(t, contactFields()), contactSchema, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	msg, err := doc.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if msg.FullName != "Meera" || msg.Phone != nil || msg.Status != "new" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestStrictDecodeRejectsUnknownField(t *testing.T) {
	fields := contactFields()
	fields["priority"] = "high"
	var doc contactDoc
	err := strictDecode(mustRaw(t, fields), contactSchema, &doc)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestStrictDecodeRejectsMissingField(t *testing.T) {
	fields := contactFields()
	delete(fields, "status")
	var doc contactDoc
	err := strictDecode(mustRaw(t, fields), contactSchema, &doc)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestStrictDecodeRejectsWrongType(t *testing.T) {
	fields := contactFields()
	fields["message"] = 42
	var doc contactDoc
	err := strictDecode(mustRaw(t, fields), contactSchema, &doc)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestMongoSortRejectsUnknownField(t *testing.T) {
	if _, err := mongoSort([]Order{{Field: "password_hash"}}, userSortable, defaultUserSort); err == nil {
		t.Fatal("expected error")
	}
	sort, err := mongoSort([]Order{{Field: FieldRating, Desc: true}}, helperSortable, defaultHelperSort)
	if err != nil || len(sort) != 1 || sort[0].Value != -1 {
		t.Fatalf("sort = %v, %v", sort, err)
	}
}

func TestToDomainRejectsUnknownEnums(t *testing.T) {
	contact := contactDoc{Status: "archived"}
	if _, err := contact.toDomain(); !errors.Is(err, ErrMalformed) {
		t.Errorf("contact status: got %v", err)
	}

	user := userDoc{Role: "superuser", Provider: "email"}
	if _, err := user.toDomain(); !errors.Is(err, ErrMalformed) {
		t.Errorf("user role: got %v", err)
	}
	user = userDoc{Role: "user", Provider: "myspace"}
	if _, err := user.toDomain(); !errors.Is(err, ErrMalformed) {
		t.Errorf("user provider: got %v", err)
	}
	user = userDoc{Role: "user", Provider: "email", Status: "frozen"}
	if _, err := user.toDomain(); !errors.Is(err, ErrMalformed) {
		t.Errorf("user status: got %v", err)
	}

	booking := bookingDoc{Status: "pending", PaymentMode: "cash", PaymentStatus: "pending", HelperRating: 4}
	if _, err := booking.toDomain(); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}
	for name, mutate := range map[string]func(*bookingDoc){
		"status":         func(d *bookingDoc) { d.Status = "approved" },
		"payment_mode":   func(d *bookingDoc) { d.PaymentMode = "card" },
		"payment_status": func(d *bookingDoc) { d.PaymentStatus = "refunded" },
		"helper_rating":  func(d *bookingDoc) { d.HelperRating = 9 },
	} {
		bad := booking
		mutate(&bad)
		if _, err := bad.toDomain(); !errors.Is(err, ErrMalformed) {
			t.Errorf("booking %s: got %v", name, err)
		}
	}
}

func TestUserDocWithoutStatusIsActive(t *testing.T) {
	u, err := userDoc{Role: "admin", Provider: "google"}.toDomain()
	if err != nil || u.Status != domain.UserStatusActive {
		t.Fatalf("user = %+v, %v", u, err)
	}
}

func TestHelperDocRatingRange(t *testing.T) {
	for _, rating := range []float64{-0.1, 5.01, math.NaN()} {
		if _, err := (helperDoc{Rating: rating}).toDomain(); !errors.Is(err, ErrMalformed) {
			t.Errorf("rating %v: got %v", rating, err)
		}
	}
	if _, err := (helperDoc{Rating: 4.5, CompletedJobs: -1}).toDomain(); !errors.Is(err, ErrMalformed) {
		t.Errorf("negative jobs: got %v", err)
	}
	h, err := helperDoc{Rating: 5, Skills: []string{"pipes"}}.toDomain()
	if err != nil || h.Rating != 5 {
		t.Fatalf("helper = %+v, %v", h, err)
	}
}

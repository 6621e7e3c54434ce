package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	if de.Code != CodeInternal || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %+v", de)
	}
}

func TestHasCodeSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("advance: %w", NewInvalidTransition("completed", "ongoing"))
	if !HasCode(err, CodeInvalidTransition) {
		t.Fatal("expected wrapped invalid transition to be detected")
	}
	if HasCode(err, CodeValidation) {
		t.Fatal("unexpected validation code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Fatal("plain errors carry no code")
	}
}

func TestBackendErrorKeepsMessageVerbatim(t *testing.T) {
	err := NewBackendError(errors.New("connection refused"))
	de := ToDomainError(err)
	if de.Message != "connection refused" {
		t.Fatalf("message = %q", de.Message)
	}
	if de.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("status = %d", de.HTTPStatus)
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	de := ToDomainError(NewValidationError("phone", "phone must have 10 digits"))
	if de.Details["field"] != "phone" {
		t.Fatalf("details = %v", de.Details)
	}
}

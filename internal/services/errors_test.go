package services

import (
	"errors"
	"testing"
)

func TestServiceErrorKinds(t *testing.T) {
	err := notFound("Escrow not found")
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound kind")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("did not expect ErrForbidden kind")
	}
	if err.Error() != "Escrow not found" {
		t.Errorf("message = %q", err.Error())
	}

	if !errors.Is(forbidden("x"), ErrForbidden) {
		t.Error("expected ErrForbidden kind")
	}
	if !errors.Is(invalidTransition("x"), ErrInvalidTransition) {
		t.Error("expected ErrInvalidTransition kind")
	}
	if !errors.Is(badRequest("x"), ErrBadRequest) {
		t.Error("expected ErrBadRequest kind")
	}
}

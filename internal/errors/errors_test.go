package errors

import (
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "deck not found",
	}

	expected := "NOT_FOUND: deck not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"ambiguous", NewAmbiguousAddressing(), ErrAmbiguousAddressing, 400},
		{"invalid request", NewInvalidRequest("name is required"), ErrInvalidRequest, 400},
		{"unauthorized", NewUnauthorized("login required"), ErrUnauthorized, 401},
		{"not found", NewNotFound("deck", "abc"), ErrNotFound, 404},
		{"file not found", NewFileNotFound("/tmp/x.jsonl"), ErrFileNotFound, 404},
		{"name exists", NewNameAlreadyExists("biology"), ErrNameAlreadyExists, 409},
		{"duplicate card", NewDuplicateCardID([]int{3}), ErrDuplicateCardID, 422},
		{"invalid settings", NewInvalidSettings(map[string]string{"font_size": "max"}), ErrInvalidSettings, 422},
		{"cancelled", NewCancelled("export"), ErrCancelled, 499},
		{"internal", NewInternal(fmt.Errorf("boom")), ErrInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestNewNotFound_Details(t *testing.T) {
	err := NewNotFound("session", "01HX")

	if err.Message != "session not found: 01HX" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["kind"] != "session" {
		t.Errorf("Details[kind] = %v, want session", err.Details["kind"])
	}
	if err.Details["identifier"] != "01HX" {
		t.Errorf("Details[identifier] = %v, want 01HX", err.Details["identifier"])
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNameAlreadyExists("biology")

	if !Is(err, ErrNameAlreadyExists) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is() = true for different code")
	}
	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("Is() = true for non-AppError")
	}
	if !Is(fmt.Errorf("wrapped: %w", err), ErrNameAlreadyExists) {
		t.Error("Is() = false for wrapped AppError")
	}
}

func TestAs(t *testing.T) {
	orig := NewInvalidRequest("bad")
	if got := As(orig); got != orig {
		t.Errorf("As() returned a different error for an AppError")
	}

	got := As(fmt.Errorf("disk full"))
	if got.Code != ErrInternal {
		t.Errorf("As() Code = %q, want %q", got.Code, ErrInternal)
	}
	if got.Message != "disk full" {
		t.Errorf("As() Message = %q, want %q", got.Message, "disk full")
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an Adapty error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"         // 401
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrNameAlreadyExists   ErrorCode = "NAME_ALREADY_EXISTS"  // 409
	ErrDuplicateCardID     ErrorCode = "DUPLICATE_CARD_ID"    // 422
	ErrInvalidSettings     ErrorCode = "INVALID_SETTINGS"     // 422
	ErrCancelled           ErrorCode = "CANCELLED"            // 499
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// AppError represents a structured error with code, status, and details.
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing creates a 400 error for when both ID and name are provided.
func NewAmbiguousAddressing() *AppError {
	return &AppError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and name; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AppError {
	return &AppError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for a rejected login or a missing session cookie.
func NewUnauthorized(msg string) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound creates a 404 error. kind names what was looked up ("deck", "session").
func NewNotFound(kind, identifier string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for import paths that do not exist.
func NewFileNotFound(path string) *AppError {
	return &AppError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNameAlreadyExists creates a 409 error for deck name collisions.
func NewNameAlreadyExists(name string) *AppError {
	return &AppError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("deck with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewDuplicateCardID creates a 422 error when a deck reuses card ids.
func NewDuplicateCardID(ids []int) *AppError {
	return &AppError{
		Code:    ErrDuplicateCardID,
		Status:  422,
		Message: fmt.Sprintf("card ids must be unique within a deck; duplicated: %v", ids),
		Details: map[string]any{"duplicate_ids": ids},
	}
}

// NewInvalidSettings creates a 422 error listing the settings fields that failed validation.
func NewInvalidSettings(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrInvalidSettings,
		Status:  422,
		Message: fmt.Sprintf("invalid settings: %d field(s) rejected", len(fields)),
		Details: map[string]any{"fields": fields},
	}
}

// NewCancelled creates a 499 error for operations interrupted by context cancellation.
func NewCancelled(op string) *AppError {
	return &AppError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *AppError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var aErr *AppError
	if stderrors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}

// As converts any error to an AppError, wrapping unknown errors as internal.
func As(err error) *AppError {
	var aErr *AppError
	if stderrors.As(err, &aErr) {
		return aErr
	}
	return NewInternal(err)
}

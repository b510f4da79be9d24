package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a typed client error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and backend
// responses match the predefined values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthorized     = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrNotAuthenticated = New("NOT_AUTHENTICATED", http.StatusUnauthorized, "not logged in")
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden        = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal error")
	ErrAPI              = New("API_ERROR", http.StatusBadGateway, "api error")
	ErrTransport        = New("TRANSPORT_ERROR", http.StatusBadGateway, "backend unreachable")
	ErrStoreMiss        = New("STORE_MISS", http.StatusNotFound, "key not found")
	ErrNoReviewTarget   = New("NO_REVIEW_TARGET", http.StatusBadRequest, "no session selected for review")
	ErrAlreadyReviewed  = New("ALREADY_REVIEWED", http.StatusConflict, "session already reviewed")
	ErrActionNotAllowed = New("ACTION_NOT_ALLOWED", http.StatusConflict, "action not allowed for this session")
	ErrActionInFlight   = New("ACTION_IN_FLIGHT", http.StatusConflict, "action already in progress")
	ErrUnknownView      = New("UNKNOWN_VIEW", http.StatusNotFound, "unknown view")
	ErrUnavailable      = New("UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromResponse builds an error for a non-2xx backend response. The message is
// the payload's "detail" string when present, otherwise "API Error: <status>".
func FromResponse(status int, body []byte) *Error {
	message := fmt.Sprintf("API Error: %d", status)

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil && strings.TrimSpace(detail) != "" {
			message = detail
		}
	}

	code := ErrAPI.Code
	switch status {
	case http.StatusUnauthorized:
		code = ErrUnauthorized.Code
	case http.StatusForbidden:
		code = ErrForbidden.Code
	case http.StatusNotFound:
		code = ErrNotFound.Code
	case http.StatusConflict:
		code = ErrConflict.Code
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = ErrValidation.Code
	}

	return New(code, status, message)
}

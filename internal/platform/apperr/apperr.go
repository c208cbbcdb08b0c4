// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package apperr defines the centralized error handling framework for Taskdeck.

It provides a rich error type that bridges the gap between low-level transport
failures and the normalized error contract exposed to callers of the API client
and session controller.

Architecture:

  - AppError: A struct containing a machine-readable Code, a user-friendly
    Message, the originating HTTP Status (0 when no response was received),
    and optional Details.
  - Taxonomy: Identity mismatches, authorization failures, HTTP errors,
    network unreachability, and local validation each get a distinct code.
  - Normalization: Every error that leaves the apiclient or session layer is
    wrapped as an [AppError]; raw transport or parse errors never leak past
    those boundaries.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Taskdeck client.
//
// It carries a machine-readable code, a human-readable message, the HTTP
// status that produced it (when one exists), and an optional details payload
// copied from the server's error body.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "UNAUTHORIZED", "HTTP_500").
	Code string `json:"code"`
	// Message is a human-readable description safe to surface to a user.
	Message string `json:"message"`
	// Status is the HTTP response status. Zero means no response was received.
	Status int `json:"status,omitempty"`
	// Details holds the raw server-supplied error body, when one was decoded.
	Details map[string]any `json:"details,omitempty"`
	// Fields holds per-field validation failures, when any.
	Fields []FieldError `json:"fields,omitempty"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
}

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Error Codes

const (
	CodeIdentityMismatch = "IDENTITY_MISMATCH"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeNetwork          = "NETWORK_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// # Pre-flight Errors

// IdentityMismatch creates the error raised when the resource owner named in
// a request URL disagrees with the subject embedded in the stored credential.
// Requests failing this check are never dispatched.
func IdentityMismatch(urlUserID, tokenUserID string) *AppError {
	return &AppError{
		Code:    CodeIdentityMismatch,
		Message: "User ID mismatch: URL user ID does not match token user ID",
		Status:  http.StatusForbidden,
		Details: map[string]any{
			"url_user_id":   urlUserID,
			"token_user_id": tokenUserID,
		},
	}
}

// ValidationError creates an error for malformed local input or an
// unexpected response shape. Optional field errors pinpoint the inputs.
func ValidationError(msg string, fields ...FieldError) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: msg,
		Status:  http.StatusBadRequest,
		Fields:  fields,
	}
}

// # Transport Errors

// Unauthorized creates a 401 [AppError]. Raising one implies the stored
// credential has been purged and the caller must re-authenticate.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: msg,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError] for a permitted-identity violation.
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: msg,
		Status:  http.StatusForbidden,
	}
}

// NotFound creates a 404 [AppError].
func NotFound(msg string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: msg,
		Status:  http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for uniqueness violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: msg,
		Status:  http.StatusConflict,
	}
}

// Network creates the status-independent error for a request that was sent
// but received no response.
func Network(cause error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "Network error - no response received",
		Cause:   cause,
	}
}

// HTTP creates an [AppError] from a non-2xx response. The message falls back
// to the standard status text when the server supplied none.
func HTTP(status int, msg string, details map[string]any) *AppError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error %d", status)
	}
	return &AppError{
		Code:    fmt.Sprintf("HTTP_%d", status),
		Message: msg,
		Status:  status,
		Details: details,
	}
}

// Internal wraps an unexpected local failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
		Cause:   cause,
	}
}

// # Helpers

// Normalize coerces any Go error into an [*AppError]. Errors already carrying
// an AppError in their chain pass through unchanged; anything else becomes a
// generic error derived from the thrown value's own message.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{
		Code:    CodeInternal,
		Message: err.Error(),
		Cause:   err,
	}
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	ae := As(err)
	return ae != nil && ae.Status == status
}

// IsClientError reports whether err is a 4xx response error.
func IsClientError(err error) bool {
	ae := As(err)
	return ae != nil && ae.Status >= 400 && ae.Status < 500
}

// IsServerError reports whether err is a 5xx response error.
func IsServerError(err error) bool {
	ae := As(err)
	return ae != nil && ae.Status >= 500 && ae.Status < 600
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
)

// # Response Stage

// envelopeKeys lists the wrapper keys the backend may nest payloads under,
// in unwrap priority order.
var envelopeKeys = []string{"data", "result", "items"}

// decodeBody reads and JSON-decodes a response body. A non-JSON body is
// folded into a {"message": <text>} object so the error stage always has a
// structured value to classify.
func decodeBody(body io.Reader) any {
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = "Response is not in JSON format"
		}
		return map[string]any{"message": text}
	}
	return decoded
}

// unwrapEnvelope applies the fixed-priority envelope unwrap: a body wrapped
// under data, result, or items yields the wrapped value; any other body
// passes through unchanged.
func unwrapEnvelope(decoded any) any {
	wrapper, ok := decoded.(map[string]any)
	if !ok {
		return decoded
	}
	for _, key := range envelopeKeys {
		if inner, present := wrapper[key]; present {
			return inner
		}
	}
	return decoded
}

// unwrapInto unwraps the envelope and maps the payload onto out through a
// JSON round trip. This is the single explicit parse step for the backend's
// duck-typed response shapes.
func unwrapInto(decoded, out any) error {
	payload := unwrapEnvelope(decoded)
	if payload == nil {
		return nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("response payload not re-encodable: %w", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("response shape mismatch: %w", err)
	}
	return nil
}

// # Error Stage

/*
interceptError classifies a non-2xx response into the normalized error shape.

Description: 401 purges the credential store and notifies the unauthorized
sink, exactly once per request (HTTP errors are never retried, so this stage
runs at most once per do call). 403/404/500 are logged and surfaced without
side effects. Every other status produces a generic HTTP error.
*/
func (client *Client) interceptError(ctx context.Context, request *http.Request, status int, decoded any) error {
	message, details := serverMessage(decoded)

	logger := client.log.With(
		slog.String("method", request.Method),
		slog.String("path", request.URL.Path),
		slog.Int("status", status),
	)

	switch status {
	case http.StatusUnauthorized:
		logger.Warn("unauthorized access - token may be expired or invalid")
		client.store.Clear(ctx)
		if client.onUnauthorized != nil {
			client.onUnauthorized(ctx)
		}
	case http.StatusForbidden:
		logger.Warn("forbidden access - insufficient permissions")
	case http.StatusNotFound:
		logger.Warn("resource not found")
	case http.StatusInternalServerError:
		logger.Error("server error occurred")
	default:
		logger.Warn("http error", slog.String("message", message))
	}

	return httpError(status, message, details)
}

// httpError maps a status and server message onto the error taxonomy.
func httpError(status int, message string, details map[string]any) error {
	if status == http.StatusUnauthorized {
		if message == "" {
			message = "Unauthorized"
		}
		unauthorized := apperr.Unauthorized(message)
		unauthorized.Details = details
		return unauthorized
	}
	return apperr.HTTP(status, message, details)
}

// serverMessage extracts the human-readable message and raw details from a
// decoded error body. The backend variants use message, error, or detail.
func serverMessage(decoded any) (string, map[string]any) {
	body, ok := decoded.(map[string]any)
	if !ok {
		return "", nil
	}
	for _, key := range []string{"message", "error", "detail"} {
		if text, ok := body[key].(string); ok && text != "" {
			return text, body
		}
	}
	return "", body
}

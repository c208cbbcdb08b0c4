// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package request

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/ctxutil"
	"github.com/taskdeck/taskdeck/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Subject extracts the authenticated user ID from the request context.

Returns an empty string if the request is anonymous.
*/
func Subject(request *http.Request) string {
	return ctxutil.GetSubject(request.Context())
}

/*
RequiredSubject ensures the request carries an authenticated user ID.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredSubject(request *http.Request) (string, error) {
	subject := ctxutil.GetSubject(request.Context())
	if subject == "" {
		return "", apperr.Unauthorized("Authentication required")
	}
	return subject, nil
}

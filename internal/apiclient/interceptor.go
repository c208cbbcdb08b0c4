// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package apiclient

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/platform/sec"
)

// # Request Stage

// mintingEndpointPrefix marks the URLs that must never carry the stored
// credential: the endpoints that mint it. Other auth routes (profile) require
// the bearer header like any protected resource.
const mintingEndpointPrefix = "/api/auth/sign-"

// ownerScopedPattern matches owner-scoped resource paths and captures the
// owning user's path segment, e.g. /api/{userId}/tasks/{id}.
var ownerScopedPattern = regexp.MustCompile(`/api/([^/]+)/tasks`)

/*
interceptRequest applies the request stage to a pending request.

Flow:
 1. Read the current credential from the store (re-read per call, never
    cached across an operation).
 2. Attach "Authorization: Bearer <token>" unless the target is an auth
    endpoint.
 3. On owner-scoped URLs, compare the owner path segment against the token
    subject. A mismatch fails the request before dispatch.
 4. Default mutating requests without an explicit content type to JSON.

Returns:
  - error: [apperr.IdentityMismatch] on owner/subject disagreement
*/
func (client *Client) interceptRequest(ctx context.Context, request *http.Request) error {
	credential := client.store.Get(ctx)
	path := request.URL.Path

	// 1. Credential attachment. Minting endpoints issue tokens; sending a
	// stale one along would let an expired session mask a fresh login.
	if credential != nil && !isMintingEndpoint(path) {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+credential.Token)
	}

	// 2. Owner/subject consistency. The subject embedded in the token payload
	// is authoritative, not the store's userId field.
	if owner := ownerFromPath(path); owner != "" && credential != nil {
		subject := sec.ExtractUserID(credential.Token)
		if subject == "" || subject != owner {
			return apperr.IdentityMismatch(owner, subject)
		}
	}

	// 3. Content type default for mutating methods.
	switch request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if request.Header.Get(constants.HeaderContentType) == "" {
			request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
		}
	}

	// 4. Correlation ID for log tracing across client and backend.
	if request.Header.Get(constants.HeaderXRequestID) == "" {
		request.Header.Set(constants.HeaderXRequestID, requestID())
	}

	return nil
}

// isMintingEndpoint reports whether the path issues credentials.
func isMintingEndpoint(path string) bool {
	return strings.HasPrefix(path, mintingEndpointPrefix)
}

// ownerFromPath extracts the owning user's path segment from an owner-scoped
// URL. Returns "" when the path is not owner-scoped.
func ownerFromPath(path string) string {
	match := ownerScopedPattern.FindStringSubmatch(path)
	if match == nil {
		return ""
	}
	return match[1]
}

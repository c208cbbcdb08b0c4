// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package sec provides client-side credential introspection.

It decodes the payload of a bearer token and extracts the claims the client
relies on (subject, expiry, role) WITHOUT verifying the signature. Signature
verification is the backend's job; the client only needs to read what the
token says about itself.

Architecture:

  - Decoding: base64url decode of the middle segment via the jwt library's
    unverified parser.
  - Failure policy: introspection never returns an error and never panics.
    Malformed input yields nil, an absent claim yields the zero value, and an
    unknown expiry is treated as expired.

Callers must treat nil as "claim not present", not as a failure.
*/
package sec

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Claim Names

const (
	// ClaimUserID is the primary subject claim minted by the backend.
	ClaimUserID = "user_id"

	// ClaimRole is the single-role claim. ClaimRoles is the list variant
	// some issuers use instead.
	ClaimRole  = "role"
	ClaimRoles = "roles"
)

// parser decodes claims without signature verification. Shared and stateless.
var parser = jwt.NewParser()

// DecodePayload base64url-decodes the middle segment of a three-segment token
// and parses it as JSON claims. It returns nil on any malformed input (wrong
// segment count, bad base64, non-parseable content).
func DecodePayload(token string) map[string]any {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// ExtractUserID returns the payload's user_id claim, falling back to the
// registered sub claim when user_id is absent. Returns "" when neither is
// present or the token is malformed.
func ExtractUserID(token string) string {
	payload := DecodePayload(token)
	if payload == nil {
		return ""
	}
	if id, ok := payload[ClaimUserID].(string); ok && id != "" {
		return id
	}
	if sub, ok := payload["sub"].(string); ok {
		return sub
	}
	return ""
}

// ExtractExpiry returns the payload's exp claim converted from seconds to
// epoch milliseconds. Returns 0 when the claim is absent or unreadable.
func ExtractExpiry(token string) int64 {
	claims := jwt.MapClaims(DecodePayload(token))
	if claims == nil {
		return 0
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return 0
	}
	return expiresAt.UnixMilli()
}

// ExtractRole returns the payload's role claim, or the first element of a
// roles array when the single-role claim is absent. Returns "" otherwise.
func ExtractRole(token string) string {
	payload := DecodePayload(token)
	if payload == nil {
		return ""
	}
	if role, ok := payload[ClaimRole].(string); ok && role != "" {
		return role
	}
	if roles, ok := payload[ClaimRoles].([]any); ok && len(roles) > 0 {
		if first, ok := roles[0].(string); ok {
			return first
		}
	}
	return ""
}

// Expired reports whether the token's embedded expiry has passed. A token
// whose expiry cannot be determined counts as expired.
func Expired(token string) bool {
	expiryMs := ExtractExpiry(token)
	if expiryMs == 0 {
		return true
	}
	return time.Now().UnixMilli() >= expiryMs
}

// HasRole reports whether the token carries the given role.
func HasRole(token, roleName string) bool {
	return ExtractRole(token) == roleName
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package constants provides centralized, immutable values for the entire client.

It defines default timeouts, storage keys, and cross-cutting header names that
are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the gateway HTTP server.
  - Credential Storage: The fixed key under which the credential record lives.
  - Transport: Header names and the session cookie used for page-level gating.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "taskdeck-webapp"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Credential Storage

const (
	// TokenStorageKey is the fixed key under which the credential record is
	// persisted, both in the file store's JSON document and the Redis store.
	TokenStorageKey = "auth_token"

	// ExpiryThreshold is the window before expiry in which a credential is
	// reported as about to expire.
	ExpiryThreshold = 5 * time.Minute
)

// # Transport

const (
	// SessionCookieName is the cookie whose presence the route guard checks.
	// The guard never reads its value.
	SessionCookieName = "taskdeck_session"

	// HeaderAuthorization is the header carrying the bearer credential.
	HeaderAuthorization = "Authorization"

	// HeaderXRequestID is the correlation ID header.
	HeaderXRequestID = "X-Request-ID"

	// HeaderContentType is the content negotiation header.
	HeaderContentType = "Content-Type"

	// ContentTypeJSON is the default content type for mutating requests.
	ContentTypeJSON = "application/json"

	// HeaderXRealIP and HeaderXForwardedFor identify the client behind proxies.
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"

	// HeaderOrigin is checked by the CORS middleware.
	HeaderOrigin = "Origin"
)

// # Throttling

const (
	// DefaultClientRPS caps outgoing requests per second from the API client.
	DefaultClientRPS = 50.0

	// DefaultClientBurst is the token bucket burst for the client throttle.
	DefaultClientBurst = 25

	// DefaultRateLimitRPS caps inbound gateway requests per second per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the token bucket burst per IP.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often idle limiter entries are swept.
	RateLimitCleanupInterval = 5 * time.Minute

	// RateLimitClientTTL is how long an idle IP keeps its limiter entry.
	RateLimitClientTTL = 10 * time.Minute
)

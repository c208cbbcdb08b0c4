// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

// Package ctxkey defines the private key types used to store request-scoped
// values in [context.Context]. Keeping them in one package prevents key
// collisions between layers.
package ctxkey

// Key is the unexported type for all context keys in Taskdeck.
type Key int

const (
	// KeyRequestID carries the correlation ID attached to every request.
	KeyRequestID Key = iota

	// KeyLogger carries the request-scoped structured logger.
	KeyLogger

	// KeySubject carries the authenticated user ID (token subject).
	KeySubject
)

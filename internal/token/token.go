// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package token implements the credential store: persistence and retrieval of
the bearer credential and its metadata.

It is a dumb, expiry-aware cache. No network calls and no cryptographic
verification happen here; the store only answers "what credential do I hold
and is it still usable".

Architecture:

  - Credential: The persisted record {token, userId, expiresAt}.
  - Store: Abstracted interface with in-memory, file, and Redis backends.
  - Check-and-purge: Every read re-validates the record. A partial or expired
    record is removed on sight and never returned, not even once.

Stores are explicitly constructed and injected into the session controller
and the API client at startup. There is no package-level singleton, so tests
can substitute isolated instances.
*/
package token

import (
	"context"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/platform/sec"
)

// # Credential Record

// Credential is the persisted bearer token plus derived metadata.
//
// The record is either fully present (all three fields populated) or treated
// as absent: stores purge partial records on read.
type Credential struct {
	// Token is the opaque signed string, structurally three dot-separated
	// segments. It is not verified client-side.
	Token string `json:"token"`

	// UserID is the subject identifier. The authoritative value is the one
	// embedded inside the token payload, never one supplied by UI code.
	UserID string `json:"userId"`

	// ExpiresAt is the absolute epoch-millisecond expiry computed at save
	// time. See [expiresAt] for how it is reconciled with the token's own
	// exp claim.
	ExpiresAt int64 `json:"expiresAt"`
}

// complete reports whether every required field is populated.
func (c *Credential) complete() bool {
	return c != nil && c.Token != "" && c.UserID != "" && c.ExpiresAt != 0
}

// expired reports whether the record's expiry has passed.
func (c *Credential) expired(now time.Time) bool {
	return now.UnixMilli() >= c.ExpiresAt
}

// WellFormed reports whether the token splits into exactly three non-empty
// segments on ".".
func (c *Credential) WellFormed() bool {
	if c == nil {
		return false
	}
	segments := strings.Split(c.Token, ".")
	if len(segments) != 3 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
	}
	return true
}

// # Store Contract

// Store defines the data access contract for the credential record.
//
// Reads never fail loudly: a store degrades to nil/false on any problem so
// that callers can treat "no usable credential" uniformly.
type Store interface {

	// Save persists a credential, overwriting any existing record. The expiry
	// is computed from the server-declared lifetime, clamped to the token's
	// own exp claim when that claim ends earlier.
	Save(ctx context.Context, tokenString, userID string, lifetime time.Duration) error

	// Get returns the record iff it is complete and unexpired. Otherwise it
	// purges the record and returns nil. The check-and-purge happens on every
	// read.
	Get(ctx context.Context) *Credential

	// Clear removes any record. Idempotent; a no-op when absent.
	Clear(ctx context.Context)

	// IsValid reports whether a complete, unexpired, well-formed record exists.
	IsValid(ctx context.Context) bool

	// AboutToExpire reports whether a valid record exists that expires within
	// the configured threshold.
	AboutToExpire(ctx context.Context) bool
}

// # Store Options

// Option adjusts behavior shared by every store backend.
type Option func(*settings)

// settings carries the backend-independent tunables.
type settings struct {
	threshold time.Duration
}

// applySettings resolves the option list against the defaults.
func applySettings(opts []Option) settings {
	applied := settings{threshold: constants.ExpiryThreshold}
	for _, opt := range opts {
		opt(&applied)
	}
	return applied
}

// WithExpiryThreshold overrides the window before expiry in which
// [Store.AboutToExpire] reports true. The default is [constants.ExpiryThreshold].
func WithExpiryThreshold(threshold time.Duration) Option {
	return func(s *settings) { s.threshold = threshold }
}

// # Shared Logic

// expiresAt computes the absolute expiry for a new record.
//
// Two expiry sources exist and can disagree: the locally assumed lifetime and
// the token's embedded exp claim. The earlier of the two wins, so the store
// never reports a credential as live after the token itself has lapsed.
func expiresAt(tokenString string, lifetime time.Duration, now time.Time) int64 {
	assumed := now.Add(lifetime).UnixMilli()
	if claimed := sec.ExtractExpiry(tokenString); claimed != 0 && claimed < assumed {
		return claimed
	}
	return assumed
}

// usable validates a loaded record. It returns nil when the record must be
// purged.
func usable(record *Credential, now time.Time) *Credential {
	if !record.complete() || record.expired(now) {
		return nil
	}
	return record
}

// isValid implements the Store.IsValid contract on top of Get.
func isValid(record *Credential) bool {
	return record.WellFormed()
}

// aboutToExpire implements the Store.AboutToExpire contract on top of Get.
func aboutToExpire(record *Credential, now time.Time, threshold time.Duration) bool {
	if record == nil {
		return false
	}
	return record.ExpiresAt-now.UnixMilli() < threshold.Milliseconds()
}

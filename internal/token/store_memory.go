// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements [Store] with an in-process record guarded by a mutex.
//
// It is the default backend for tests and for ephemeral sessions that should
// not survive a process restart.
type MemoryStore struct {
	mu       sync.Mutex
	record   *Credential
	settings settings
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{settings: applySettings(opts)}
}

/*
Save persists a credential record, overwriting any existing one.

Parameters:
  - ctx: context.Context
  - tokenString: string
  - userID: string
  - lifetime: time.Duration

Returns:
  - error: Always nil for the in-memory backend
*/
func (store *MemoryStore) Save(ctx context.Context, tokenString, userID string, lifetime time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.record = &Credential{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: expiresAt(tokenString, lifetime, time.Now()),
	}
	return nil
}

/*
Get returns the held record iff it is complete and unexpired.

Description: An incomplete or expired record is purged before returning nil,
so a subsequent Get also returns nil.
*/
func (store *MemoryStore) Get(ctx context.Context) *Credential {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.record == nil {
		return nil
	}

	record := usable(store.record, time.Now())
	if record == nil {
		store.record = nil
		return nil
	}

	// Copy so callers cannot mutate the stored record.
	copied := *record
	return &copied
}

// Clear removes any held record. Idempotent.
func (store *MemoryStore) Clear(ctx context.Context) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.record = nil
}

// IsValid reports whether a complete, unexpired, well-formed record exists.
func (store *MemoryStore) IsValid(ctx context.Context) bool {
	return isValid(store.Get(ctx))
}

// AboutToExpire reports whether the held record expires within the threshold.
func (store *MemoryStore) AboutToExpire(ctx context.Context) bool {
	return aboutToExpire(store.Get(ctx), time.Now(), store.settings.threshold)
}

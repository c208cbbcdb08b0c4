// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskdeck/taskdeck/internal/platform/constants"
)

// RedisStore implements [Store] on a Redis key with a TTL.
//
// Redis expiry is set from the same computed lifetime as the record's
// ExpiresAt field, so the record usually disappears server-side at the same
// moment the check-and-purge would discard it. The read-side check still runs
// because the two clocks can drift.
type RedisStore struct {
	client   *redis.Client
	settings settings
}

// NewRedisStore creates a Redis-backed credential store.
func NewRedisStore(client *redis.Client, opts ...Option) *RedisStore {
	return &RedisStore{client: client, settings: applySettings(opts)}
}

// key is the fixed Redis key for the single credential record.
func (store *RedisStore) key() string {
	return fmt.Sprintf("auth:credential:%s", constants.TokenStorageKey)
}

/*
Save persists a credential record, overwriting any existing one.

Parameters:
  - ctx: context.Context
  - tokenString: string
  - userID: string
  - lifetime: time.Duration

Returns:
  - error: Connectivity or encoding failures
*/
func (store *RedisStore) Save(ctx context.Context, tokenString, userID string, lifetime time.Duration) error {
	now := time.Now()
	record := &Credential{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: expiresAt(tokenString, lifetime, now),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_credential_encode_failed: %w", err)
	}

	ttl := time.Duration(record.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if err := store.client.Set(ctx, store.key(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_credential_set_failed: %w", err)
	}
	return nil
}

/*
Get returns the persisted record iff it is complete and unexpired.

Description: Degrades to nil on connectivity errors. An incomplete or expired
record is purged before returning nil.
*/
func (store *RedisStore) Get(ctx context.Context) *Credential {
	raw, err := store.client.Get(ctx, store.key()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Unreachable Redis reads as "no credential"; the caller falls
			// back to the unauthenticated path rather than crashing.
			return nil
		}
		return nil
	}

	record := &Credential{}
	if err := json.Unmarshal(raw, record); err != nil {
		store.Clear(ctx)
		return nil
	}

	if usable(record, time.Now()) == nil {
		store.Clear(ctx)
		return nil
	}
	return record
}

// Clear removes the credential key. Idempotent.
func (store *RedisStore) Clear(ctx context.Context) {
	_ = store.client.Del(ctx, store.key()).Err()
}

// IsValid reports whether a complete, unexpired, well-formed record exists.
func (store *RedisStore) IsValid(ctx context.Context) bool {
	return isValid(store.Get(ctx))
}

// AboutToExpire reports whether the persisted record expires within the threshold.
func (store *RedisStore) AboutToExpire(ctx context.Context) bool {
	return aboutToExpire(store.Get(ctx), time.Now(), store.settings.threshold)
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package token_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/token"
)

// fabricateToken builds an unsigned three-segment token with the given claims.
func fabricateToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	encode := base64.RawURLEncoding.EncodeToString
	return encode(header) + "." + encode(payload) + "." + encode([]byte("sig"))
}

// storeUnderTest builds each backend fresh for the shared behavior suite.
// The Redis backend is covered separately since it needs a live server.
func storesUnderTest(t *testing.T) map[string]token.Store {
	t.Helper()
	return map[string]token.Store{
		"memory": token.NewMemoryStore(),
		"file":   token.NewFileStore(filepath.Join(t.TempDir(), "credential.json")),
	}
}

/*
TestStore_SaveAndGet checks the round trip and the derived expiry.
*/
func TestStore_SaveAndGet(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tokenString := fabricateToken(t, map[string]any{"user_id": "u1"})

			before := time.Now().Add(30 * time.Minute).UnixMilli()
			require.NoError(t, store.Save(ctx, tokenString, "u1", 30*time.Minute))
			after := time.Now().Add(30 * time.Minute).UnixMilli()

			record := store.Get(ctx)
			require.NotNil(t, record)
			assert.Equal(t, tokenString, record.Token)
			assert.Equal(t, "u1", record.UserID)

			// Without an exp claim the expiry is now + lifetime.
			assert.GreaterOrEqual(t, record.ExpiresAt, before)
			assert.LessOrEqual(t, record.ExpiresAt, after)
		})
	}
}

/*
TestStore_ExpiryClampedToClaim verifies that a token whose exp claim ends
before the assumed lifetime wins.
*/
func TestStore_ExpiryClampedToClaim(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			claimedExp := time.Now().Add(5 * time.Minute).Unix()
			tokenString := fabricateToken(t, map[string]any{"user_id": "u1", "exp": claimedExp})

			require.NoError(t, store.Save(ctx, tokenString, "u1", 30*time.Minute))

			record := store.Get(ctx)
			require.NotNil(t, record)
			assert.Equal(t, claimedExp*1000, record.ExpiresAt)

			// Five minutes out is inside the expiry threshold.
			assert.True(t, store.AboutToExpire(ctx))
		})
	}
}

/*
TestStore_ExpiryThresholdOption honors a configured near-expiry window in
place of the default.
*/
func TestStore_ExpiryThresholdOption(t *testing.T) {
	ctx := context.Background()
	tokenString := fabricateTokenStatic()

	// The record expires in ten minutes: outside a one-minute window, inside
	// a fifteen-minute one.
	narrow := token.NewMemoryStore(token.WithExpiryThreshold(time.Minute))
	wide := token.NewMemoryStore(token.WithExpiryThreshold(15 * time.Minute))

	require.NoError(t, narrow.Save(ctx, tokenString, "u1", 10*time.Minute))
	require.NoError(t, wide.Save(ctx, tokenString, "u1", 10*time.Minute))

	assert.False(t, narrow.AboutToExpire(ctx))
	assert.True(t, wide.AboutToExpire(ctx))
}

/*
TestStore_ExpiredRecordPurgedPermanently checks the check-and-purge contract:
an expired record is never returned, not even once, and the purge sticks.
*/
func TestStore_ExpiredRecordPurgedPermanently(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			expired := fabricateToken(t, map[string]any{
				"user_id": "u1",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			})
			require.NoError(t, store.Save(ctx, expired, "u1", 30*time.Minute))

			assert.Nil(t, store.Get(ctx))
			assert.Nil(t, store.Get(ctx))
			assert.False(t, store.IsValid(ctx))
			assert.False(t, store.AboutToExpire(ctx))
		})
	}
}

/*
TestStore_Clear checks idempotent removal.
*/
func TestStore_Clear(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tokenString := fabricateToken(t, map[string]any{"user_id": "u1"})

			require.NoError(t, store.Save(ctx, tokenString, "u1", time.Hour))
			require.NotNil(t, store.Get(ctx))

			store.Clear(ctx)
			assert.Nil(t, store.Get(ctx))

			// Clearing again must not blow up.
			store.Clear(ctx)
			assert.Nil(t, store.Get(ctx))
		})
	}
}

/*
TestStore_IsValid_Malformed checks that structural token validation rejects
anything but three non-empty segments.
*/
func TestStore_IsValid_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		isValid bool
	}{
		{"well_formed", fabricateTokenStatic(), true},
		{"two_segments", "aa.bb", false},
		{"empty_segment", "aa..cc", false},
		{"no_dots", "opaque-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := token.NewMemoryStore()
			require.NoError(t, store.Save(ctx, tt.token, "u1", time.Hour))
			assert.Equal(t, tt.isValid, store.IsValid(ctx))
		})
	}
}

// fabricateTokenStatic avoids threading *testing.T through the table above.
func fabricateTokenStatic() string {
	encode := base64.RawURLEncoding.EncodeToString
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, _ := json.Marshal(map[string]string{"user_id": "u1"})
	return encode(header) + "." + encode(payload) + "." + encode([]byte("sig"))
}

/*
TestFileStore_CorruptDocumentPurged checks that an unreadable document is
removed on read.
*/
func TestFileStore_CorruptDocumentPurged(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := token.NewFileStore(path)
	assert.Nil(t, store.Get(ctx))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

/*
TestFileStore_Permissions checks the document is written owner-only.
*/
func TestFileStore_Permissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credential.json")

	store := token.NewFileStore(path)
	tokenString := fabricateTokenStatic()
	require.NoError(t, store.Save(ctx, tokenString, "u1", time.Hour))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

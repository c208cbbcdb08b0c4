// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package sec_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/platform/sec"
)

// fabricateToken builds an unsigned three-segment token carrying the given
// claims. Introspection never verifies signatures, so a dummy one suffices.
func fabricateToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	encode := base64.RawURLEncoding.EncodeToString
	return encode(header) + "." + encode(payload) + "." + encode([]byte("sig"))
}

/*
TestDecodePayload_Malformed verifies the never-error policy on bad input.
*/
func TestDecodePayload_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two_segments", "abc.def"},
		{"four_segments", "a.b.c.d"},
		{"bad_base64_payload", "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.sig"},
		{"payload_not_json", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, sec.DecodePayload(tt.token))
		})
	}
}

/*
TestDecodePayload_Valid checks that claims round-trip through decoding.
*/
func TestDecodePayload_Valid(t *testing.T) {
	token := fabricateToken(t, map[string]any{"user_id": "u1", "role": "member"})

	payload := sec.DecodePayload(token)
	require.NotNil(t, payload)
	assert.Equal(t, "u1", payload["user_id"])
	assert.Equal(t, "member", payload["role"])
}

/*
TestExtractUserID covers the user_id > sub precedence and the "" fallback.
*/
func TestExtractUserID(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   string
	}{
		{"user_id_only", map[string]any{"user_id": "u1"}, "u1"},
		{"sub_only", map[string]any{"sub": "s1"}, "s1"},
		{"user_id_wins_over_sub", map[string]any{"user_id": "u1", "sub": "s1"}, "u1"},
		{"empty_user_id_falls_back", map[string]any{"user_id": "", "sub": "s1"}, "s1"},
		{"neither_present", map[string]any{"exp": 123}, ""},
		{"non_string_user_id", map[string]any{"user_id": 42}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := fabricateToken(t, tt.claims)
			assert.Equal(t, tt.want, sec.ExtractUserID(token))
		})
	}

	t.Run("malformed_token", func(t *testing.T) {
		assert.Equal(t, "", sec.ExtractUserID("not-a-token"))
	})
}

/*
TestExtractRole covers the role > roles[0] precedence.
*/
func TestExtractRole(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   string
	}{
		{"single_role", map[string]any{"role": "admin"}, "admin"},
		{"roles_array_fallback", map[string]any{"roles": []string{"member", "admin"}}, "member"},
		{"role_wins_over_roles", map[string]any{"role": "admin", "roles": []string{"member"}}, "admin"},
		{"no_role_claims", map[string]any{"user_id": "u1"}, ""},
		{"empty_roles_array", map[string]any{"roles": []string{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := fabricateToken(t, tt.claims)
			assert.Equal(t, tt.want, sec.ExtractRole(token))
		})
	}
}

/*
TestExtractExpiry verifies seconds-to-milliseconds conversion and the zero
fallback.
*/
func TestExtractExpiry(t *testing.T) {
	expSeconds := time.Now().Add(time.Hour).Unix()
	token := fabricateToken(t, map[string]any{"exp": expSeconds})

	assert.Equal(t, expSeconds*1000, sec.ExtractExpiry(token))
	assert.Zero(t, sec.ExtractExpiry(fabricateToken(t, map[string]any{"user_id": "u1"})))
	assert.Zero(t, sec.ExtractExpiry("garbage"))
}

/*
TestExpired treats an unknown expiry as expired.
*/
func TestExpired(t *testing.T) {
	future := fabricateToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})
	past := fabricateToken(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	noExpiry := fabricateToken(t, map[string]any{"user_id": "u1"})

	assert.False(t, sec.Expired(future))
	assert.True(t, sec.Expired(past))
	assert.True(t, sec.Expired(noExpiry))
	assert.True(t, sec.Expired("garbage"))
}

/*
TestHasRole checks the role membership helper.
*/
func TestHasRole(t *testing.T) {
	token := fabricateToken(t, map[string]any{"role": string(sec.RoleAdmin)})

	assert.True(t, sec.HasRole(token, string(sec.RoleAdmin)))
	assert.False(t, sec.HasRole(token, string(sec.RoleMember)))
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package mockapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/backend/mockapi"
)

type fixture struct {
	server *httptest.Server
	mock   *mockapi.Server
	userID string
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := mockapi.NewServer("test-secret", 30*time.Minute, logger)

	userID, err := mock.SeedAccount("demo@taskdeck.app", "demo-password", "demo")
	require.NoError(t, err)
	minted, err := mock.MintToken(userID, time.Hour)
	require.NoError(t, err)

	server := httptest.NewServer(mock.Router())
	t.Cleanup(server.Close)

	return &fixture{server: server, mock: mock, userID: userID, token: minted}
}

func (f *fixture) request(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return response
}

func decodeJSON(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = response.Body.Close() }()

	decoded := map[string]any{}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	return decoded
}

/*
TestSignIn_MintsVerifiableToken checks the credential endpoint's raw contract.
*/
func TestSignIn_MintsVerifiableToken(t *testing.T) {
	f := newFixture(t)

	response := f.request(t, http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{
		"email":    "demo@taskdeck.app",
		"password": "demo-password",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeJSON(t, response)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])

	// The credential payload is raw, never wrapped in the data envelope.
	_, wrapped := body["data"]
	assert.False(t, wrapped)
}

/*
TestSignIn_BadPassword rejects with 401.
*/
func TestSignIn_BadPassword(t *testing.T) {
	f := newFixture(t)

	response := f.request(t, http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{
		"email":    "demo@taskdeck.app",
		"password": "wrong",
	})
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

/*
TestSignUp_DuplicateEmail conflicts with 409.
*/
func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	payload := map[string]string{
		"email":    "demo@taskdeck.app",
		"password": "whatever-else",
		"username": "dupe",
	}
	response := f.request(t, http.MethodPost, "/api/auth/sign-up/email", "", payload)
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusConflict, response.StatusCode)
}

/*
TestTasks_OwnerMismatch rejects access to another user's collection with 403.
*/
func TestTasks_OwnerMismatch(t *testing.T) {
	f := newFixture(t)

	response := f.request(t, http.MethodGet, "/api/somebody-else/tasks/", f.token, nil)
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, response.StatusCode)
}

/*
TestTasks_RequireBearer rejects anonymous task access with 401.
*/
func TestTasks_RequireBearer(t *testing.T) {
	f := newFixture(t)

	response := f.request(t, http.MethodGet, "/api/"+f.userID+"/tasks/", "", nil)
	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

/*
TestTasks_CRUDFlow exercises create, list, complete, and delete end to end.
*/
func TestTasks_CRUDFlow(t *testing.T) {
	f := newFixture(t)
	base := "/api/" + f.userID + "/tasks/"

	// Create, wrapped in the data envelope.
	created := decodeJSON(t, f.request(t, http.MethodPost, base, f.token, map[string]string{
		"title": "Buy milk",
	}))
	data, ok := created["data"].(map[string]any)
	require.True(t, ok, "task payloads must be enveloped")
	taskID, _ := data["id"].(string)
	require.NotEmpty(t, taskID)
	assert.Equal(t, false, data["completed"])

	// List shows it.
	listed := decodeJSON(t, f.request(t, http.MethodGet, base, f.token, nil))
	items, ok := listed["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)

	// Complete it.
	completed := decodeJSON(t, f.request(t, http.MethodPatch, base+taskID+"/complete", f.token, map[string]bool{
		"completed": true,
	}))
	completedData, ok := completed["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, completedData["completed"])

	// Delete returns the raw success body.
	deleted := decodeJSON(t, f.request(t, http.MethodDelete, base+taskID, f.token, nil))
	assert.Equal(t, true, deleted["success"])

	// Gone now.
	missing := f.request(t, http.MethodGet, base+taskID, f.token, nil)
	defer func() { _ = missing.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

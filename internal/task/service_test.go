// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package task_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/token"
)

// stubSession reports a fixed session snapshot.
type stubSession struct {
	state session.State
}

func (s *stubSession) State() session.State { return s.state }

func authenticatedSession(userID string) *stubSession {
	return &stubSession{state: session.State{
		Credential:      &token.Credential{Token: "a.b.c", UserID: userID, ExpiresAt: 1},
		IsAuthenticated: true,
	}}
}

// stubAPI implements task.API over an in-memory list with failure injection.
type stubAPI struct {
	mu           sync.Mutex
	tasks        []apiclient.Task
	completeErr  error
	completeHook func()
	listErr      error
}

func (a *stubAPI) Tasks(ctx context.Context, userID string) ([]apiclient.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	snapshot := make([]apiclient.Task, len(a.tasks))
	copy(snapshot, a.tasks)
	return snapshot, nil
}

func (a *stubAPI) Task(ctx context.Context, userID, taskID string) (*apiclient.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range a.tasks {
		if item.ID == taskID {
			found := item
			return &found, nil
		}
	}
	return nil, apperr.HTTP(404, "Task not found", nil)
}

func (a *stubAPI) CreateTask(ctx context.Context, userID string, input apiclient.CreateTaskInput) (*apiclient.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	created := apiclient.Task{ID: "t-new", Title: input.Title, Description: input.Description, UserID: userID}
	a.tasks = append(a.tasks, created)
	return &created, nil
}

func (a *stubAPI) UpdateTask(ctx context.Context, userID, taskID string, input apiclient.UpdateTaskInput) (*apiclient.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for index := range a.tasks {
		if a.tasks[index].ID == taskID {
			if input.Title != nil {
				a.tasks[index].Title = *input.Title
			}
			if input.Completed != nil {
				a.tasks[index].Completed = *input.Completed
			}
			found := a.tasks[index]
			return &found, nil
		}
	}
	return nil, apperr.HTTP(404, "Task not found", nil)
}

func (a *stubAPI) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for index := range a.tasks {
		if a.tasks[index].ID == taskID {
			a.tasks = append(a.tasks[:index], a.tasks[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (a *stubAPI) CompleteTask(ctx context.Context, userID, taskID string, completed bool) (*apiclient.Task, error) {
	if a.completeHook != nil {
		a.completeHook()
	}
	if a.completeErr != nil {
		return nil, a.completeErr
	}
	return a.UpdateTask(ctx, userID, taskID, apiclient.UpdateTaskInput{Completed: &completed})
}

func newService(api *stubAPI, sess task.Session) *task.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return task.NewService(api, sess, logger)
}

func seededAPI() *stubAPI {
	return &stubAPI{tasks: []apiclient.Task{
		{ID: "t1", Title: "Buy milk", Completed: false, UserID: "u1"},
		{ID: "t2", Title: "Walk dog", Completed: true, UserID: "u1"},
	}}
}

/*
TestService_Refresh replaces the local list from the backend.
*/
func TestService_Refresh(t *testing.T) {
	service := newService(seededAPI(), authenticatedSession("u1"))

	require.NoError(t, service.Refresh(context.Background()))
	assert.Len(t, service.Tasks(), 2)
}

/*
TestService_Refresh_Unauthenticated empties the list without a network call.
*/
func TestService_Refresh_Unauthenticated(t *testing.T) {
	api := seededAPI()
	api.listErr = errors.New("must not be called")
	service := newService(api, &stubSession{})

	require.NoError(t, service.Refresh(context.Background()))
	assert.Empty(t, service.Tasks())
}

/*
TestService_Refresh_FailureKeepsList keeps the stale list when the fetch fails.
*/
func TestService_Refresh_FailureKeepsList(t *testing.T) {
	api := seededAPI()
	service := newService(api, authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	api.mu.Lock()
	api.listErr = apperr.Network(errors.New("refused"))
	api.mu.Unlock()

	err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, service.Tasks(), 2)
}

/*
TestService_Create appends via the backend and refetches.
*/
func TestService_Create(t *testing.T) {
	service := newService(seededAPI(), authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	created, err := service.Create(context.Background(), apiclient.CreateTaskInput{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "t-new", created.ID)
	assert.Len(t, service.Tasks(), 3)
}

/*
TestService_Delete removes locally only after backend confirmation.
*/
func TestService_Delete(t *testing.T) {
	service := newService(seededAPI(), authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	require.NoError(t, service.Delete(context.Background(), "t1"))
	remaining := service.Tasks()
	require.Len(t, remaining, 1)
	assert.Equal(t, "t2", remaining[0].ID)
}

/*
TestService_Unauthenticated rejects every mutation with an auth error.
*/
func TestService_Unauthenticated(t *testing.T) {
	service := newService(seededAPI(), &stubSession{})
	ctx := context.Background()

	_, err := service.Create(ctx, apiclient.CreateTaskInput{Title: "x"})
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)

	err = service.ToggleCompletion(ctx, "t1")
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)
}

// # Optimistic Toggle

/*
TestService_Toggle_Commit verifies the happy path: immediate local flip, then
commit on the server response.
*/
func TestService_Toggle_Commit(t *testing.T) {
	api := seededAPI()
	service := newService(api, authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	// Observe the optimistic flip while the server call is in flight.
	var midFlight bool
	api.completeHook = func() {
		for _, item := range service.Tasks() {
			if item.ID == "t1" {
				midFlight = item.Completed
			}
		}
	}

	require.NoError(t, service.ToggleCompletion(context.Background(), "t1"))

	assert.True(t, midFlight, "local value must flip before the server responds")
	assert.Equal(t, task.ToggleCommitted, service.ToggleState("t1"))

	for _, item := range service.Tasks() {
		if item.ID == "t1" {
			assert.True(t, item.Completed)
		}
	}
}

/*
TestService_Toggle_Rollback verifies the failure path: the pre-toggle value is
restored exactly and the error is surfaced.
*/
func TestService_Toggle_Rollback(t *testing.T) {
	api := seededAPI()
	api.completeErr = apperr.Network(errors.New("refused"))
	service := newService(api, authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	// t2 starts completed; the optimistic flip goes false, then rolls back.
	err := service.ToggleCompletion(context.Background(), "t2")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNetwork, apperr.As(err).Code)

	assert.Equal(t, task.ToggleRolledBack, service.ToggleState("t2"))
	for _, item := range service.Tasks() {
		if item.ID == "t2" {
			assert.True(t, item.Completed, "rollback must restore the exact pre-toggle value")
		}
	}
}

/*
TestService_Toggle_SupersededResponseDiscarded interleaves two toggles on the
same task and lets the older response land first. The older response must not
resolve the newer toggle's pending record; the newer toggle's own response
decides the final value.
*/
func TestService_Toggle_SupersededResponseDiscarded(t *testing.T) {
	api := seededAPI()
	service := newService(api, authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	var (
		hookMu sync.Mutex
		calls  int
	)
	firstIn := make(chan struct{})
	secondIn := make(chan struct{})
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	api.completeHook = func() {
		hookMu.Lock()
		calls++
		call := calls
		hookMu.Unlock()
		switch call {
		case 1:
			close(firstIn)
			<-releaseFirst
		case 2:
			close(secondIn)
			<-releaseSecond
		}
	}

	// First toggle flips t1 false->true and parks in flight.
	firstDone := make(chan error, 1)
	go func() { firstDone <- service.ToggleCompletion(context.Background(), "t1") }()
	<-firstIn

	// Second toggle flips t1 back true->false and also parks in flight.
	secondDone := make(chan error, 1)
	go func() { secondDone <- service.ToggleCompletion(context.Background(), "t1") }()
	<-secondIn

	// The older response lands while the newer toggle is still pending.
	close(releaseFirst)
	require.NoError(t, <-firstDone)
	assert.Equal(t, task.TogglePending, service.ToggleState("t1"),
		"the older response must not resolve the newer toggle")

	close(releaseSecond)
	require.NoError(t, <-secondDone)
	assert.Equal(t, task.ToggleCommitted, service.ToggleState("t1"))

	for _, item := range service.Tasks() {
		if item.ID == "t1" {
			assert.False(t, item.Completed, "the newer toggle's target must win")
		}
	}
}

/*
TestService_Toggle_UnknownTask rejects a toggle for a task not in the list.
*/
func TestService_Toggle_UnknownTask(t *testing.T) {
	service := newService(seededAPI(), authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	err := service.ToggleCompletion(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
	assert.Empty(t, service.ToggleState("missing"))
}

/*
TestService_Update patches the local copy with the server's response.
*/
func TestService_Update(t *testing.T) {
	service := newService(seededAPI(), authenticatedSession("u1"))
	require.NoError(t, service.Refresh(context.Background()))

	title := "Buy oat milk"
	updated, err := service.Update(context.Background(), "t1", apiclient.UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	for _, item := range service.Tasks() {
		if item.ID == "t1" {
			assert.Equal(t, title, item.Title)
		}
	}
}

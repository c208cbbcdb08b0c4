// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package task maintains the local task list on top of the API client.

It mirrors the backend's owner-scoped task collection and applies optimistic
updates: a completion toggle flips the local value immediately, then
reconciles with the server response or rolls back to the exact pre-toggle
value on failure.

# Optimistic Toggle

Each toggle moves through an explicit status — pending, committed, or
rolled-back — rather than a bare boolean flip. A server response that lands
after its toggle was rolled back is discarded, so the local/remote dual-write
on the completed field is never lost or duplicated.
*/
package task

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/session"
)

// # Toggle Lifecycle

// ToggleStatus tracks an optimistic completion toggle through its lifecycle.
type ToggleStatus string

const (
	// TogglePending: the local value is flipped, the server call is in flight.
	TogglePending ToggleStatus = "pending"

	// ToggleCommitted: the server confirmed; local and remote agree.
	ToggleCommitted ToggleStatus = "committed"

	// ToggleRolledBack: the server call failed; the pre-toggle value was
	// restored exactly.
	ToggleRolledBack ToggleStatus = "rolled_back"
)

// # Collaborator Contracts

// API defines the backend calls the service depends on.
type API interface {
	Tasks(ctx context.Context, userID string) ([]apiclient.Task, error)
	Task(ctx context.Context, userID, taskID string) (*apiclient.Task, error)
	CreateTask(ctx context.Context, userID string, input apiclient.CreateTaskInput) (*apiclient.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, input apiclient.UpdateTaskInput) (*apiclient.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)
	CompleteTask(ctx context.Context, userID, taskID string, completed bool) (*apiclient.Task, error)
}

// Session provides the current session snapshot. Satisfied by
// [session.Controller].
type Session interface {
	State() session.State
}

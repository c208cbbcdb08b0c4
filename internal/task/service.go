// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/platform/apperr"
)

// # Definitions & Constructors

// toggleRecord tracks one optimistic completion toggle.
type toggleRecord struct {
	status   ToggleStatus
	previous bool
}

// Service maintains the local task list for the authenticated user.
//
// It is safe for concurrent use; the lock guards the list and toggle records
// and is never held across a network call.
type Service struct {
	mu      sync.Mutex
	tasks   []apiclient.Task
	toggles map[string]*toggleRecord

	api     API
	session Session
	log     *slog.Logger
}

// NewService constructs a task [Service] with its dependencies.
func NewService(api API, sess Session, logger *slog.Logger) *Service {
	return &Service{
		toggles: map[string]*toggleRecord{},
		api:     api,
		session: sess,
		log:     logger,
	}
}

// Tasks returns a snapshot of the local task list.
func (service *Service) Tasks() []apiclient.Task {
	service.mu.Lock()
	defer service.mu.Unlock()
	snapshot := make([]apiclient.Task, len(service.tasks))
	copy(snapshot, service.tasks)
	return snapshot
}

// ToggleState reports the status of the last completion toggle for a task.
// Returns "" when the task was never toggled.
func (service *Service) ToggleState(taskID string) ToggleStatus {
	service.mu.Lock()
	defer service.mu.Unlock()
	if record, ok := service.toggles[taskID]; ok {
		return record.status
	}
	return ""
}

// # List Operations

/*
Refresh replaces the local list with the backend's.

Description: When unauthenticated the list empties without a network call.
On fetch failure the existing list is KEPT, so a transient auth issue does
not present as an empty task list.

Returns:
  - error: Normalized [apperr.AppError]
*/
func (service *Service) Refresh(ctx context.Context) error {
	userID, err := service.currentUserID()
	if err != nil {
		service.replace(nil)
		return nil
	}

	fetched, err := service.api.Tasks(ctx, userID)
	if err != nil {
		service.log.Warn("task_refresh_failed", slog.Any("error", err))
		return err
	}

	service.replace(fetched)
	return nil
}

/*
Create adds a task and refetches the list for consistency.

Parameters:
  - ctx: context.Context
  - input: apiclient.CreateTaskInput

Returns:
  - *apiclient.Task: The created task
  - error: Normalized [apperr.AppError]
*/
func (service *Service) Create(ctx context.Context, input apiclient.CreateTaskInput) (*apiclient.Task, error) {
	userID, err := service.currentUserID()
	if err != nil {
		return nil, err
	}

	created, err := service.api.CreateTask(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	// Refetch rather than append: the backend assigns ID and timestamps.
	if err := service.Refresh(ctx); err != nil {
		service.log.Warn("task_list_refetch_after_create_failed", slog.Any("error", err))
	}
	return created, nil
}

// Update replaces the mutable fields of a task and patches the local copy.
func (service *Service) Update(ctx context.Context, taskID string, input apiclient.UpdateTaskInput) (*apiclient.Task, error) {
	userID, err := service.currentUserID()
	if err != nil {
		return nil, err
	}

	updated, err := service.api.UpdateTask(ctx, userID, taskID, input)
	if err != nil {
		return nil, err
	}

	service.patch(*updated)
	return updated, nil
}

// Delete removes a task locally once the backend confirms.
func (service *Service) Delete(ctx context.Context, taskID string) error {
	userID, err := service.currentUserID()
	if err != nil {
		return err
	}

	confirmed, err := service.api.DeleteTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	kept := service.tasks[:0]
	for _, item := range service.tasks {
		if item.ID != taskID {
			kept = append(kept, item)
		}
	}
	service.tasks = kept
	return nil
}

// # Optimistic Completion Toggle

/*
ToggleCompletion optimistically flips a task's completed flag.

Description: The local value flips immediately and the toggle enters the
pending status. The server response commits it; a failure restores exactly
the pre-toggle value, marks the toggle rolled back, and surfaces the error.
A response landing after its toggle was rolled back or superseded by a newer
toggle on the same task is discarded.

Parameters:
  - ctx: context.Context
  - taskID: string

Returns:
  - error: Normalized [apperr.AppError]
*/
func (service *Service) ToggleCompletion(ctx context.Context, taskID string) error {
	userID, err := service.currentUserID()
	if err != nil {
		return err
	}

	// Phase 1: local flip under the lock.
	service.mu.Lock()
	current, found := service.find(taskID)
	if !found {
		service.mu.Unlock()
		return apperr.ValidationError("Task not found")
	}
	previous := current.Completed
	target := !previous
	record := &toggleRecord{status: TogglePending, previous: previous}
	service.toggles[taskID] = record
	service.setCompleted(taskID, target)
	service.mu.Unlock()

	// Phase 2: server call outside the lock.
	confirmed, err := service.api.CompleteTask(ctx, userID, taskID, target)

	// Phase 3: reconcile under the lock.
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.toggles[taskID] != record || record.status != TogglePending {
		// A newer toggle owns the ledger entry, or a concurrent operation
		// already resolved this one; discard the response.
		return nil
	}

	if err != nil {
		record.status = ToggleRolledBack
		service.setCompleted(taskID, record.previous)
		service.log.Warn("task_toggle_rolled_back",
			slog.String("task_id", taskID),
			slog.Any("error", err),
		)
		return err
	}

	record.status = ToggleCommitted
	service.patchLocked(*confirmed)
	return nil
}

// # Internal Helpers

// currentUserID resolves the authenticated subject from the session state.
func (service *Service) currentUserID() (string, error) {
	state := service.session.State()
	if !state.IsAuthenticated || state.Credential == nil {
		return "", apperr.Unauthorized("User not authenticated")
	}
	return state.Credential.UserID, nil
}

// replace swaps the local list.
func (service *Service) replace(tasks []apiclient.Task) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.tasks = tasks
}

// patch replaces one task in the local list.
func (service *Service) patch(updated apiclient.Task) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.patchLocked(updated)
}

// patchLocked replaces one task in the local list. Caller holds the lock.
func (service *Service) patchLocked(updated apiclient.Task) {
	for index := range service.tasks {
		if service.tasks[index].ID == updated.ID {
			service.tasks[index] = updated
			return
		}
	}
}

// find locates a task by ID. Caller holds the lock.
func (service *Service) find(taskID string) (apiclient.Task, bool) {
	for _, item := range service.tasks {
		if item.ID == taskID {
			return item, true
		}
	}
	return apiclient.Task{}, false
}

// setCompleted flips the completed flag in place. Caller holds the lock.
func (service *Service) setCompleted(taskID string, completed bool) {
	for index := range service.tasks {
		if service.tasks[index].ID == taskID {
			service.tasks[index].Completed = completed
			return
		}
	}
}

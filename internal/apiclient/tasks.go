// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// # Task Wire Types

// Task is an owner-scoped task item as the backend serves it.
//
// Ownership invariant: UserID must equal the subject embedded in the
// credential used to fetch or mutate it; the request stage enforces this
// before dispatch.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	UserID      string `json:"userId"`
}

// CreateTaskInput holds the fields for a new task.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateTaskInput holds the optional fields for a task update.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// deleteResult is the delete endpoint's response body.
type deleteResult struct {
	Success bool `json:"success"`
}

// # Task Endpoints

// tasksPath builds the owner-scoped collection path.
func tasksPath(userID string) string {
	return fmt.Sprintf("/api/%s/tasks", userID)
}

// Tasks lists every task owned by userID.
func (client *Client) Tasks(ctx context.Context, userID string) ([]Task, error) {
	tasks := []Task{}
	if _, err := client.do(ctx, http.MethodGet, tasksPath(userID), nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Task fetches a single task by ID.
func (client *Client) Task(ctx context.Context, userID, taskID string) (*Task, error) {
	fetched := &Task{}
	path := fmt.Sprintf("%s/%s", tasksPath(userID), taskID)
	if _, err := client.do(ctx, http.MethodGet, path, nil, nil, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

// CreateTask creates a task for userID. The owner is included in the body to
// match the backend's expectations.
func (client *Client) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*Task, error) {
	created := &Task{}
	body := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"user_id":     userID,
	}
	if _, err := client.do(ctx, http.MethodPost, tasksPath(userID), nil, body, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask replaces the mutable fields of a task.
func (client *Client) UpdateTask(ctx context.Context, userID, taskID string, input UpdateTaskInput) (*Task, error) {
	updated := &Task{}
	path := fmt.Sprintf("%s/%s", tasksPath(userID), taskID)
	if _, err := client.do(ctx, http.MethodPut, path, nil, input, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task. Returns whether the backend confirmed removal.
func (client *Client) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	result := &deleteResult{}
	path := fmt.Sprintf("%s/%s", tasksPath(userID), taskID)
	meta, err := client.do(ctx, http.MethodDelete, path, nil, nil, result)
	if err != nil {
		return false, err
	}
	// A bare 204 carries no body; treat it as confirmed.
	if meta.Status == http.StatusNoContent {
		return true, nil
	}
	return result.Success, nil
}

// CompleteTask sets a task's completion flag.
func (client *Client) CompleteTask(ctx context.Context, userID, taskID string, completed bool) (*Task, error) {
	toggled := &Task{}
	path := fmt.Sprintf("%s/%s/complete", tasksPath(userID), taskID)
	body := map[string]bool{"completed": completed}
	if _, err := client.do(ctx, http.MethodPatch, path, nil, body, toggled); err != nil {
		return nil, err
	}
	return toggled, nil
}

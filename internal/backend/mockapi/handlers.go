// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/platform/ctxutil"
	"github.com/taskdeck/taskdeck/internal/platform/respond"
	"github.com/taskdeck/taskdeck/internal/platform/sec"
	"github.com/taskdeck/taskdeck/pkg/normalize"
)

// # Auth Handlers

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type profileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func (server *Server) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid request body"))
		return
	}

	email := normalize.Email(input.Email)
	if email == "" || input.Password == "" {
		respond.Error(writer, request, apperr.ValidationError("Email and password are required"))
		return
	}

	if _, err := server.SeedAccount(email, input.Password, input.Username); err != nil {
		respond.Error(writer, request, apperr.Conflict("Email is already registered"))
		return
	}

	respond.JSON(writer, http.StatusCreated, map[string]string{"message": "Account created"})
}

func (server *Server) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid request body"))
		return
	}

	server.mu.Lock()
	registered, found := server.accounts[normalize.Email(input.Email)]
	server.mu.Unlock()

	if !found || !sec.CheckPasswordHash(input.Password, registered.PasswordHash) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid email or password"))
		return
	}

	minted, err := server.MintToken(registered.ID, server.lifetime)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// Credential payloads are raw, not enveloped.
	respond.Raw(writer, signInResponse{AccessToken: minted, TokenType: "bearer"})
}

func (server *Server) profile(writer http.ResponseWriter, request *http.Request) {
	subject, err := server.bearerSubject(request)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Not authenticated"))
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	for _, registered := range server.accounts {
		if registered.ID == subject {
			respond.Raw(writer, profileResponse{
				ID:        registered.ID,
				Email:     registered.Email,
				Username:  registered.Username,
				CreatedAt: registered.CreatedAt.Format(time.RFC3339),
			})
			return
		}
	}
	respond.Error(writer, request, apperr.NotFound("User not found"))
}

// # Owner Scoping

// requireOwner authenticates the bearer token and rejects requests whose URL
// owner segment does not match the token subject.
func (server *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		subject, err := server.bearerSubject(request)
		if err != nil {
			respond.Error(writer, request, apperr.Unauthorized("Not authenticated"))
			return
		}

		owner := chi.URLParam(request, "userID")
		if owner != subject {
			server.log.Warn("mock_owner_mismatch",
				slog.String("url_user_id", owner),
				slog.String("token_user_id", subject),
			)
			respond.Error(writer, request, apperr.Forbidden("Cannot access resources belonging to another user"))
			return
		}

		ctx := ctxutil.WithSubject(request.Context(), subject)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// bearerSubject extracts and verifies the Authorization bearer token.
func (server *Server) bearerSubject(request *http.Request) (string, error) {
	header := request.Header.Get(constants.HeaderAuthorization)
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return "", apperr.Unauthorized("Missing bearer token")
	}
	return server.verifyToken(tokenString)
}

// # Task Handlers

type taskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

type taskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskCompleteRequest struct {
	Completed bool `json:"completed"`
}

func (server *Server) listTasks(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())

	server.mu.Lock()
	defer server.mu.Unlock()

	items := make([]taskItem, 0, len(server.tasks[owner]))
	for _, item := range server.tasks[owner] {
		items = append(items, *item)
	}
	respond.OK(writer, items)
}

func (server *Server) getTask(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())
	taskID := chi.URLParam(request, "taskID")

	server.mu.Lock()
	defer server.mu.Unlock()

	item := server.findTask(owner, taskID)
	if item == nil {
		respond.Error(writer, request, apperr.NotFound("Task not found"))
		return
	}
	respond.OK(writer, item)
}

func (server *Server) createTask(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())

	var input taskCreateRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid request body"))
		return
	}
	if strings.TrimSpace(input.Title) == "" {
		respond.Error(writer, request, apperr.ValidationError("Title is required"))
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	created := &taskItem{
		ID:          newID(),
		Title:       input.Title,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      owner,
	}
	server.tasks[owner] = append(server.tasks[owner], created)
	respond.Created(writer, created)
}

func (server *Server) updateTask(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())
	taskID := chi.URLParam(request, "taskID")

	var input taskUpdateRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid request body"))
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	item := server.findTask(owner, taskID)
	if item == nil {
		respond.Error(writer, request, apperr.NotFound("Task not found"))
		return
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Completed != nil {
		item.Completed = *input.Completed
	}
	item.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respond.OK(writer, item)
}

func (server *Server) deleteTask(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())
	taskID := chi.URLParam(request, "taskID")

	server.mu.Lock()
	defer server.mu.Unlock()

	kept := server.tasks[owner][:0]
	deleted := false
	for _, item := range server.tasks[owner] {
		if item.ID == taskID {
			deleted = true
			continue
		}
		kept = append(kept, item)
	}
	server.tasks[owner] = kept

	if !deleted {
		respond.Error(writer, request, apperr.NotFound("Task not found"))
		return
	}
	respond.Raw(writer, map[string]bool{"success": true})
}

func (server *Server) completeTask(writer http.ResponseWriter, request *http.Request) {
	owner := ctxutil.GetSubject(request.Context())
	taskID := chi.URLParam(request, "taskID")

	var input taskCompleteRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid request body"))
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	item := server.findTask(owner, taskID)
	if item == nil {
		respond.Error(writer, request, apperr.NotFound("Task not found"))
		return
	}

	item.Completed = input.Completed
	item.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	respond.OK(writer, item)
}

// findTask locates a task by owner and ID. Caller holds the lock.
func (server *Server) findTask(owner, taskID string) *taskItem {
	for _, item := range server.tasks[owner] {
		if item.ID == taskID {
			return item
		}
	}
	return nil
}

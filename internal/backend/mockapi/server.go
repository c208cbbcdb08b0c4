// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package mockapi provides an in-process fake of the task backend.

It simulates the real API when the actual backend is not available: the
gateway serves it under --mock for development, and the test suites run the
client pipeline against it over httptest.

The fake honours the real contract end to end:

  - Accounts with bcrypt-hashed passwords.
  - HS256 bearer tokens carrying user_id/sub/exp/role claims.
  - Owner-scoped task routes that reject a URL/subject mismatch with 403.
  - The data envelope on task payloads, raw bodies on auth payloads.

State is held in memory and guarded by one mutex; records do not survive a
restart.
*/
package mockapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/platform/sec"
	"github.com/taskdeck/taskdeck/pkg/normalize"
)

// # State

// account is a registered user record.
type account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// taskItem mirrors the wire shape of a task.
type taskItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	UserID      string `json:"userId"`
}

// Server is the in-memory fake backend.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account  // keyed by normalized email
	tasks    map[string][]*taskItem // keyed by owner userID

	secret   []byte
	lifetime time.Duration
	log      *slog.Logger
}

// NewServer constructs a fake backend that signs tokens with secret and
// declares the given token lifetime.
func NewServer(secret string, lifetime time.Duration, logger *slog.Logger) *Server {
	return &Server{
		accounts: map[string]*account{},
		tasks:    map[string][]*taskItem{},
		secret:   []byte(secret),
		lifetime: lifetime,
		log:      logger,
	}
}

// Router returns the fake backend's route tree.
func (server *Server) Router() http.Handler {
	router := chi.NewRouter()

	// Auth endpoints
	router.Post("/api/auth/sign-up/email", server.signUp)
	router.Post("/api/auth/sign-in/email", server.signIn)
	router.Get("/api/auth/profile", server.profile)

	// Owner-scoped task endpoints
	router.Route("/api/{userID}/tasks", func(r chi.Router) {
		r.Use(server.requireOwner)
		r.Get("/", server.listTasks)
		r.Post("/", server.createTask)
		r.Get("/{taskID}", server.getTask)
		r.Put("/{taskID}", server.updateTask)
		r.Delete("/{taskID}", server.deleteTask)
		r.Patch("/{taskID}/complete", server.completeTask)
	})

	return router
}

// # Seeding

// SeedAccount registers an account directly, bypassing the HTTP surface.
// Returns the new user's ID.
func (server *Server) SeedAccount(email, password, username string) (string, error) {
	hash, err := sec.HashPassword(password)
	if err != nil {
		return "", err
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	key := normalize.Email(email)
	if _, exists := server.accounts[key]; exists {
		return "", fmt.Errorf("mockapi: account %s already seeded", key)
	}

	created := &account{
		ID:           newID(),
		Email:        key,
		Username:     normalize.Username(username),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	server.accounts[key] = created
	return created.ID, nil
}

// SeedTask inserts a task for the given owner. Returns the task ID.
func (server *Server) SeedTask(userID, title, description string, completed bool) string {
	server.mu.Lock()
	defer server.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	item := &taskItem{
		ID:          newID(),
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	server.tasks[userID] = append(server.tasks[userID], item)
	return item.ID
}

// # Token Minting & Verification

// MintToken issues a signed HS256 token for the given subject. Exposed so
// tests can fabricate tokens with controlled claims.
func (server *Server) MintToken(userID string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"sub":     userID,
		"role":    string(sec.RoleMember),
		"iss":     "taskdeck-mock",
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(lifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(server.secret)
}

// verifyToken checks the signature and validity of a bearer token string and
// returns its subject.
func (server *Server) verifyToken(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("mockapi: unexpected signing method: %v", t.Header["alg"])
		}
		return server.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("mockapi: invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("mockapi: invalid token claims")
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("mockapi: token has no subject")
	}
	return subject, nil
}

// newID generates an entity ID, preferring time-sortable UUID v7.
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package web serves the Taskdeck gateway surface.

It exposes the session flow (login, signup, logout) and the task pages over a
chi router, delegating every backend interaction to the session controller
and the task service. The route guard gates the protected subtree on the
presence of the session cookie.

Architecture:

  - Stateless handlers: All session and task state lives in the controller
    and service; handlers only translate HTTP to operations.
  - Guarded subtree: Everything outside the public paths requires the session
    cookie artifact.
  - Uniform responses: Success payloads use the data envelope, errors the
    normalized error envelope.
*/
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/config"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/platform/middleware"
	"github.com/taskdeck/taskdeck/internal/platform/request"
	"github.com/taskdeck/taskdeck/internal/platform/respond"
	"github.com/taskdeck/taskdeck/internal/platform/validate"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/task"
)

// # Definitions & Constructors

// Server wires the gateway handlers to the session controller and task service.
type Server struct {
	cfg      *config.Config
	sessions *session.Controller
	tasks    *task.Service
	log      *slog.Logger
	http     *http.Server
}

// NewServer constructs the gateway [Server] with its dependencies.
func NewServer(cfg *config.Config, sessions *session.Controller, tasks *task.Service, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		tasks:    tasks,
		log:      logger,
	}
}

// Router assembles the middleware chain and route tree.
// The context bounds the rate limiter's cleanup goroutine.
func (server *Server) Router(ctx context.Context) http.Handler {
	router := chi.NewRouter()

	// Cross-cutting chain, outermost first
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(server.log))
	router.Use(middleware.PanicRecovery(server.log))
	router.Use(middleware.CORS(server.cfg))
	router.Use(middleware.RateLimit(ctx))
	router.Use(Guard())

	// Public surface
	router.Get("/", server.handleIndex)
	router.Get("/healthz", server.handleHealth)
	router.Post("/login", server.handleLogin)
	router.Post("/signup", server.handleSignup)
	router.Post("/logout", server.handleLogout)

	// Guarded surface
	router.Get("/dashboard", server.handleDashboard)
	router.Get("/profile", server.handleProfile)
	router.Route("/tasks", func(r chi.Router) {
		r.Post("/", server.handleTaskCreate)
		r.Put("/{taskID}", server.handleTaskUpdate)
		r.Delete("/{taskID}", server.handleTaskDelete)
		r.Post("/{taskID}/toggle", server.handleTaskToggle)
	})

	return router
}

// # Server Lifecycle

// ListenAndServe starts the gateway HTTP server. It blocks until the server
// stops. The context bounds background middleware goroutines.
func (server *Server) ListenAndServe(ctx context.Context) error {
	server.http = &http.Server{
		Addr:              ":" + server.cfg.ServerPort,
		Handler:           server.Router(ctx),
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}

	server.log.Info("gateway_listening", slog.String("port", server.cfg.ServerPort))
	return server.http.ListenAndServe()
}

// Shutdown drains in-flight requests within the timeout.
func (server *Server) Shutdown(timeout time.Duration) error {
	if server.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.http.Shutdown(ctx)
}

// # Public Handlers

func (server *Server) handleIndex(writer http.ResponseWriter, r *http.Request) {
	respond.Raw(writer, map[string]string{
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

func (server *Server) handleHealth(writer http.ResponseWriter, r *http.Request) {
	respond.Raw(writer, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

/*
handleLogin authenticates the user and establishes the browser session.

Description: Delegates to the session controller; on success the session
cookie is set (an opaque marker, not the credential itself) and the session
snapshot is returned.
*/
func (server *Server) handleLogin(writer http.ResponseWriter, r *http.Request) {
	var input credentialsRequest
	if err := request.DecodeJSON(r, &input); err != nil {
		respond.Error(writer, r, err)
		return
	}

	v := &validate.Validator{}
	if err := v.Required("email", input.Email).Required("password", input.Password).Err(); err != nil {
		respond.Error(writer, r, err)
		return
	}

	if err := server.sessions.Login(r.Context(), input.Email, input.Password); err != nil {
		respond.Error(writer, r, err)
		return
	}

	server.setSessionCookie(writer)
	respond.OK(writer, server.sessionView())
}

// handleSignup registers the account; the controller auto-logs-in on success.
func (server *Server) handleSignup(writer http.ResponseWriter, r *http.Request) {
	var input credentialsRequest
	if err := request.DecodeJSON(r, &input); err != nil {
		respond.Error(writer, r, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	v.Required("password", input.Password).MinLen("password", input.Password, 8)
	v.Required("name", input.Name).MaxLen("name", input.Name, 64)
	if err := v.Err(); err != nil {
		respond.Error(writer, r, err)
		return
	}

	if err := server.sessions.Signup(r.Context(), input.Email, input.Password, input.Name); err != nil {
		respond.Error(writer, r, err)
		return
	}

	server.setSessionCookie(writer)
	respond.OK(writer, server.sessionView())
}

// handleLogout tears down the session and clears the cookie. Always succeeds.
func (server *Server) handleLogout(writer http.ResponseWriter, r *http.Request) {
	server.sessions.Logout(r.Context())
	server.clearSessionCookie(writer)
	respond.NoContent(writer)
}

// # Guarded Handlers

// handleDashboard refreshes and returns the task list.
func (server *Server) handleDashboard(writer http.ResponseWriter, r *http.Request) {
	if err := server.tasks.Refresh(r.Context()); err != nil {
		respond.Error(writer, r, err)
		return
	}
	respond.OK(writer, server.tasks.Tasks())
}

// handleProfile returns the session's profile snapshot, fetching it on demand.
func (server *Server) handleProfile(writer http.ResponseWriter, r *http.Request) {
	state := server.sessions.State()
	if state.UserProfile == nil {
		profile, _ := server.sessions.FetchProfile(r.Context())
		if profile == nil {
			respond.Error(writer, r, apperr.Unauthorized("No profile available"))
			return
		}
		state = server.sessions.State()
	}
	respond.OK(writer, state.UserProfile)
}

func (server *Server) handleTaskCreate(writer http.ResponseWriter, r *http.Request) {
	var input apiclient.CreateTaskInput
	if err := request.DecodeJSON(r, &input); err != nil {
		respond.Error(writer, r, err)
		return
	}

	created, err := server.tasks.Create(r.Context(), input)
	if err != nil {
		respond.Error(writer, r, err)
		return
	}
	respond.Created(writer, created)
}

func (server *Server) handleTaskUpdate(writer http.ResponseWriter, r *http.Request) {
	var input apiclient.UpdateTaskInput
	if err := request.DecodeJSON(r, &input); err != nil {
		respond.Error(writer, r, err)
		return
	}

	updated, err := server.tasks.Update(r.Context(), request.Param(r, "taskID"), input)
	if err != nil {
		respond.Error(writer, r, err)
		return
	}
	respond.OK(writer, updated)
}

func (server *Server) handleTaskDelete(writer http.ResponseWriter, r *http.Request) {
	if err := server.tasks.Delete(r.Context(), request.Param(r, "taskID")); err != nil {
		respond.Error(writer, r, err)
		return
	}
	respond.NoContent(writer)
}

// handleTaskToggle flips the completion flag optimistically and reports the
// toggle's final status alongside the task.
func (server *Server) handleTaskToggle(writer http.ResponseWriter, r *http.Request) {
	taskID := request.Param(r, "taskID")

	err := server.tasks.ToggleCompletion(r.Context(), taskID)
	status := server.tasks.ToggleState(taskID)
	if err != nil {
		// The local value was already rolled back; surface both facts.
		respond.JSON(writer, http.StatusBadGateway, map[string]string{
			"message":       apperr.Normalize(err).Message,
			"toggle_status": string(status),
		})
		return
	}

	respond.OK(writer, map[string]any{
		"toggle_status": string(status),
		"tasks":         server.tasks.Tasks(),
	})
}

// # Session Cookie

// setSessionCookie drops the presence marker the route guard checks.
func (server *Server) setSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   server.cfg.IsProduction(),
		Expires:  time.Now().Add(server.cfg.TokenLifetime),
	})
}

// clearSessionCookie expires the marker immediately.
func (server *Server) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// sessionView is the state snapshot returned to the browser.
func (server *Server) sessionView() map[string]any {
	state := server.sessions.State()
	view := map[string]any{
		"authenticated": state.IsAuthenticated,
	}
	if state.Credential != nil {
		view["user_id"] = state.Credential.UserID
		view["expires_at"] = state.Credential.ExpiresAt
	}
	if state.UserProfile != nil {
		view["profile"] = state.UserProfile
	}
	return view
}

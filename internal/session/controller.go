// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/sec"
	"github.com/taskdeck/taskdeck/internal/token"
	"github.com/taskdeck/taskdeck/pkg/normalize"
)

// # Definitions & Constructors

// Controller owns the session state machine.
//
// It is safe for concurrent use; the lock guards state only and is never held
// across a network call.
type Controller struct {
	mu    sync.Mutex
	state State

	api      API
	store    token.Store
	lifetime time.Duration
	log      *slog.Logger
}

// NewController constructs a [Controller] with its dependencies.
//
// # Parameters
//   - api: The backend contract.
//   - store: The injected credential store.
//   - lifetime: The server-declared token lifetime used at save time.
//   - logger: Structured logger.
func NewController(api API, store token.Store, lifetime time.Duration, logger *slog.Logger) *Controller {
	return &Controller{
		api:      api,
		store:    store,
		lifetime: lifetime,
		log:      logger,
		state:    State{IsLoading: true},
	}
}

// State returns a snapshot of the current session state.
func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.state
}

// setState applies a mutation to the session state under the lock.
func (controller *Controller) setState(mutate func(*State)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	mutate(&controller.state)
}

// # State Machine Operations

/*
Init hydrates the session from the credential store at application start.

Description: A valid stored credential yields an authenticated state with
loading held true until the profile fetch settles. An invalid or absent
credential yields a clean unauthenticated state.

Parameters:
  - ctx: context.Context
*/
func (controller *Controller) Init(ctx context.Context) {
	controller.log.Info("session_init_started")

	credential := controller.store.Get(ctx)
	if credential == nil || !controller.store.IsValid(ctx) {
		controller.store.Clear(ctx)
		controller.setState(func(state *State) {
			*state = State{}
		})
		controller.log.Info("session_init_unauthenticated")
		return
	}

	controller.setState(func(state *State) {
		*state = State{
			Credential:      credential,
			IsAuthenticated: true,
			IsLoading:       true,
		}
	})

	// Profile failure is not fatal here; loading finalizes either way.
	defer controller.finishLoading()
	_, _ = controller.FetchProfile(ctx)
}

/*
Login authenticates against the backend and establishes the session.

Description: Calls the credential endpoint, extracts the subject from the
token payload (the authoritative user ID), persists the credential, then
fetches the profile. On any failure the store is purged, the state resets
with the error set, and the normalized error is returned to the caller.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - error: Normalized [apperr.AppError]
*/
func (controller *Controller) Login(ctx context.Context, email, password string) error {
	controller.log.Info("login_started")

	controller.setState(func(state *State) {
		state.IsLoading = true
		state.Error = ""
	})

	result, err := controller.api.SignIn(ctx, normalize.Email(email), password)
	if err != nil {
		return controller.failLogin(ctx, err)
	}
	if result.AccessToken == "" {
		return controller.failLogin(ctx, apperr.ValidationError("No access token returned from server"))
	}

	// The subject embedded in the token payload is authoritative. A nominally
	// successful call without one is a hard failure.
	subject := sec.ExtractUserID(result.AccessToken)
	if subject == "" {
		return controller.failLogin(ctx, apperr.ValidationError("Invalid token: no user ID found in JWT"))
	}

	if err := controller.store.Save(ctx, result.AccessToken, subject, controller.lifetime); err != nil {
		return controller.failLogin(ctx, err)
	}

	// Read back through the store so the state carries the reconciled expiry.
	// A nil read-back means the reconciled expiry is already in the past: the
	// token's own exp claim lapsed, so it can never authenticate a call.
	credential := controller.store.Get(ctx)
	if credential == nil {
		return controller.failLogin(ctx, apperr.ValidationError("Token is already expired"))
	}
	controller.setState(func(state *State) {
		state.Credential = credential
		state.IsAuthenticated = true
		state.IsLoading = true
		state.Error = ""
	})
	controller.log.Info("login_succeeded", slog.String("user_id", subject))

	defer controller.finishLoading()
	_, _ = controller.FetchProfile(ctx)
	return nil
}

/*
Signup registers a new account and delegates to Login on success (auto-login).

Parameters:
  - ctx: context.Context
  - email: string
  - password: string
  - name: string (becomes the account username)

Returns:
  - error: Normalized [apperr.AppError]
*/
func (controller *Controller) Signup(ctx context.Context, email, password, name string) error {
	controller.log.Info("signup_started")

	controller.setState(func(state *State) {
		state.IsLoading = true
		state.Error = ""
	})

	err := controller.api.SignUp(ctx, normalize.Email(email), password, normalize.Username(name))
	if err != nil {
		normalized := apperr.Normalize(err)
		controller.setState(func(state *State) {
			*state = State{Error: normalized.Message}
		})
		controller.log.Warn("signup_failed", slog.String("error", normalized.Message))
		return normalized
	}

	return controller.Login(ctx, email, password)
}

/*
Logout tears down the session locally.

Description: Purges the credential store and resets the state. Always
succeeds regardless of backend reachability.

Parameters:
  - ctx: context.Context
*/
func (controller *Controller) Logout(ctx context.Context) {
	controller.log.Info("logout")
	controller.store.Clear(ctx)
	controller.setState(func(state *State) {
		*state = State{}
	})
}

/*
FetchProfile fetches the account snapshot for the current credential.

Description: A no-op returning nil when no credential is held. On success the
profile merges into the state; on failure the error is logged and nil is
returned WITHOUT mutating the state's Error field, since a profile-fetch
failure is not a fatal auth error.

Parameters:
  - ctx: context.Context

Returns:
  - *apiclient.UserProfile: The fetched snapshot, nil on failure
  - error: Always nil; failures degrade to a nil profile
*/
func (controller *Controller) FetchProfile(ctx context.Context) (*apiclient.UserProfile, error) {
	if controller.store.Get(ctx) == nil {
		controller.log.Warn("no credential available to fetch user profile")
		return nil, nil
	}

	profile, err := controller.api.Profile(ctx)
	if err != nil {
		controller.log.Warn("profile_fetch_failed", slog.Any("error", err))
		return nil, nil
	}

	controller.setState(func(state *State) {
		state.UserProfile = profile
	})
	return profile, nil
}

// # Unauthorized Handling

// HandleUnauthorized resets the session after the pipeline observed a 401.
// The store is already purged by the error stage; this clears the view state.
func (controller *Controller) HandleUnauthorized(ctx context.Context) {
	controller.log.Warn("session_reset_after_unauthorized")
	controller.setState(func(state *State) {
		*state = State{}
	})
}

// # Internal Helpers

// failLogin purges the credential, resets the state with the error surfaced,
// and returns the normalized error to the caller.
func (controller *Controller) failLogin(ctx context.Context, err error) error {
	normalized := apperr.Normalize(err)
	controller.store.Clear(ctx)
	controller.setState(func(state *State) {
		*state = State{Error: normalized.Message}
	})
	controller.log.Warn("login_failed", slog.String("error", normalized.Message))
	return normalized
}

// finishLoading finalizes the loading flag after a profile fetch settles.
func (controller *Controller) finishLoading() {
	controller.setState(func(state *State) {
		state.IsLoading = false
	})
}

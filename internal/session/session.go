// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package session implements the auth session controller.

It orchestrates login, signup, logout, and profile fetch, owns the in-memory
session state, and exposes snapshots of that state to views.

# Architecture

The controller is a state machine over [State]. Within one operation the
sequence {call endpoint → extract subject → persist credential → update state
→ fetch profile → finalize loading} is strictly sequential. Across
independent operations no ordering is guaranteed; the interceptor re-checks
the credential store on every call, so a stale in-flight request racing a
logout observes the purge.

No transition leaves IsLoading true indefinitely: every branch finalizes it.
*/
package session

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/token"
)

// # Session State

// State is the view-facing session snapshot.
type State struct {
	// Credential is the persisted bearer record, nil when unauthenticated.
	Credential *token.Credential

	// IsAuthenticated is true iff Credential is non-nil and not expired.
	IsAuthenticated bool

	// IsLoading is true while an auth operation (init check, login, signup,
	// profile fetch) is in flight.
	IsLoading bool

	// Error is the last operation's failure description, cleared at the
	// start of the next operation. Empty means no error.
	Error string

	// UserProfile is fetched separately from the credential and may be nil
	// even when authenticated (fetch pending or failed).
	UserProfile *apiclient.UserProfile
}

// # Backend Contract

// API defines the backend calls the controller depends on.
//
// Defining it here decouples the controller from the concrete client, so
// tests can inject failing or scripted backends.
type API interface {

	// SignIn exchanges credentials for a bearer token.
	SignIn(ctx context.Context, email, password string) (*apiclient.SignInResult, error)

	// SignUp registers a new account. Only the status matters.
	SignUp(ctx context.Context, email, password, username string) error

	// Profile fetches the authenticated account snapshot.
	Profile(ctx context.Context) (*apiclient.UserProfile, error)
}

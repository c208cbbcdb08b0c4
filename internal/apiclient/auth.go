// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package apiclient

import (
	"context"
	"net/http"
)

// # Auth Wire Types

// SignInResult is the credential endpoint's response body.
type SignInResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserProfile is the read-only account snapshot fetched post-authentication.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// # Auth Endpoints

/*
SignIn exchanges credentials for a bearer token.

POST /api/auth/sign-in/email

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *SignInResult: Access token and type
  - error: Normalized [apperr.AppError]
*/
func (client *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	result := &SignInResult{}
	body := map[string]string{"email": email, "password": password}

	if _, err := client.do(ctx, http.MethodPost, "/api/auth/sign-in/email", nil, body, result); err != nil {
		return nil, err
	}
	return result, nil
}

/*
SignUp registers a new account.

POST /api/auth/sign-up/email

Description: Only the response status matters; the core relies on no body
contract beyond 2xx.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string
  - username: string

Returns:
  - error: Normalized [apperr.AppError]
*/
func (client *Client) SignUp(ctx context.Context, email, password, username string) error {
	body := map[string]string{"email": email, "password": password, "username": username}
	_, err := client.do(ctx, http.MethodPost, "/api/auth/sign-up/email", nil, body, nil)
	return err
}

/*
Profile fetches the authenticated account snapshot.

GET /api/auth/profile

Description: Unlike the sign-in/sign-up endpoints, the profile route requires
authentication, so the request stage attaches the bearer header normally.

Parameters:
  - ctx: context.Context

Returns:
  - *UserProfile: Account snapshot
  - error: Normalized [apperr.AppError]
*/
func (client *Client) Profile(ctx context.Context) (*UserProfile, error) {
	profile := &UserProfile{}
	if _, err := client.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

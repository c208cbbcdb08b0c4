// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

/*
Package apiclient implements the centralized API client and its interceptor
pipeline.

Every outgoing request passes through three stages, always in this order:

  - Request stage: attaches the stored bearer credential (never to auth
    endpoints), enforces owner/subject consistency on owner-scoped URLs, and
    defaults mutating requests to a JSON content type.
  - Response stage: unwraps the body envelope (data > result > items, else
    the raw body) and hands back the normalized payload with status and
    headers attached.
  - Error stage: classifies failures into the [apperr.AppError] contract. A
    401 purges the credential store and notifies the unauthorized sink
    exactly once per request; transport failures become a distinct network
    error; pre-flight failures surface without any dispatch.

The client re-reads the credential store on every call rather than caching it
for an operation's lifetime, so a request racing a logout observes the purge.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/token"
)

// # Definitions & Constructors

// UnauthorizedSink is notified when a request came back 401 and the stored
// credential has been purged. The gateway uses it to force the login redirect.
type UnauthorizedSink func(ctx context.Context)

// Options configures a [Client].
type Options struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout bounds a single request round trip.
	Timeout time.Duration

	// RetryAttempts and RetryDelay govern re-dispatch of GET requests that
	// failed at the transport level. HTTP error responses are never retried.
	RetryAttempts int
	RetryDelay    time.Duration

	// OnUnauthorized is invoked once per request that produced a 401.
	// Optional.
	OnUnauthorized UnauthorizedSink
}

// Client issues requests to the task backend through the interceptor pipeline.
//
// It is safe for concurrent use. The credential store is injected, never
// reached through package state, so tests can substitute isolated instances.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          token.Store
	limiter        *rate.Limiter
	log            *slog.Logger
	retryAttempts  int
	retryDelay     time.Duration
	onUnauthorized UnauthorizedSink
}

// New constructs a [Client] with its store dependency.
func New(options Options, store token.Store, logger *slog.Logger) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(options.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		store:          store,
		limiter:        rate.NewLimiter(rate.Limit(constants.DefaultClientRPS), constants.DefaultClientBurst),
		log:            logger,
		retryAttempts:  options.RetryAttempts,
		retryDelay:     options.RetryDelay,
		onUnauthorized: options.OnUnauthorized,
	}
}

// # Response Metadata

// Meta carries the transport-level facts attached to a normalized payload.
type Meta struct {
	Status int
	Header http.Header
}

// # Request Dispatch

/*
do runs one request through the full pipeline.

Description: Builds the request, applies the request stage, dispatches with
bounded retry for transport failures on GET, then applies either the response
stage or the error stage. The decoded, envelope-unwrapped payload is stored
into out when out is non-nil.

Parameters:
  - ctx: context.Context
  - method: string
  - path: string (joined onto the base URL)
  - query: url.Values (optional)
  - body: any (JSON-encoded when non-nil)
  - out: any (pointer destination for the normalized payload)

Returns:
  - *Meta: Status and headers of the response, nil on pre-flight failure
  - error: Always an [*apperr.AppError]
*/
func (client *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*Meta, error) {

	// Client-side throttle. Bounds burst traffic from optimistic UI loops.
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, apperr.Normalize(err)
	}

	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.ValidationError(fmt.Sprintf("request body not encodable: %v", err))
		}
		payload = encoded
	}

	// ── Request stage ─────────────────────────────────────────────────────
	request, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	if err := client.interceptRequest(ctx, request); err != nil {
		// Pre-flight failure: the request is never sent.
		return nil, apperr.Normalize(err)
	}

	// ── Dispatch with bounded retry for transport failures ────────────────
	response, err := client.send(ctx, request, payload)
	if err != nil {
		client.log.Warn("network error - no response received",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil, apperr.Network(err)
	}
	defer func() { _ = response.Body.Close() }()

	decoded := decodeBody(response.Body)

	// ── Error stage ───────────────────────────────────────────────────────
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, client.interceptError(ctx, request, response.StatusCode, decoded)
	}

	// ── Response stage ────────────────────────────────────────────────────
	meta := &Meta{Status: response.StatusCode, Header: response.Header}
	if out == nil {
		return meta, nil
	}
	if err := unwrapInto(decoded, out); err != nil {
		return meta, apperr.ValidationError(err.Error())
	}
	return meta, nil
}

// send dispatches the request, re-dispatching GETs that failed at the
// transport level up to the configured attempt count.
func (client *Client) send(ctx context.Context, request *http.Request, payload []byte) (*http.Response, error) {
	attempts := 1
	if request.Method == http.MethodGet && client.retryAttempts > 0 {
		attempts = client.retryAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(client.retryDelay):
			}
			// The body reader is consumed by each dispatch.
			request.Body = io.NopCloser(bytes.NewReader(payload))
		}

		response, err := client.httpClient.Do(request)
		if err == nil {
			return response, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// requestID generates a correlation ID, preferring time-sortable UUID v7.
func requestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

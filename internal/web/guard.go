// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/apperr"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	"github.com/taskdeck/taskdeck/internal/platform/respond"
)

// # Route Guard

// publicPaths are reachable without a session artifact. Logout is public so
// that clearing an absent session stays a no-op success.
var publicPaths = []string{
	"/",
	"/login",
	"/signup",
	"/logout",
	"/healthz",
}

// Guard gates protected routes on the PRESENCE of the session cookie.
//
// The check is deliberately shallow: the cookie's value is never read or
// verified here. Real credential validation happens in the client pipeline
// when a page triggers an API call; a stale cookie simply leads to a 401
// downstream, which tears down the session. The guard only provides fast
// page-level gating and a friendly redirect.
func Guard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if isPublicPath(request.URL.Path) {
				next.ServeHTTP(writer, request)
				return
			}

			if _, err := request.Cookie(constants.SessionCookieName); err == nil {
				next.ServeHTTP(writer, request)
				return
			}

			// Browsers get a redirect carrying the attempted destination so the
			// login flow can return there. API-style requests get a plain 401.
			if request.Method == http.MethodGet && !wantsJSON(request) {
				target := "/login?return=" + url.QueryEscape(request.URL.RequestURI())
				http.Redirect(writer, request, target, http.StatusSeeOther)
				return
			}

			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		})
	}
}

// isPublicPath reports whether the path is reachable anonymously.
// "/" matches exactly; the other public paths also cover their subtrees.
func isPublicPath(path string) bool {
	for _, public := range publicPaths {
		if path == public {
			return true
		}
		if public != "/" && strings.HasPrefix(path, public+"/") {
			return true
		}
	}
	return false
}

// wantsJSON reports whether the client negotiated a JSON response.
func wantsJSON(request *http.Request) bool {
	accept := request.Header.Get("Accept")
	return strings.Contains(accept, constants.ContentTypeJSON)
}

// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

// Package normalize canonicalizes user-supplied identity strings.
//
// # Usage
//
// Emails and usernames arrive from signup forms in arbitrary Unicode forms
// ("Ｄｅｍｏ" vs "Demo", composed vs decomposed accents). Canonicalizing them
// before they reach the backend keeps lookups and uniqueness checks stable.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email canonicalizes an email address: NFKC normalization, whitespace trim,
// and lowercasing.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// Username canonicalizes a username: NFKC normalization and whitespace trim.
// Case is preserved since display names are case-sensitive.
func Username(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

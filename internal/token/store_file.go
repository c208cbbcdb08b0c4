// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

package token

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/constants"
)

// FileStore implements [Store] on a local JSON document.
//
// The document maps the fixed storage key to the credential record, mirroring
// how a browser client keeps the record under one localStorage key. The file
// is written with 0600 permissions since it holds a live bearer token.
type FileStore struct {
	mu       sync.Mutex
	path     string
	settings settings
}

// NewFileStore creates a credential store backed by the file at path.
// The parent directory is created on first save.
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{path: path, settings: applySettings(opts)}
}

/*
Save persists a credential record, overwriting any existing one.

Parameters:
  - ctx: context.Context
  - tokenString: string
  - userID: string
  - lifetime: time.Duration

Returns:
  - error: Filesystem failures
*/
func (store *FileStore) Save(ctx context.Context, tokenString, userID string, lifetime time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	record := &Credential{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: expiresAt(tokenString, lifetime, time.Now()),
	}
	return store.write(map[string]*Credential{constants.TokenStorageKey: record})
}

/*
Get returns the persisted record iff it is complete and unexpired.

Description: A missing, unreadable, incomplete, or expired document is purged
before returning nil, so a subsequent Get also returns nil.
*/
func (store *FileStore) Get(ctx context.Context) *Credential {
	store.mu.Lock()
	defer store.mu.Unlock()

	raw, err := os.ReadFile(store.path)
	if err != nil {
		return nil
	}

	document := map[string]*Credential{}
	if err := json.Unmarshal(raw, &document); err != nil {
		store.remove()
		return nil
	}

	record := usable(document[constants.TokenStorageKey], time.Now())
	if record == nil {
		store.remove()
		return nil
	}
	return record
}

// Clear removes the persisted document. Idempotent.
func (store *FileStore) Clear(ctx context.Context) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.remove()
}

// IsValid reports whether a complete, unexpired, well-formed record exists.
func (store *FileStore) IsValid(ctx context.Context) bool {
	return isValid(store.Get(ctx))
}

// AboutToExpire reports whether the persisted record expires within the threshold.
func (store *FileStore) AboutToExpire(ctx context.Context) bool {
	return aboutToExpire(store.Get(ctx), time.Now(), store.settings.threshold)
}

// write atomically replaces the document via a temp file and rename.
func (store *FileStore) write(document map[string]*Credential) error {
	payload, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return err
	}
	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, store.path)
}

// remove deletes the document, ignoring not-exist errors.
func (store *FileStore) remove() {
	_ = os.Remove(store.path)
}

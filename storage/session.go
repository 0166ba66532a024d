/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/eko/gocache/store/go_cache/v4"
	gocacheclient "github.com/patrickmn/go-cache"
)

// ErrNonceReplayed is returned when a nonce is claimed that was claimed before.
var ErrNonceReplayed = errors.New("nonce has already been used")

var sessionStorePruneInterval = 10 * time.Minute

// DefaultSessionTTL is the time-to-live of session entries when no other TTL is given.
const DefaultSessionTTL = 15 * time.Minute

// SessionStore is a key/value store for short-lived protocol state, like pending flows and used nonces.
// All entries expire after the store's TTL.
type SessionStore interface {
	// Put stores the value (marshalled as JSON) under the given key.
	Put(ctx context.Context, key string, value interface{}) error
	// Get unmarshals the value stored under the given key into target. It returns ErrNotFound if there is no (unexpired) value.
	Get(ctx context.Context, key string, target interface{}) error
	// Exists returns true if there is an unexpired value stored under the given key.
	Exists(ctx context.Context, key string) bool
	// Delete removes the value stored under the given key.
	Delete(ctx context.Context, key string) error
	// ClaimNonce marks the nonce as used. It returns ErrNonceReplayed if it was claimed before and hasn't expired.
	ClaimNonce(ctx context.Context, nonce string) error
	// ReleaseNonce removes a claim, so the nonce can be claimed again.
	ReleaseNonce(ctx context.Context, nonce string) error
}

// SessionDatabase is an in-memory database holding session data, backed by go-cache.
type SessionDatabase struct {
	underlying *cache.Cache[[]byte]
	// mux guards check-then-set sequences
	mux sync.Mutex
}

// NewSessionDatabase creates a new in-memory session database.
func NewSessionDatabase() *SessionDatabase {
	client := gocacheclient.New(DefaultSessionTTL, sessionStorePruneInterval)
	return &SessionDatabase{
		underlying: cache.New[[]byte](go_cache.NewGoCache(client)),
	}
}

// GetStore returns a SessionStore with the given TTL, which keys are prefixed with the given prefixes.
func (s *SessionDatabase) GetStore(ttl time.Duration, prefixes ...string) SessionStore {
	return sessionStore{
		db:       s,
		ttl:      ttl,
		prefixes: prefixes,
	}
}

type sessionStore struct {
	db       *SessionDatabase
	ttl      time.Duration
	prefixes []string
}

func (s sessionStore) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.underlying.Set(ctx, s.getFullKey(key), data, store.WithExpiration(s.ttl))
}

func (s sessionStore) Get(ctx context.Context, key string, target interface{}) error {
	data, err := s.db.underlying.Get(ctx, s.getFullKey(key))
	if err != nil {
		return ErrNotFound
	}
	return json.Unmarshal(data, target)
}

func (s sessionStore) Exists(ctx context.Context, key string) bool {
	_, err := s.db.underlying.Get(ctx, s.getFullKey(key))
	return err == nil
}

func (s sessionStore) Delete(ctx context.Context, key string) error {
	return s.db.underlying.Delete(ctx, s.getFullKey(key))
}

func (s sessionStore) ClaimNonce(ctx context.Context, nonce string) error {
	s.db.mux.Lock()
	defer s.db.mux.Unlock()
	key := nonceKey(nonce)
	if s.Exists(ctx, key) {
		return ErrNonceReplayed
	}
	return s.Put(ctx, key, true)
}

func (s sessionStore) ReleaseNonce(ctx context.Context, nonce string) error {
	s.db.mux.Lock()
	defer s.db.mux.Unlock()
	return s.Delete(ctx, nonceKey(nonce))
}

func nonceKey(nonce string) string {
	return "nonce/" + nonce
}

func (s sessionStore) getFullKey(key string) string {
	return strings.Join(append(append([]string{}, s.prefixes...), key), "/")
}

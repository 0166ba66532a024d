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
	"time"
)

//go:generate mockgen -destination=mock.go -package=storage -source=interface.go

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MaxLogEntries is the number of log entries that is retained, older entries are removed.
const MaxLogEntries = 1000

// CredentialRecord is a stored Verifiable Credential.
// Hash is the primary key: the credential's own ID (jti) if it has one, otherwise the SHA-256 hex digest of Encoded.
type CredentialRecord struct {
	Hash      string                 `json:"hash"`
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Encoded   string                 `json:"encoded"`
	Decoded   map[string]interface{} `json:"decoded"`
}

// DIDRecord is the persisted wallet key pair with its did:key identifier.
type DIDRecord struct {
	DID        string          `json:"did"`
	PrivateKey json.RawMessage `json:"privateKey"`
	PublicKey  json.RawMessage `json:"publicKey"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// LogEntry is an entry of the wallet's activity log, shown to the user.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// CredentialStore persists the wallet's credentials.
type CredentialStore interface {
	// Save stores the record. If a record with the same key exists and replace is false,
	// core.ErrDuplicateCredential is returned and the existing record is left untouched.
	Save(ctx context.Context, record CredentialRecord, replace bool) error
	// Get returns the record with the given key, or ErrNotFound.
	Get(ctx context.Context, key string) (*CredentialRecord, error)
	// Recent returns the records stored less than the given number of days ago, newest first.
	Recent(ctx context.Context, days int) ([]CredentialRecord, error)
	// Delete removes the record with the given key. It's not an error if it doesn't exist.
	Delete(ctx context.Context, key string) error
	// DeleteAll removes all records.
	DeleteAll(ctx context.Context) error
}

// DIDStore persists the wallet key pairs.
type DIDStore interface {
	// FirstDID returns the first created key pair, or nil if there is none.
	FirstDID(ctx context.Context) (*DIDRecord, error)
	// SaveDID stores a new key pair. Existing key pairs are never overwritten.
	SaveDID(ctx context.Context, record DIDRecord) error
}

// SettingsStore persists user settings as key/value pairs.
type SettingsStore interface {
	// GetSetting returns the setting with the given key, or ErrNotFound.
	GetSetting(ctx context.Context, key string) (string, error)
	// PutSetting creates or replaces a setting.
	PutSetting(ctx context.Context, key string, value string) error
	// DeleteSetting removes a setting.
	DeleteSetting(ctx context.Context, key string) error
}

// LogStore persists the wallet activity log.
type LogStore interface {
	// AppendLog adds an entry, removing the oldest entries when there are more than MaxLogEntries.
	AppendLog(ctx context.Context, entry LogEntry) error
	// ListLogs returns all retained entries, oldest first.
	ListLogs(ctx context.Context) ([]LogEntry, error)
}

// Store combines all stores of the wallet.
type Store interface {
	CredentialStore
	DIDStore
	SettingsStore
	LogStore
	Close() error
}

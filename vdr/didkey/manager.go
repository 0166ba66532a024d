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

package didkey

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vdr/log"
)

//go:generate mockgen -destination=mock.go -package=didkey -source=manager.go

// KeyManager provides the wallet's active key pair.
type KeyManager interface {
	// GetOrCreate returns the first created key pair, generating and persisting one if none exists.
	GetOrCreate(ctx context.Context) (*KeyPair, error)
}

// KeyPair is the wallet's P-256 key pair with its did:key identifier. It is never modified after creation.
type KeyPair struct {
	DID        did.DID
	PrivateKey crypto.Key
	PublicKey  crypto.Key
	CreatedAt  time.Time
}

// KeyID returns the key ID to put in the kid header of JWTs signed with this key pair.
func (k KeyPair) KeyID() string {
	return KeyID(k.DID).String()
}

// SignJWT signs a JWT with the private key.
func (k KeyPair) SignJWT(ctx context.Context, header map[string]interface{}, payload map[string]interface{}) (string, error) {
	return crypto.SignJWT(ctx, header, payload, k.PrivateKey)
}

var _ crypto.JWTSigner = KeyPair{}
var _ KeyManager = (*Manager)(nil)

// Manager is a KeyManager that persists key pairs in a storage.DIDStore.
type Manager struct {
	store storage.DIDStore
	// mux makes sure concurrent first calls create a single key pair
	mux    sync.Mutex
	active *KeyPair
}

// NewManager creates a new Manager.
func NewManager(store storage.DIDStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) GetOrCreate(ctx context.Context) (*KeyPair, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.active != nil {
		return m.active, nil
	}
	record, err := m.store.FirstDID(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to read key pair: %w", err)
	}
	var keyPair *KeyPair
	if record == nil {
		keyPair, err = m.create(ctx)
	} else {
		keyPair, err = load(*record)
	}
	if err != nil {
		return nil, err
	}
	m.active = keyPair
	return keyPair, nil
}

func (m *Manager) create(ctx context.Context) (*KeyPair, error) {
	privateKey, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	publicKey, err := privateKey.Public()
	if err != nil {
		return nil, err
	}
	ecPublicKey, err := publicKey.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	id, err := FromPublicKey(ecPublicKey)
	if err != nil {
		return nil, err
	}
	privateJSON, err := json.Marshal(privateKey)
	if err != nil {
		return nil, err
	}
	publicJSON, err := json.Marshal(publicKey)
	if err != nil {
		return nil, err
	}
	result := &KeyPair{
		DID:        id,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		CreatedAt:  time.Now(),
	}
	err = m.store.SaveDID(ctx, storage.DIDRecord{
		DID:        id.String(),
		PrivateKey: privateJSON,
		PublicKey:  publicJSON,
		CreatedAt:  result.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to store key pair: %w", err)
	}
	log.Logger().
		WithField(core.LogFieldDID, id.String()).
		Info("Created new wallet DID")
	return result, nil
}

func load(record storage.DIDRecord) (*KeyPair, error) {
	id, err := ParseDID(record.DID)
	if err != nil {
		return nil, err
	}
	privateKey, err := crypto.ParseJWK(record.PrivateKey)
	if err != nil {
		return nil, err
	}
	if privateKey.Role() != crypto.PrivateKeyRole {
		return nil, crypto.ErrNotAPrivateKey
	}
	publicKey, err := privateKey.Public()
	if err != nil {
		return nil, err
	}
	ecPublicKey, err := publicKey.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	derived, err := FromPublicKey(ecPublicKey)
	if err != nil {
		return nil, err
	}
	if !derived.Equals(id) {
		return nil, core.Errorf(core.ErrCrypto, "stored key pair does not match its DID (did=%s)", record.DID)
	}
	return &KeyPair{
		DID:        id,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		CreatedAt:  record.CreatedAt,
	}, nil
}

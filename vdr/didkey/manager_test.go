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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestManager_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a DID on first use", func(t *testing.T) {
		store := storage.NewTestStore(t)
		manager := NewManager(store)

		keyPair, err := manager.GetOrCreate(ctx)

		require.NoError(t, err)
		assert.Equal(t, "key", keyPair.DID.Method)
		record, err := store.FirstDID(ctx)
		require.NoError(t, err)
		assert.Equal(t, keyPair.DID.String(), record.DID)
		assert.Contains(t, string(record.PrivateKey), `"d":`)
		assert.NotContains(t, string(record.PublicKey), `"d":`)
	})
	t.Run("idempotent", func(t *testing.T) {
		store := storage.NewTestStore(t)
		first, err := NewManager(store).GetOrCreate(ctx)
		require.NoError(t, err)

		// a new manager on the same store loads the persisted key pair
		second, err := NewManager(store).GetOrCreate(ctx)

		require.NoError(t, err)
		assert.Equal(t, first.DID.String(), second.DID.String())
		assert.Equal(t, first.KeyID(), second.KeyID())
	})
	t.Run("concurrent first calls create a single DID", func(t *testing.T) {
		store := storage.NewTestStore(t)
		manager := NewManager(store)
		results := make([]string, 10)
		wg := sync.WaitGroup{}
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				keyPair, err := manager.GetOrCreate(ctx)
				if err == nil {
					results[i] = keyPair.DID.String()
				}
			}(i)
		}
		wg.Wait()

		for _, result := range results {
			assert.Equal(t, results[0], result)
		}
	})
	t.Run("signed JWT verifies with the key resolved from the DID", func(t *testing.T) {
		keyPair, err := NewManager(storage.NewTestStore(t)).GetOrCreate(ctx)
		require.NoError(t, err)

		token, err := keyPair.SignJWT(ctx, map[string]interface{}{"alg": "ES256", "kid": keyPair.KeyID()}, map[string]interface{}{"iss": keyPair.DID.String()})
		require.NoError(t, err)

		publicKey, err := PublicKey(keyPair.DID)
		require.NoError(t, err)
		verificationKey, err := crypto.NewKey(publicKey)
		require.NoError(t, err)
		valid, err := crypto.VerifyJWT(ctx, token, verificationKey)
		require.NoError(t, err)
		assert.True(t, valid)
	})
	t.Run("store read fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := storage.NewMockDIDStore(ctrl)
		store.EXPECT().FirstDID(gomock.Any()).Return(nil, errors.New("failed"))

		_, err := NewManager(store).GetOrCreate(ctx)

		assert.EqualError(t, err, "unable to read key pair: failed")
	})
	t.Run("store write fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := storage.NewMockDIDStore(ctrl)
		store.EXPECT().FirstDID(gomock.Any()).Return(nil, nil)
		store.EXPECT().SaveDID(gomock.Any(), gomock.Any()).Return(errors.New("failed"))

		_, err := NewManager(store).GetOrCreate(ctx)

		assert.EqualError(t, err, "unable to store key pair: failed")
	})
	t.Run("stored key does not match DID", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := storage.NewMockDIDStore(ctrl)
		privateKey, _ := crypto.GenerateKeyPair()
		privateJSON, _ := json.Marshal(privateKey)
		store.EXPECT().FirstDID(gomock.Any()).Return(&storage.DIDRecord{
			DID:        p256DID,
			PrivateKey: privateJSON,
			CreatedAt:  time.Now(),
		}, nil)

		_, err := NewManager(store).GetOrCreate(ctx)

		assert.ErrorIs(t, err, core.ErrCrypto)
	})
}

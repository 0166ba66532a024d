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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture was taken from https://github.com/digitalbazaar/did-method-key/blob/main/test/driver.spec.js
const p256DID = "did:key:zDnaeucDGfhXHoJVqot3p21RuupNJ2fZrs8Lb1GV83VnSo2jR"

func p256FixtureKey(t *testing.T) *ecdsa.PublicKey {
	t.Helper()
	key, err := jwk.ParseKey([]byte(`{"kty":"EC","crv":"P-256","x":"sYLQHOy9TNAWwFcAlpxkqRA5OutpWCrVPEWsgeli_KA","y":"l5Jr9_48oPJWHwuVmH_VZVquGe-U8RtnR-McN4tdYhs"}`))
	require.NoError(t, err)
	var result ecdsa.PublicKey
	require.NoError(t, key.Raw(&result))
	return &result
}

func TestFromPublicKey(t *testing.T) {
	t.Run("known vector", func(t *testing.T) {
		id, err := FromPublicKey(p256FixtureKey(t))

		require.NoError(t, err)
		assert.Equal(t, p256DID, id.String())
	})
	t.Run("prefix is zDn for P-256", func(t *testing.T) {
		privateKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

		id, err := FromPublicKey(&privateKey.PublicKey)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id.String(), "did:key:zDn"))
	})
	t.Run("other curve", func(t *testing.T) {
		privateKey, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)

		_, err := FromPublicKey(&privateKey.PublicKey)

		assert.ErrorIs(t, err, core.ErrCrypto)
	})
	t.Run("nil key", func(t *testing.T) {
		_, err := FromPublicKey(nil)

		assert.ErrorIs(t, err, core.ErrCrypto)
	})
}

func TestPublicKey(t *testing.T) {
	t.Run("known vector", func(t *testing.T) {
		expected := p256FixtureKey(t)

		actual, err := PublicKey(did.MustParseDID(p256DID))

		require.NoError(t, err)
		assert.True(t, expected.Equal(actual))
	})
	t.Run("roundtrip", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			privateKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
			id, err := FromPublicKey(&privateKey.PublicKey)
			require.NoError(t, err)

			actual, err := PublicKey(id)

			require.NoError(t, err)
			assert.Equal(t, 0, privateKey.PublicKey.X.Cmp(actual.X))
			assert.Equal(t, 0, privateKey.PublicKey.Y.Cmp(actual.Y))
		}
	})
	t.Run("errors", func(t *testing.T) {
		testCases := []struct {
			name string
			did  string
		}{
			{"other method", "did:web:example.com"},
			{"not base58btc", "did:key:abc"},
			{"invalid base58", "did:key:z0OIl"},
			{"ed25519 key", "did:key:z6MknCCLeeHBUaHu4aHSVLDCYQW9gjVJ7a63FpMvtuVMy53T"},
			{"truncated key", "did:key:zDnaeucDGfhXHoJVqot3p21RuupNJ2fZrs8Lb1GV83Vn"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := PublicKey(did.MustParseDID(tc.did))

				assert.ErrorIs(t, err, core.ErrMalformedInput)
			})
		}
	})
}

func TestKeyID(t *testing.T) {
	id := did.MustParseDID(p256DID)

	assert.Equal(t, p256DID+"#zDnaeucDGfhXHoJVqot3p21RuupNJ2fZrs8Lb1GV83VnSo2jR", KeyID(id).String())
}

func TestParseDID(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		id, err := ParseDID(p256DID)

		require.NoError(t, err)
		assert.Equal(t, "key", id.Method)
	})
	t.Run("other method", func(t *testing.T) {
		_, err := ParseDID("did:web:example.com")

		assert.ErrorIs(t, err, core.ErrMalformedInput)
	})
	t.Run("invalid DID", func(t *testing.T) {
		_, err := ParseDID("not a did")

		assert.ErrorIs(t, err, core.ErrMalformedInput)
	})
}

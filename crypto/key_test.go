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

package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJWK(t *testing.T) {
	privateKey, err := GenerateKeyPair()
	require.NoError(t, err)
	privateJSON, err := json.Marshal(privateKey)
	require.NoError(t, err)
	publicKey, _ := privateKey.Public()
	publicJSON, err := json.Marshal(publicKey)
	require.NoError(t, err)

	t.Run("private key (has d)", func(t *testing.T) {
		assert.Contains(t, string(privateJSON), `"d":`)

		key, err := ParseJWK(privateJSON)

		require.NoError(t, err)
		assert.Equal(t, PrivateKeyRole, key.Role())
		assert.Equal(t, "private", key.Role().String())
		assert.Equal(t, "ES256", key.Algorithm().String())
	})
	t.Run("public key", func(t *testing.T) {
		assert.NotContains(t, string(publicJSON), `"d":`)

		key, err := ParseJWK(publicJSON)

		require.NoError(t, err)
		assert.Equal(t, PublicKeyRole, key.Role())
		ecKey, err := key.ECDSAPublicKey()
		require.NoError(t, err)
		assert.Equal(t, elliptic.P256(), ecKey.Curve)
	})
	t.Run("imported key signs and verifies", func(t *testing.T) {
		importedPrivate, _ := ParseJWK(privateJSON)
		importedPublic, _ := ParseJWK(publicJSON)

		token, err := SignJWT(context.Background(), map[string]interface{}{"alg": "ES256"}, map[string]interface{}{}, importedPrivate)
		require.NoError(t, err)
		valid, err := VerifyJWT(context.Background(), token, importedPublic)

		require.NoError(t, err)
		assert.True(t, valid)
	})
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseJWK([]byte("{"))

		assert.ErrorIs(t, err, core.ErrCrypto)
	})
	t.Run("unsupported curve", func(t *testing.T) {
		p384, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)

		_, err := NewKey(p384)

		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	})
	t.Run("unsupported key type", func(t *testing.T) {
		_, edKey, _ := ed25519.GenerateKey(rand.Reader)

		_, err := NewKey(edKey)

		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	})
}

func TestKey_ECDSAPublicKey(t *testing.T) {
	privateKey, _ := GenerateKeyPair()

	ecKey, err := privateKey.ECDSAPublicKey()

	require.NoError(t, err)
	assert.NotNil(t, ecKey.X)
	_, err = Key{}.ECDSAPublicKey()
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	_, err = Key{}.MarshalJSON()
	assert.Error(t, err)
}

func TestPKCE(t *testing.T) {
	// test vector from RFC7636 appendix B
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallengeS256("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
	verifier := GenerateCodeVerifier()
	assert.Len(t, verifier, 43)
	assert.NotEqual(t, verifier, GenerateCodeVerifier())
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
}

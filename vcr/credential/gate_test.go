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

package credential

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/crypto/jwt"
	"github.com/nuts-foundation/nuts-wallet/storage"
	testHTTP "github.com/nuts-foundation/nuts-wallet/test/http"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createJWT(t *testing.T, payload map[string]interface{}) string {
	t.Helper()
	key, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	token, err := crypto.SignJWT(context.Background(), map[string]interface{}{"alg": "ES256", "typ": "JWT"}, payload, key)
	require.NoError(t, err)
	return token
}

func newTestGate(t *testing.T) (*Gate, storage.Store) {
	store := storage.NewTestStore(t)
	return NewGate(store, didkey.NewManager(store), core.NewStrictHTTPClient(false, 5*time.Second, nil)), store
}

func TestGate_Normalize(t *testing.T) {
	gate, _ := newTestGate(t)
	vc := map[string]interface{}{"type": []interface{}{"VerifiableCredential", "LEARCredentialEmployee"}}

	t.Run("jwt_vc_json uses the vc claim and jti", func(t *testing.T) {
		encoded := createJWT(t, map[string]interface{}{"jti": "urn:uuid:1", "vc": vc})

		record, err := gate.Normalize(Received{Format: JWTVCJSON, Status: Signed, Encoded: encoded})

		require.NoError(t, err)
		assert.Equal(t, "urn:uuid:1", record.Hash)
		assert.Equal(t, vc, record.Decoded)
		assert.Equal(t, "jwt_vc_json", record.Type)
		assert.Equal(t, "signed", record.Status)
		assert.Equal(t, encoded, record.Encoded)
		assert.False(t, record.Timestamp.IsZero())
	})
	t.Run("jwt_vc_json without jti is keyed by hash", func(t *testing.T) {
		encoded := createJWT(t, map[string]interface{}{"vc": vc})

		record, err := gate.Normalize(Received{Format: JWTVCJSON, Status: Signed, Encoded: encoded})

		require.NoError(t, err)
		assert.Equal(t, crypto.SHA256Hex(encoded), record.Hash)
	})
	t.Run("EBSI uses the vc claim", func(t *testing.T) {
		encoded := createJWT(t, map[string]interface{}{"vc": vc})

		record, err := gate.Normalize(Received{Format: EBSI, Status: Signed, Encoded: encoded})

		require.NoError(t, err)
		assert.Equal(t, vc, record.Decoded)
		assert.Equal(t, "EBSI", record.Type)
	})
	t.Run("jwt_vc uses the whole payload and its id", func(t *testing.T) {
		encoded := createJWT(t, map[string]interface{}{"id": "cred-1", "type": []interface{}{"VerifiableCredential"}})

		record, err := gate.Normalize(Received{Format: JWTVC, Status: ToBeSigned, Encoded: encoded})

		require.NoError(t, err)
		assert.Equal(t, "cred-1", record.Hash)
		assert.Equal(t, "cred-1", record.Decoded["id"])
	})
	t.Run("w3cvc is JSON", func(t *testing.T) {
		encoded := `{"type":["VerifiableCredential"],"credentialSubject":{"name":"Alice"}}`

		record, err := gate.Normalize(Received{Status: Signed, Encoded: encoded})

		require.NoError(t, err)
		assert.Equal(t, "w3cvc", record.Type)
		assert.Equal(t, crypto.SHA256Hex(encoded), record.Hash)
		assert.Equal(t, "Alice", record.Decoded["credentialSubject"].(map[string]interface{})["name"])
	})
	t.Run("explicit ID wins", func(t *testing.T) {
		encoded := createJWT(t, map[string]interface{}{"jti": "urn:uuid:1", "vc": vc})

		record, err := gate.Normalize(Received{Format: JWTVCJSON, Encoded: encoded, ID: "given"})

		require.NoError(t, err)
		assert.Equal(t, "given", record.Hash)
	})
	t.Run("errors", func(t *testing.T) {
		testCases := []struct {
			name     string
			received Received
		}{
			{"not a JWT", Received{Format: JWTVCJSON, Encoded: "abc"}},
			{"no vc claim", Received{Format: EBSI, Encoded: createJWT(t, map[string]interface{}{"sub": "x"})}},
			{"jwt_vc not a JWT", Received{Format: JWTVC, Encoded: "a.b"}},
			{"w3cvc not JSON", Received{Format: W3CVC, Encoded: "a.b.c"}},
			{"unknown format", Received{Format: "mso_mdoc", Encoded: "x"}},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := gate.Normalize(testCase.received)

				assert.ErrorIs(t, err, core.ErrMalformedInput)
			})
		}
	})
}

func TestGate_Store(t *testing.T) {
	ctx := context.Background()
	vc := map[string]interface{}{"type": []interface{}{"VerifiableCredential"}}

	t.Run("ok", func(t *testing.T) {
		gate, store := newTestGate(t)
		encoded := createJWT(t, map[string]interface{}{"jti": "1", "vc": vc})

		record, err := gate.Store(ctx, Received{Format: JWTVCJSON, Status: Signed, Encoded: encoded}, false)

		require.NoError(t, err)
		stored, err := store.Get(ctx, record.Hash)
		require.NoError(t, err)
		assert.Equal(t, encoded, stored.Encoded)
	})
	t.Run("duplicate is rejected and leaves the stored record untouched", func(t *testing.T) {
		gate, store := newTestGate(t)
		first := createJWT(t, map[string]interface{}{"jti": "1", "vc": vc})
		second := createJWT(t, map[string]interface{}{"jti": "1", "vc": vc, "extra": true})
		_, err := gate.Store(ctx, Received{Format: JWTVCJSON, Status: Signed, Encoded: first}, false)
		require.NoError(t, err)

		_, err = gate.Store(ctx, Received{Format: JWTVCJSON, Status: Signed, Encoded: second}, false)

		assert.ErrorIs(t, err, core.ErrDuplicateCredential)
		stored, _ := store.Get(ctx, "1")
		assert.Equal(t, first, stored.Encoded)
	})
	t.Run("replace overwrites", func(t *testing.T) {
		gate, store := newTestGate(t)
		first := createJWT(t, map[string]interface{}{"jti": "1", "vc": vc})
		second := createJWT(t, map[string]interface{}{"jti": "1", "vc": vc, "extra": true})
		_, _ = gate.Store(ctx, Received{Format: JWTVCJSON, Status: Signed, Encoded: first}, false)

		_, err := gate.Store(ctx, Received{Format: JWTVCJSON, Status: Signed, Encoded: second}, true)

		require.NoError(t, err)
		stored, _ := store.Get(ctx, "1")
		assert.Equal(t, second, stored.Encoded)
	})
	t.Run("signed jwt_vc replaces the version to be signed", func(t *testing.T) {
		gate, store := newTestGate(t)
		toBeSigned := createJWT(t, map[string]interface{}{"id": "cred-1"})
		signed := createJWT(t, map[string]interface{}{"id": "cred-1", "proof": "x"})
		_, err := gate.Store(ctx, Received{Format: JWTVC, Status: ToBeSigned, Encoded: toBeSigned}, false)
		require.NoError(t, err)

		_, err = gate.Store(ctx, Received{Format: JWTVC, Status: Signed, Encoded: signed}, false)

		require.NoError(t, err)
		stored, _ := store.Get(ctx, "cred-1")
		assert.Equal(t, "signed", stored.Status)
	})
	t.Run("offered credential must be accepted first", func(t *testing.T) {
		gate, _ := newTestGate(t)

		_, err := gate.Store(ctx, Received{Format: JWTVC, Status: Offered, Encoded: createJWT(t, map[string]interface{}{"id": "1"})}, false)

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
}

func TestGate_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("signed credential is stored", func(t *testing.T) {
		gate, store := newTestGate(t)
		signed := createJWT(t, map[string]interface{}{"id": "cred-1"})
		handler := &testHTTP.Handler{StatusCode: http.StatusOK, ResponseData: Envelope{Credential: signed, ID: "cred-1", Type: "jwt_vc", Status: "signed"}}
		server := httptest.NewServer(handler)
		defer server.Close()

		record, err := gate.Accept(ctx, Received{Format: JWTVC, Status: Offered, ID: "cred-1"}, server.URL+"/credential/cred-1")

		require.NoError(t, err)
		assert.Equal(t, "cred-1", record.Hash)
		_, err = store.Get(ctx, "cred-1")
		assert.NoError(t, err)
		var request map[string]interface{}
		require.NoError(t, json.Unmarshal(handler.RequestData, &request))
		assert.Equal(t, "jwt_vc", request["format"])
		proof := request["proof"].(map[string]interface{})
		assert.Equal(t, "jwt", proof["proof_type"])
		token, err := jwt.Decode(proof["jwt"].(string))
		require.NoError(t, err)
		assert.Equal(t, server.URL, token.ClaimString("aud"))
		assert.Equal(t, "openid4vci-proof+jwt", token.HeaderString("typ"))
		assert.NotEmpty(t, token.ClaimString("nonce"))
	})
	t.Run("issuer keeps the credential offered", func(t *testing.T) {
		gate, _ := newTestGate(t)
		handler := &testHTTP.Handler{StatusCode: http.StatusOK, ResponseData: Envelope{Credential: "a.b.c", Status: "offered"}}
		server := httptest.NewServer(handler)
		defer server.Close()

		_, err := gate.Accept(ctx, Received{Format: JWTVC, Status: Offered}, server.URL)

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
	t.Run("issuer error", func(t *testing.T) {
		gate, _ := newTestGate(t)
		server := httptest.NewServer(&testHTTP.Handler{StatusCode: http.StatusBadRequest})
		defer server.Close()

		_, err := gate.Accept(ctx, Received{Format: JWTVC, Status: Offered}, server.URL)

		assert.ErrorIs(t, err, core.ErrNetwork)
	})
	t.Run("invalid URL", func(t *testing.T) {
		gate, _ := newTestGate(t)

		_, err := gate.Accept(ctx, Received{Format: JWTVC, Status: Offered}, "openid://")

		assert.ErrorIs(t, err, core.ErrMalformedInput)
	})
}

func TestGate_SendDID(t *testing.T) {
	ctx := context.Background()
	gate, store := newTestGate(t)
	toBeSigned := createJWT(t, map[string]interface{}{"id": "cred-1"})
	handler := &testHTTP.Handler{StatusCode: http.StatusOK, ResponseData: Envelope{Credential: toBeSigned, ID: "cred-1", Type: "jwt_vc", Status: "tobesigned"}}
	server := httptest.NewServer(handler)
	defer server.Close()

	t.Run("ok", func(t *testing.T) {
		record, err := gate.SendDID(ctx, Received{Format: JWTVC, Status: Offered, ID: "cred-1"}, server.URL+"/some/page")

		require.NoError(t, err)
		assert.Equal(t, "tobesigned", record.Status)
		assert.Equal(t, "/apiuser/senddid/cred-1", handler.Request.URL.Path)
		keyPair, _ := didkey.NewManager(store).GetOrCreate(ctx)
		assert.JSONEq(t, `{"did":"`+keyPair.DID.String()+`"}`, string(handler.RequestData))
	})
	t.Run("no id", func(t *testing.T) {
		_, err := gate.SendDID(ctx, Received{Format: JWTVC, Status: Offered}, server.URL)

		assert.ErrorIs(t, err, core.ErrMalformedInput)
	})
}

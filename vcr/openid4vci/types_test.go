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

package openid4vci

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialOffer_Types(t *testing.T) {
	t.Run("credential object", func(t *testing.T) {
		var offer CredentialOffer
		err := json.Unmarshal([]byte(`{"credential_issuer":"https://issuer.example.com","credentials":[{"format":"jwt_vc","types":["VerifiableCredential","LEARCredentialEmployee"]}]}`), &offer)
		require.NoError(t, err)

		assert.Equal(t, []string{"VerifiableCredential", "LEARCredentialEmployee"}, offer.Types())
		assert.Equal(t, "jwt_vc", offer.Credentials[0].Format)
	})
	t.Run("credential by reference", func(t *testing.T) {
		var offer CredentialOffer
		err := json.Unmarshal([]byte(`{"credential_issuer":"https://issuer.example.com","credentials":["UniversityDegree"]}`), &offer)
		require.NoError(t, err)

		assert.Equal(t, []string{"UniversityDegree"}, offer.Types())
	})
	t.Run("credential configuration ids", func(t *testing.T) {
		offer := CredentialOffer{CredentialConfigurationIDs: []string{"PID"}}

		assert.Equal(t, []string{"PID"}, offer.Types())
	})
	t.Run("nothing offered", func(t *testing.T) {
		assert.Nil(t, CredentialOffer{}.Types())
	})
	t.Run("invalid credential entry", func(t *testing.T) {
		var offer CredentialOffer
		err := json.Unmarshal([]byte(`{"credentials":[1]}`), &offer)

		assert.Error(t, err)
	})
}

func TestPreAuthorizedCodeGrant_RequiresTxCode(t *testing.T) {
	assert.False(t, PreAuthorizedCodeGrant{}.RequiresTxCode())
	assert.True(t, PreAuthorizedCodeGrant{UserPinRequired: true}.RequiresTxCode())
	assert.True(t, PreAuthorizedCodeGrant{TxCode: &TxCode{Length: 4}}.RequiresTxCode())
}

func TestCredentialResponse(t *testing.T) {
	t.Run("JWT credential", func(t *testing.T) {
		var response CredentialResponse
		require.NoError(t, json.Unmarshal([]byte(`{"format":"jwt_vc_json","credential":"a.b.c","c_nonce":"n"}`), &response))

		encoded, err := response.EncodedCredential()

		require.NoError(t, err)
		assert.Equal(t, "a.b.c", encoded)
		assert.False(t, response.Deferred())
	})
	t.Run("JSON credential", func(t *testing.T) {
		var response CredentialResponse
		require.NoError(t, json.Unmarshal([]byte(`{"credential":{"id":"1"}}`), &response))

		encoded, err := response.EncodedCredential()

		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1"}`, encoded)
	})
	t.Run("deferred", func(t *testing.T) {
		var response CredentialResponse
		require.NoError(t, json.Unmarshal([]byte(`{"acceptance_token":"at","credential":null}`), &response))

		assert.True(t, response.Deferred())
		assert.False(t, response.HasCredential())
		_, err := response.EncodedCredential()
		assert.EqualError(t, err, "credential response does not contain a credential")
	})
}

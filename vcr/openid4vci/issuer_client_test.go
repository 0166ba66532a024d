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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	testHTTP "github.com/nuts-foundation/nuts-wallet/test/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuerClient_Authorize(t *testing.T) {
	ctx := context.Background()
	handler := &testHTTP.Handler{StatusCode: http.StatusFound}
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewIssuerClient(newTestProtocolClient())

	t.Run("redirect", func(t *testing.T) {
		handler.ResponseHeader = http.Header{"Location": []string{"openid://?response_type=id_token&state=s&nonce=n"}}

		location, err := client.Authorize(ctx, server.URL+"/authorize?tenant=1", url.Values{"response_type": []string{"code"}})

		require.NoError(t, err)
		assert.Equal(t, "id_token", location.Query().Get("response_type"))
		assert.Equal(t, "code", handler.RequestQuery.Get("response_type"))
		assert.Equal(t, "1", handler.RequestQuery.Get("tenant"))
		assert.Equal(t, http.MethodGet, handler.Request.Method)
	})
	t.Run("relative redirect", func(t *testing.T) {
		handler.ResponseHeader = http.Header{"Location": []string{"/callback?code=abc"}}

		location, err := client.Authorize(ctx, server.URL+"/authorize", nil)

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/callback?code=abc", location.String())
	})
	t.Run("no redirect", func(t *testing.T) {
		handler.StatusCode = http.StatusOK
		handler.ResponseHeader = nil
		defer func() { handler.StatusCode = http.StatusFound }()

		_, err := client.Authorize(ctx, server.URL+"/authorize", nil)

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
	t.Run("redirect without Location", func(t *testing.T) {
		handler.ResponseHeader = nil

		_, err := client.Authorize(ctx, server.URL+"/authorize", nil)

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
	t.Run("error response", func(t *testing.T) {
		handler.StatusCode = http.StatusInternalServerError
		defer func() { handler.StatusCode = http.StatusFound }()

		_, err := client.Authorize(ctx, server.URL+"/authorize", nil)

		assert.ErrorIs(t, err, core.ErrNetwork)
	})
}

func TestIssuerClient_SubmitIDToken(t *testing.T) {
	handler := &testHTTP.Handler{
		StatusCode:     http.StatusFound,
		ResponseHeader: http.Header{"Location": []string{"openid://?code=the-code&state=s"}},
	}
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewIssuerClient(newTestProtocolClient())

	location, err := client.SubmitIDToken(context.Background(), server.URL+"/direct_post", "id.token.jwt", "s")

	require.NoError(t, err)
	assert.Equal(t, "the-code", location.Query().Get("code"))
	form, _ := url.ParseQuery(string(handler.RequestData))
	assert.Equal(t, "id.token.jwt", form.Get("id_token"))
	assert.Equal(t, "s", form.Get("state"))
	assert.Equal(t, "application/x-www-form-urlencoded", handler.RequestHeaders.Get("Content-Type"))
}

func TestIssuerClient_RequestPreAuthorizedToken(t *testing.T) {
	ctx := context.Background()
	handler := &testHTTP.Handler{StatusCode: http.StatusOK}
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewIssuerClient(newTestProtocolClient())

	t.Run("ok", func(t *testing.T) {
		handler.ResponseData = (&oauth.TokenResponse{AccessToken: "access", TokenType: "bearer"}).With(oauth.CNonceParam, "nonce")

		response, err := client.RequestPreAuthorizedToken(ctx, server.URL+"/token", "pre-auth", "1234")

		require.NoError(t, err)
		assert.Equal(t, "access", response.AccessToken)
		assert.Equal(t, "nonce", response.CNonce())
		form, _ := url.ParseQuery(string(handler.RequestData))
		assert.Equal(t, oauth.PreAuthorizedCodeGrantType, form.Get("grant_type"))
		assert.Equal(t, "pre-auth", form.Get("pre-authorized_code"))
		assert.Equal(t, "1234", form.Get("tx_code"))
	})
	t.Run("without tx_code", func(t *testing.T) {
		handler.ResponseData = oauth.TokenResponse{AccessToken: "access"}

		_, err := client.RequestPreAuthorizedToken(ctx, server.URL+"/token", "pre-auth", "")

		require.NoError(t, err)
		form, _ := url.ParseQuery(string(handler.RequestData))
		assert.NotContains(t, form, "tx_code")
	})
	t.Run("rejected tx_code", func(t *testing.T) {
		handler.StatusCode = http.StatusForbidden
		handler.ResponseData = nil
		defer func() { handler.StatusCode = http.StatusOK }()

		_, err := client.RequestPreAuthorizedToken(ctx, server.URL+"/token", "pre-auth", "0000")

		assert.ErrorIs(t, err, core.ErrNetwork)
		var oauthErr Error
		require.True(t, errors.As(err, &oauthErr))
		assert.Equal(t, http.StatusForbidden, oauthErr.StatusCode)
	})
	t.Run("OAuth2 error", func(t *testing.T) {
		handler.StatusCode = http.StatusBadRequest
		handler.ResponseData = map[string]string{"error": "invalid_grant"}
		defer func() { handler.StatusCode = http.StatusOK }()

		_, err := client.RequestPreAuthorizedToken(ctx, server.URL+"/token", "pre-auth", "")

		var oauthErr Error
		require.True(t, errors.As(err, &oauthErr))
		assert.Equal(t, InvalidGrant, oauthErr.Code)
	})
	t.Run("no access token", func(t *testing.T) {
		handler.ResponseData = map[string]string{"token_type": "bearer"}

		_, err := client.RequestPreAuthorizedToken(ctx, server.URL+"/token", "pre-auth", "")

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
}

func TestIssuerClient_RequestCredential(t *testing.T) {
	ctx := context.Background()
	handler := &testHTTP.Handler{StatusCode: http.StatusOK}
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewIssuerClient(newTestProtocolClient())
	request := CredentialRequest{
		Types:  []string{"VerifiableCredential"},
		Format: CredentialFormatJWTVCJSON,
		Proof:  &CredentialRequestProof{ProofType: ProofTypeJWT, Jwt: "proof.jwt"},
	}

	t.Run("ok", func(t *testing.T) {
		handler.ResponseData = map[string]string{"format": "jwt_vc_json", "credential": "a.b.c"}

		response, err := client.RequestCredential(ctx, server.URL+"/credential", request, "access")

		require.NoError(t, err)
		encoded, _ := response.EncodedCredential()
		assert.Equal(t, "a.b.c", encoded)
		assert.Equal(t, "Bearer access", handler.RequestHeaders.Get("Authorization"))
		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(handler.RequestData, &sent))
		assert.Equal(t, "jwt_vc_json", sent["format"])
		assert.Equal(t, map[string]interface{}{"proof_type": "jwt", "jwt": "proof.jwt"}, sent["proof"])
	})
	t.Run("invalid proof", func(t *testing.T) {
		handler.StatusCode = http.StatusBadRequest
		handler.ResponseData = map[string]string{"error": "invalid_proof"}
		defer func() { handler.StatusCode = http.StatusOK }()

		_, err := client.RequestCredential(ctx, server.URL+"/credential", request, "access")

		var oauthErr Error
		require.True(t, errors.As(err, &oauthErr))
		assert.Equal(t, InvalidProof, oauthErr.Code)
	})
	t.Run("not JSON", func(t *testing.T) {
		handler.ResponseData = "a.b.c"

		_, err := client.RequestCredential(ctx, server.URL+"/credential", request, "access")

		assert.ErrorIs(t, err, core.ErrProtocolViolation)
	})
}

func TestIssuerClient_RequestDeferredCredential(t *testing.T) {
	handler := &testHTTP.Handler{StatusCode: http.StatusOK, ResponseData: map[string]string{"acceptance_token": "at2"}}
	server := httptest.NewServer(handler)
	defer server.Close()
	client := NewIssuerClient(newTestProtocolClient())

	response, err := client.RequestDeferredCredential(context.Background(), server.URL+"/credential_deferred", "at1")

	require.NoError(t, err)
	assert.True(t, response.Deferred())
	assert.Equal(t, "Bearer at1", handler.RequestHeaders.Get("Authorization"))
	assert.Equal(t, http.MethodPost, handler.Request.Method)
}

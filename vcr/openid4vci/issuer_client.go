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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
)

//go:generate mockgen -destination=mock.go -package=openid4vci -source=issuer_client.go

// IssuerClient defines the calls the wallet makes to a credential issuer and its authorization server.
type IssuerClient interface {
	// Authorize sends the authorization request to the authorization endpoint and returns the URL it redirects to.
	Authorize(ctx context.Context, authorizationEndpoint string, params url.Values) (*url.URL, error)
	// SubmitIDToken posts the ID token response to the redirect_uri of an ID token request and returns the URL it redirects to.
	SubmitIDToken(ctx context.Context, redirectURI string, idToken string, state string) (*url.URL, error)
	// RequestAccessToken requests an access token using the given grant parameters.
	RequestAccessToken(ctx context.Context, tokenEndpoint string, params url.Values) (*oauth.TokenResponse, error)
	// RequestPreAuthorizedToken requests an access token using the pre-authorized_code grant.
	// A rejected transaction code results in an Error with StatusCode 403.
	RequestPreAuthorizedToken(ctx context.Context, tokenEndpoint string, preAuthorizedCode string, txCode string) (*oauth.TokenResponse, error)
	// RequestCredential requests a credential from the credential endpoint.
	RequestCredential(ctx context.Context, credentialEndpoint string, request CredentialRequest, accessToken string) (*CredentialResponse, error)
	// RequestDeferredCredential requests a credential that was not immediately available, using the acceptance token.
	RequestDeferredCredential(ctx context.Context, deferredCredentialEndpoint string, acceptanceToken string) (*CredentialResponse, error)
}

var _ IssuerClient = (*httpIssuerClient)(nil)

// NewIssuerClient creates an IssuerClient that uses the given HTTP client.
// The HTTP client must not follow redirects, since the authorization responses are read from the Location header.
func NewIssuerClient(httpClient core.HTTPRequestDoer) IssuerClient {
	return &httpIssuerClient{httpClient: httpClient}
}

type httpIssuerClient struct {
	httpClient core.HTTPRequestDoer
}

func (c httpIssuerClient) Authorize(ctx context.Context, authorizationEndpoint string, params url.Values) (*url.URL, error) {
	endpoint, err := url.Parse(authorizationEndpoint)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	requestURL := core.AddQueryParams(*endpoint, params)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	return c.redirectLocation(httpRequest)
}

func (c httpIssuerClient) SubmitIDToken(ctx context.Context, redirectURI string, idToken string, state string) (*url.URL, error) {
	values := url.Values{}
	values.Set(oauth.IDTokenParam, idToken)
	values.Set(oauth.StateParam, state)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, redirectURI, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.redirectLocation(httpRequest)
}

func (c httpIssuerClient) RequestPreAuthorizedToken(ctx context.Context, tokenEndpoint string, preAuthorizedCode string, txCode string) (*oauth.TokenResponse, error) {
	values := url.Values{}
	values.Set(oauth.GrantTypeParam, oauth.PreAuthorizedCodeGrantType)
	values.Set(oauth.PreAuthorizedCodeParam, preAuthorizedCode)
	if txCode != "" {
		values.Set(oauth.TxCodeParam, txCode)
	}
	return c.RequestAccessToken(ctx, tokenEndpoint, values)
}

func (c httpIssuerClient) RequestAccessToken(ctx context.Context, tokenEndpoint string, params url.Values) (*oauth.TokenResponse, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpRequest.Header.Set("Accept", "application/json")
	var tokenResponse oauth.TokenResponse
	if err := c.do(httpRequest, &tokenResponse); err != nil {
		return nil, fmt.Errorf("request access token error: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "token response does not contain an access token")
	}
	return &tokenResponse, nil
}

func (c httpIssuerClient) RequestCredential(ctx context.Context, credentialEndpoint string, request CredentialRequest, accessToken string) (*CredentialResponse, error) {
	requestBody, _ := json.Marshal(request)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, credentialEndpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+accessToken)
	httpRequest.Header.Set("Content-Type", "application/json")
	var credentialResponse CredentialResponse
	if err := c.do(httpRequest, &credentialResponse); err != nil {
		return nil, fmt.Errorf("credential request failed: %w", err)
	}
	return &credentialResponse, nil
}

func (c httpIssuerClient) RequestDeferredCredential(ctx context.Context, deferredCredentialEndpoint string, acceptanceToken string) (*CredentialResponse, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, deferredCredentialEndpoint, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+acceptanceToken)
	var credentialResponse CredentialResponse
	if err := c.do(httpRequest, &credentialResponse); err != nil {
		return nil, fmt.Errorf("deferred credential request failed: %w", err)
	}
	return &credentialResponse, nil
}

// do executes the request and unmarshals the JSON response into result.
// Non-2xx responses are returned as Error, wrapped in core.ErrNetwork.
func (c httpIssuerClient) do(httpRequest *http.Request, result interface{}) error {
	responseBody, err := doRequest(c.httpClient, httpRequest)
	if err != nil {
		var httpErr core.HttpError
		if errors.As(err, &httpErr) {
			return core.WrapError(core.ErrNetwork, parseError(httpErr.StatusCode, httpErr.ResponseBody))
		}
		return err
	}
	if err := json.Unmarshal(responseBody, result); err != nil {
		return core.Errorf(core.ErrProtocolViolation, "%T JSON unmarshal error: %w", result, err)
	}
	return nil
}

// redirectLocation executes the request and returns the URL the server redirects to.
func (c httpIssuerClient) redirectLocation(httpRequest *http.Request) (*url.URL, error) {
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, fmt.Errorf("http request error (%s): %w", httpRequest.URL, err))
	}
	defer httpResponse.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(httpResponse.Body, maxResponseSize))
	if httpResponse.StatusCode < 300 || httpResponse.StatusCode > 399 {
		log.Logger().Debugf("Expected redirect from %s, got HTTP %d", httpRequest.URL, httpResponse.StatusCode)
		if !core.IsSuccess(httpResponse.StatusCode) {
			return nil, core.Errorf(core.ErrNetwork, "server returned HTTP %d (%s)", httpResponse.StatusCode, httpRequest.URL.Host)
		}
		return nil, core.Errorf(core.ErrProtocolViolation, "expected a redirect from %s, got HTTP %d", httpRequest.URL.Host, httpResponse.StatusCode)
	}
	location := httpResponse.Header.Get("Location")
	if location == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "redirect from %s has no Location header", httpRequest.URL.Host)
	}
	result, err := httpRequest.URL.Parse(location)
	if err != nil {
		return nil, core.Errorf(core.ErrProtocolViolation, "invalid redirect location: %w", err)
	}
	return result, nil
}

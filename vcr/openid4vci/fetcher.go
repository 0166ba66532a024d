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
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
)

// maxResponseSize limits the size of documents read from remote parties.
const maxResponseSize = 1024 * 1024

// Fetcher retrieves metadata, credential offers and request objects from remote parties.
// It does not retry: a failed fetch fails the current exchange.
type Fetcher struct {
	httpClient core.HTTPRequestDoer
}

// NewFetcher creates a Fetcher that uses the given HTTP client, which may be a relay client.
func NewFetcher(httpClient core.HTTPRequestDoer) *Fetcher {
	return &Fetcher{httpClient: httpClient}
}

// IssuerMetadata fetches the Credential Issuer Metadata of the given issuer.
// If the issuer does not specify an authorization server, the issuer itself is assumed to be the authorization server.
func (f Fetcher) IssuerMetadata(ctx context.Context, credentialIssuer string) (*CredentialIssuerMetadata, error) {
	result := CredentialIssuerMetadata{}
	if err := f.GetJSON(ctx, core.JoinURLPaths(credentialIssuer, oauth.OpenIdCredIssuerWellKnown), &result); err != nil {
		return nil, fmt.Errorf("unable to load Credential Issuer Metadata (identifier=%s): %w", credentialIssuer, err)
	}
	if result.CredentialEndpoint == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "invalid credential issuer metadata (identifier=%s): does not contain credential endpoint", credentialIssuer)
	}
	if result.CredentialIssuer == "" {
		result.CredentialIssuer = credentialIssuer
	}
	if result.AuthorizationServer == "" {
		result.AuthorizationServer = result.CredentialIssuer
	}
	return &result, nil
}

// AuthorizationServerMetadata fetches the OpenID configuration of the given authorization server.
func (f Fetcher) AuthorizationServerMetadata(ctx context.Context, authorizationServer string) (*OAuthAuthorizationServerMetadata, error) {
	result := OAuthAuthorizationServerMetadata{}
	if err := f.GetJSON(ctx, core.JoinURLPaths(authorizationServer, oauth.OpenIdConfigurationWellKnown), &result); err != nil {
		return nil, fmt.Errorf("unable to load Authorization Server Metadata (identifier=%s): %w", authorizationServer, err)
	}
	if result.TokenEndpoint == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "invalid authorization server metadata (identifier=%s): does not contain token endpoint", authorizationServer)
	}
	return &result, nil
}

// CredentialOffer fetches the credential offer referred to by credential_offer_uri, and validates it.
func (f Fetcher) CredentialOffer(ctx context.Context, offerURI string) (*CredentialOffer, error) {
	data, err := f.get(ctx, offerURI, "application/json")
	if err != nil {
		return nil, fmt.Errorf("unable to load credential offer: %w", err)
	}
	return ParseCredentialOffer(data)
}

// GetJSON fetches the document at the given URL and unmarshals it into target.
func (f Fetcher) GetJSON(ctx context.Context, targetURL string, target interface{}) error {
	data, err := f.get(ctx, targetURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return core.Errorf(core.ErrMalformedInput, "%T JSON unmarshal error (url=%s): %w", target, targetURL, err)
	}
	return nil
}

// GetText fetches the document at the given URL as text, e.g. a request object JWT.
func (f Fetcher) GetText(ctx context.Context, targetURL string) (string, error) {
	data, err := f.get(ctx, targetURL, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f Fetcher) get(ctx context.Context, targetURL string, accept string) ([]byte, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	if accept != "" {
		httpRequest.Header.Set("Accept", accept)
	}
	return doRequest(f.httpClient, httpRequest)
}

// doRequest executes the request and returns the response body.
// Transport errors and non-2xx responses are returned as core.ErrNetwork, the latter wrapping a core.HttpError.
func doRequest(httpClient core.HTTPRequestDoer, httpRequest *http.Request) ([]byte, error) {
	httpResponse, err := httpClient.Do(httpRequest)
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, fmt.Errorf("http request error (%s): %w", httpRequest.URL, err))
	}
	defer httpResponse.Body.Close()
	if err := core.TestResponseCodeWithLog(httpResponse, log.Logger()); err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	data, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseSize+1))
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, fmt.Errorf("read error (%s): %w", httpRequest.URL, err))
	}
	if len(data) > maxResponseSize {
		return nil, core.Errorf(core.ErrProtocolViolation, "response exceeds %d bytes (%s)", maxResponseSize, httpRequest.URL)
	}
	return data, nil
}

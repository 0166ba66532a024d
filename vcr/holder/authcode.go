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

package holder

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/vcr/credential"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

// authorizationCodeFlow authenticates the wallet to the authorization server with a self-issued ID token,
// and exchanges the resulting authorization code for an access token.
func (i *Issuance) authorizationCodeFlow(ctx context.Context, flow *Flow, keyPair *didkey.KeyPair) (*oauth.TokenResponse, error) {
	holderDID := keyPair.DID.String()
	codeVerifier := crypto.GenerateCodeVerifier()
	params, err := i.authorizationRequestParams(flow, holderDID, codeVerifier)
	if err != nil {
		return nil, err
	}
	location, err := i.client.Authorize(ctx, flow.AuthServerMetadata.AuthorizationEndpoint, params)
	if err != nil {
		return nil, err
	}

	// the authorization server requests an ID token to authenticate the wallet
	request := location.Query()
	switch responseType := request.Get(oauth.ResponseTypeParam); responseType {
	case oauth.IDTokenResponseType:
	case oauth.VPTokenResponseType:
		return nil, core.Errorf(core.ErrProtocolViolation, "Response type vp_token not implemented yet")
	default:
		return nil, core.Errorf(core.ErrProtocolViolation, "Invalid response_type: %s", responseType)
	}
	redirectURI := request.Get(oauth.RedirectURIParam)
	if redirectURI == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "ID token request does not contain redirect_uri")
	}
	idToken, err := createIDToken(ctx, keyPair, request.Get(oauth.ClientIDParam), request.Get(oauth.StateParam), request.Get(oauth.NonceParam))
	if err != nil {
		return nil, err
	}
	location, err = i.client.SubmitIDToken(ctx, redirectURI, idToken, request.Get(oauth.StateParam))
	if err != nil {
		return nil, err
	}
	code := location.Query().Get(oauth.CodeParam)
	if code == "" {
		if errorCode := location.Query().Get(oauth.ErrorParam); errorCode != "" {
			return nil, core.WrapError(core.ErrProtocolViolation, oauth.Error{Code: errorCode, Description: location.Query().Get(oauth.ErrorDescriptionParam)})
		}
		return nil, core.Errorf(core.ErrProtocolViolation, "authorization response does not contain a code")
	}

	tokenRequest := url.Values{}
	tokenRequest.Set(oauth.GrantTypeParam, oauth.AuthorizationCodeGrantType)
	tokenRequest.Set(oauth.ClientIDParam, holderDID)
	tokenRequest.Set(oauth.CodeParam, code)
	tokenRequest.Set(oauth.CodeVerifierParam, codeVerifier)
	return i.client.RequestAccessToken(ctx, flow.AuthServerMetadata.TokenEndpoint, tokenRequest)
}

func (i *Issuance) authorizationRequestParams(flow *Flow, holderDID string, codeVerifier string) (url.Values, error) {
	details := []openid4vci.AuthorizationDetail{{
		Type:   openid4vci.AuthorizationDetailsTypeCredential,
		Format: openid4vci.CredentialFormatJWTVC,
		Types:  flow.Offer.Types(),
	}}
	// the issuer relies on a separate authorization server, which has to know for which issuer the token is
	if flow.IssuerMetadata.AuthorizationServer != flow.IssuerMetadata.CredentialIssuer {
		details[0].Locations = []string{flow.IssuerMetadata.CredentialIssuer}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	clientMetadataJSON, err := json.Marshal(oauth.ClientMetadata{
		VPFormatsSupported:     credential.DefaultSupportedFormats(),
		ResponseTypesSupported: []string{oauth.VPTokenResponseType, oauth.IDTokenResponseType},
		AuthorizationEndpoint:  i.config.RedirectURI,
	})
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set(oauth.ResponseTypeParam, oauth.CodeResponseType)
	params.Set(oauth.ScopeParam, "openid")
	if issuerState := flow.Offer.Grants.AuthorizationCode.IssuerState; issuerState != "" {
		params.Set(oauth.IssuerStateParam, issuerState)
	}
	params.Set(oauth.ClientIDParam, holderDID)
	params.Set(oauth.AuthorizationDetailsParam, string(detailsJSON))
	params.Set(oauth.RedirectURIParam, i.config.RedirectURI)
	params.Set(oauth.NonceParam, crypto.GenerateNonce())
	params.Set(oauth.CodeChallengeParam, crypto.CodeChallengeS256(codeVerifier))
	params.Set(oauth.CodeChallengeMethodParam, oauth.CodeChallengeMethodS256)
	params.Set(oauth.ClientMetadataParam, string(clientMetadataJSON))
	return params, nil
}

// createIDToken creates the self-issued ID token the wallet authenticates with.
func createIDToken(ctx context.Context, keyPair *didkey.KeyPair, audience string, state string, nonce string) (string, error) {
	iat := nowFunc().Add(-2 * time.Second)
	header := map[string]interface{}{
		"typ": "JWT",
		"alg": "ES256",
		"kid": keyPair.KeyID(),
	}
	payload := map[string]interface{}{
		"iss":   keyPair.DID.String(),
		"sub":   keyPair.DID.String(),
		"aud":   audience,
		"iat":   iat.Unix(),
		"exp":   iat.Add(openid4vci.ProofValidity).Unix(),
		"state": state,
		"nonce": nonce,
	}
	idToken, err := keyPair.SignJWT(ctx, header, payload)
	if err != nil {
		return "", core.WrapError(core.ErrCrypto, err)
	}
	return idToken, nil
}

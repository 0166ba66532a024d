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

// Package holder implements the wallet side of credential issuance.
package holder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/credential"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

// CredentialOfferScheme is the URL scheme of credential offers presented as QR code or deep link.
const CredentialOfferScheme = "openid-credential-offer"

// ErrTxCodeRejected is returned when the authorization server rejects the transaction code of a pre-authorized code grant.
// The flow can't continue; the user has to scan the offer again.
var ErrTxCodeRejected = errors.New("the transaction code was rejected")

var nowFunc = time.Now

// Config contains the settings of the issuance flows.
type Config struct {
	// RedirectURI is the redirect_uri the wallet sends in authorization requests.
	RedirectURI string
	// DeferredAttempts is the maximum number of polls of the deferred credential endpoint.
	DeferredAttempts uint
	// DeferredInterval is the time between polls of the deferred credential endpoint.
	DeferredInterval time.Duration
}

// DefaultConfig returns the default issuance settings.
func DefaultConfig() Config {
	return Config{
		RedirectURI:      "openid:",
		DeferredAttempts: 10,
		DeferredInterval: time.Second,
	}
}

// Issuance runs OpenID4VCI issuance flows for the wallet's DID.
type Issuance struct {
	fetcher *openid4vci.Fetcher
	client  openid4vci.IssuerClient
	keys    didkey.KeyManager
	config  Config
}

// NewIssuance creates an Issuance.
func NewIssuance(fetcher *openid4vci.Fetcher, client openid4vci.IssuerClient, keys didkey.KeyManager, config Config) *Issuance {
	return &Issuance{
		fetcher: fetcher,
		client:  client,
		keys:    keys,
		config:  config,
	}
}

// Run prepares and completes the issuance flow for the scanned URL.
func (i *Issuance) Run(ctx context.Context, qrURL string, txCode string) (*credential.Received, error) {
	flow, err := i.Prepare(ctx, qrURL)
	if err != nil {
		return nil, err
	}
	return i.Complete(ctx, flow, txCode)
}

// Prepare resolves the credential offer in the scanned URL, fetches the metadata of the issuer and its authorization server,
// and selects the grant. When the selected grant requires a transaction code, Flow.RequiresTxCode is set,
// so the user can be asked for it before calling Complete.
func (i *Issuance) Prepare(ctx context.Context, qrURL string) (*Flow, error) {
	parsed, err := url.Parse(qrURL)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" && parsed.Scheme != CredentialOfferScheme {
		return nil, core.Errorf(core.ErrMalformedInput, "unsupported URL scheme: %s", parsed.Scheme)
	}
	flow := &Flow{Source: qrURL}
	query := parsed.Query()
	switch {
	case query.Get(openid4vci.CredentialOfferURIParam) != "":
		flow.Offer, err = i.fetcher.CredentialOffer(ctx, query.Get(openid4vci.CredentialOfferURIParam))
	case query.Get(openid4vci.CredentialOfferParam) != "":
		flow.Offer, err = openid4vci.ParseCredentialOffer([]byte(query.Get(openid4vci.CredentialOfferParam)))
	case parsed.Scheme == CredentialOfferScheme:
		return nil, core.Errorf(core.ErrMalformedInput, "credential offer URL contains no credential offer")
	default:
		return i.prepareLegacy(ctx, flow)
	}
	if err != nil {
		return nil, err
	}
	flow.transition(OfferReceived)

	flow.IssuerMetadata, err = i.fetcher.IssuerMetadata(ctx, flow.Offer.CredentialIssuer)
	if err != nil {
		return nil, err
	}
	flow.transition(IssuerMetadataFetched)

	flow.AuthServerMetadata, err = i.fetcher.AuthorizationServerMetadata(ctx, flow.IssuerMetadata.AuthorizationServer)
	if err != nil {
		return nil, err
	}
	flow.transition(AuthServerMetadataFetched)

	if err = selectGrant(flow); err != nil {
		return nil, err
	}
	flow.transition(GrantSelected)
	return flow, nil
}

// selectGrant prefers the authorization_code grant over the pre-authorized_code grant.
func selectGrant(flow *Flow) error {
	grants := flow.Offer.Grants
	if grants == nil {
		return core.Errorf(core.ErrProtocolViolation, "credential offer contains no grants")
	}
	switch {
	case grants.AuthorizationCode != nil:
		flow.GrantType = oauth.AuthorizationCodeGrantType
		if flow.AuthServerMetadata.AuthorizationEndpoint == "" {
			return core.Errorf(core.ErrProtocolViolation, "authorization server metadata does not contain authorization endpoint")
		}
	case grants.PreAuthorizedCode != nil:
		flow.GrantType = oauth.PreAuthorizedCodeGrantType
		flow.RequiresTxCode = grants.PreAuthorizedCode.RequiresTxCode()
	default:
		return core.Errorf(core.ErrProtocolViolation, "Unsupported authorization flow type found in grants")
	}
	return nil
}

// Complete obtains an access token using the selected grant and requests the credential.
// If the issuer defers issuance, the deferred credential endpoint is polled until the credential is available.
func (i *Issuance) Complete(ctx context.Context, flow *Flow, txCode string) (*credential.Received, error) {
	if flow.Legacy != nil {
		return flow.Legacy, nil
	}
	keyPair, err := i.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	var tokenResponse *oauth.TokenResponse
	var format credential.Format
	switch flow.GrantType {
	case oauth.AuthorizationCodeGrantType:
		flow.transition(AuthorizationCodeSubflow)
		tokenResponse, err = i.authorizationCodeFlow(ctx, flow, keyPair)
		format = credential.EBSI
	case oauth.PreAuthorizedCodeGrantType:
		flow.transition(PreAuthorizedSubflow)
		tokenResponse, err = i.preAuthorizedCodeFlow(ctx, flow, txCode)
		format = credential.JWTVCJSON
	default:
		return nil, core.Errorf(core.ErrProtocolViolation, "no grant selected")
	}
	if err != nil {
		return nil, err
	}
	flow.transition(AccessTokenObtained)

	encoded, err := i.requestCredential(ctx, flow, keyPair, tokenResponse)
	if err != nil {
		return nil, err
	}
	flow.transition(CredentialReceived)
	log.Logger().
		WithField(core.LogFieldCredentialIssuer, flow.Offer.CredentialIssuer).
		WithField(core.LogFieldCredentialFormat, format).
		Info("Received VC over OpenID4VCI")
	return &credential.Received{
		Format:  format,
		Status:  credential.Signed,
		Encoded: encoded,
	}, nil
}

func (i *Issuance) preAuthorizedCodeFlow(ctx context.Context, flow *Flow, txCode string) (*oauth.TokenResponse, error) {
	if flow.RequiresTxCode && txCode == "" {
		return nil, core.Errorf(core.ErrMalformedInput, "the issuer requires a transaction code")
	}
	tokenResponse, err := i.client.RequestPreAuthorizedToken(ctx, flow.AuthServerMetadata.TokenEndpoint, flow.Offer.Grants.PreAuthorizedCode.PreAuthorizedCode, txCode)
	if err != nil {
		var oauthErr openid4vci.Error
		if errors.As(err, &oauthErr) && oauthErr.StatusCode == http.StatusForbidden {
			return nil, core.WrapError(ErrTxCodeRejected, err)
		}
		return nil, err
	}
	return tokenResponse, nil
}

func (i *Issuance) requestCredential(ctx context.Context, flow *Flow, keyPair *didkey.KeyPair, tokenResponse *oauth.TokenResponse) (string, error) {
	proof, err := openid4vci.CreateProof(ctx, keyPair, openid4vci.ProofParams{
		KeyID:    keyPair.KeyID(),
		Issuer:   keyPair.DID.String(),
		Audience: flow.IssuerMetadata.CredentialIssuer,
		Nonce:    tokenResponse.CNonce(),
	}, nowFunc())
	if err != nil {
		return "", err
	}
	request := openid4vci.CredentialRequest{
		Types:  flow.Offer.Types(),
		Format: openid4vci.CredentialFormatJWTVCJSON,
		Proof: &openid4vci.CredentialRequestProof{
			ProofType: openid4vci.ProofTypeJWT,
			Jwt:       proof,
		},
	}
	flow.transition(CredentialRequested)
	response, err := i.client.RequestCredential(ctx, flow.IssuerMetadata.CredentialEndpoint, request, tokenResponse.AccessToken)
	if err != nil {
		return "", err
	}
	if !response.HasCredential() && response.Deferred() {
		if flow.IssuerMetadata.DeferredCredentialEndpoint == "" {
			return "", core.Errorf(core.ErrProtocolViolation, "issuer deferred issuance, but has no deferred credential endpoint")
		}
		flow.transition(DeferredPending)
		response, err = i.pollDeferred(ctx, flow.IssuerMetadata.DeferredCredentialEndpoint, response.AcceptanceToken)
		if err != nil {
			return "", err
		}
	}
	encoded, err := response.EncodedCredential()
	if err != nil {
		return "", core.WrapError(core.ErrProtocolViolation, err)
	}
	return encoded, nil
}

func (i *Issuance) prepareLegacy(ctx context.Context, flow *Flow) (*Flow, error) {
	var envelope credential.Envelope
	if err := i.fetcher.GetJSON(ctx, flow.Source, &envelope); err != nil {
		return nil, fmt.Errorf("unable to retrieve credential: %w", err)
	}
	received := envelope.Received()
	if received.Status != credential.Offered && received.Status != credential.Signed {
		return nil, core.Errorf(core.ErrProtocolViolation, "The credential is neither in 'offered' nor 'signed' status")
	}
	if received.Encoded == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "response does not contain a credential")
	}
	flow.Legacy = &received
	flow.transition(CredentialReceived)
	return flow, nil
}

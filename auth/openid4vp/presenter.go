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

// Package openid4vp implements the wallet side of OpenID4VP/SIOPv2 presentation.
package openid4vp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-wallet/auth/log"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto/jwt"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

const (
	// OpenID4VPScheme is the URL scheme of OpenID4VP authorization requests.
	OpenID4VPScheme = "openid4vp"
	// OpenIDScheme is the URL scheme of SIOPv2 authorization requests.
	OpenIDScheme = "openid"
	// RequestParam is the parameter name of a request object passed by value. (RFC9101)
	RequestParam = "request"
)

const (
	typePath     = "$.type"
	mandateePath = "$.credentialSubject.mandate.mandatee.id"
)

// maxResponseSize limits the size of verifier responses the wallet reads.
const maxResponseSize = 1024 * 1024

var nowFunc = time.Now

// RequestObjectFetcher retrieves request objects passed by reference.
type RequestObjectFetcher interface {
	GetText(ctx context.Context, targetURL string) (string, error)
}

// Config contains the settings of the presentation flow.
type Config struct {
	// RecentDays limits the candidate credentials to the ones stored in the last number of days.
	RecentDays int
	// ResponseURIAllowList contains the hosts the wallet may send presentations to. If empty, all hosts are allowed.
	ResponseURIAllowList []string
}

// Presenter runs OpenID4VP presentation flows for the wallet's DID.
type Presenter struct {
	fetcher     RequestObjectFetcher
	credentials storage.CredentialStore
	keys        didkey.KeyManager
	sessions    storage.SessionStore
	httpClient  core.HTTPRequestDoer
	config      Config
}

// NewPresenter creates a Presenter.
func NewPresenter(fetcher RequestObjectFetcher, credentials storage.CredentialStore, keys didkey.KeyManager,
	sessions storage.SessionStore, httpClient core.HTTPRequestDoer, config Config) *Presenter {
	return &Presenter{
		fetcher:     fetcher,
		credentials: credentials,
		keys:        keys,
		sessions:    sessions,
		httpClient:  httpClient,
		config:      config,
	}
}

// Start resolves the authorization request in the scanned URL and selects the stored credentials of the requested type.
// Having no matching credential is not an error: the returned request then has no candidates.
func (p *Presenter) Start(ctx context.Context, rawURL string) (*PresentationRequest, error) {
	params, err := p.requestParams(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	request := PresentationRequest{
		ClientID:     params.get(oauth.ClientIDParam),
		ResponseURI:  params.get(oauth.ResponseURIParam),
		ResponseType: params.get(oauth.ResponseTypeParam),
		ResponseMode: params.get(oauth.ResponseModeParam),
		State:        params.get(oauth.StateParam),
		Nonce:        params.get(oauth.NonceParam),
		Scope:        params.get(oauth.ScopeParam),
	}
	if request.ResponseURI == "" {
		request.ResponseURI = params.get(oauth.RedirectURIParam)
	}
	if request.ResponseURI == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "authorization request does not contain response_uri")
	}
	responseURI, err := core.ParseHTTPURL(request.ResponseURI)
	if err != nil {
		return nil, core.WrapError(core.ErrProtocolViolation, err)
	}
	if len(p.config.ResponseURIAllowList) > 0 && !slices.Contains(p.config.ResponseURIAllowList, responseURI.Hostname()) {
		return nil, core.Errorf(core.ErrProtocolViolation, "response_uri host is not allowed: %s", responseURI.Hostname())
	}
	if definition, ok := params[oauth.PresentationDefParam]; ok && definition != nil {
		if request.PresentationDefinition, err = params.raw(oauth.PresentationDefParam); err != nil {
			return nil, core.WrapError(core.ErrMalformedInput, err)
		}
	}
	request.CredentialType = oauth.ScopeType(request.Scope)
	if request.CredentialType == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "Invalid scope specified")
	}

	records, err := p.credentials.Recent(ctx, p.config.RecentDays)
	if err != nil {
		return nil, err
	}
	request.Candidates = make([]storage.CredentialRecord, 0)
	for _, record := range records {
		if hasType(record, request.CredentialType) {
			request.Candidates = append(request.Candidates, record)
		}
	}
	log.Logger().
		WithField(core.LogFieldVerifier, request.Verifier()).
		WithField(core.LogFieldCredentialType, request.CredentialType).
		Infof("Received presentation request (candidates=%d)", len(request.Candidates))
	return &request, nil
}

// requestParams returns the parameters of the authorization request, which are either in the URL,
// or in a request object passed by value or by reference.
func (p *Presenter) requestParams(ctx context.Context, rawURL string) (requestParameters, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	switch parsed.Scheme {
	case OpenID4VPScheme, OpenIDScheme, "https", "http":
	default:
		return nil, core.Errorf(core.ErrMalformedInput, "unsupported URL scheme: %s", parsed.Scheme)
	}
	query := parsed.Query()
	var requestObject string
	switch {
	case query.Get(oauth.RequestURIParam) != "":
		requestObject, err = p.fetcher.GetText(ctx, query.Get(oauth.RequestURIParam))
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve request object: %w", err)
		}
	case query.Get(RequestParam) != "":
		requestObject = query.Get(RequestParam)
	default:
		params := make(requestParameters)
		for key := range query {
			params[key] = query.Get(key)
		}
		return params, nil
	}
	return parseRequestObject(requestObject)
}

// parseRequestObject parses a request object, which is either a JWT or plain JSON.
// The signature of a JWT request object is not verified.
func parseRequestObject(requestObject string) (requestParameters, error) {
	if strings.HasPrefix(requestObject, "{") {
		params := make(requestParameters)
		if err := json.Unmarshal([]byte(requestObject), &params); err != nil {
			return nil, core.Errorf(core.ErrMalformedInput, "invalid request object: %w", err)
		}
		return params, nil
	}
	token, err := jwt.Decode(requestObject)
	if err != nil {
		return nil, err
	}
	log.Logger().
		WithField(core.LogFieldVerifier, token.ClaimString(oauth.ClientIDParam)).
		Warn("Request object signature is not verified, the verifier is not authenticated")
	return token.Payload, nil
}

// Submit presents the selected credential to the verifier, signed by the wallet's DID.
// The nonce is claimed for the duration of the submission. It is released again when no 2xx response arrives, so the submission can be retried.
func (p *Presenter) Submit(ctx context.Context, request PresentationRequest, candidate storage.CredentialRecord) (*SubmissionResult, error) {
	responseURI, err := core.ParseHTTPURL(request.ResponseURI)
	if err != nil {
		return nil, err
	}
	if request.Nonce != "" {
		if err := p.sessions.ClaimNonce(ctx, request.Nonce); err != nil {
			return nil, err
		}
	}
	result, err := p.submit(ctx, request, candidate, responseURI)
	if err != nil {
		if request.Nonce != "" {
			if releaseErr := p.sessions.ReleaseNonce(ctx, request.Nonce); releaseErr != nil {
				log.Logger().WithError(releaseErr).Warn("Failed to release nonce of failed submission")
			}
		}
		return nil, err
	}
	return result, nil
}

func (p *Presenter) submit(ctx context.Context, request PresentationRequest, candidate storage.CredentialRecord, responseURI *url.URL) (*SubmissionResult, error) {
	keyPair, err := p.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	holder := keyPair.DID.String()
	if mandatee, err := jsonpath.Get(mandateePath, candidate.Decoded); err == nil {
		if mandatee != holder {
			return nil, core.Errorf(core.ErrCrypto, "credential is bound to %v, not to the wallet DID", mandatee)
		}
	}
	vpToken, err := createVPToken(ctx, *keyPair, request.Nonce, candidate.Encoded)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set(oauth.VpTokenParam, jwt.EncodeSegment([]byte(vpToken)))
	form.Set(oauth.StateParam, request.State)
	if len(request.PresentationDefinition) > 0 {
		var definition struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(request.PresentationDefinition, &definition)
		submission, _ := json.Marshal(singleCredentialSubmission(definition.ID))
		form.Set(oauth.PresentationSubmissionParam, string(submission))
	}
	result, err := p.postResponse(ctx, responseURI.String(), form)
	if err != nil {
		return nil, err
	}
	result.Origin = core.Origin(responseURI)
	result.State = request.State
	log.Logger().
		WithField(core.LogFieldVerifier, request.Verifier()).
		WithField(core.LogFieldCredentialID, candidate.Hash).
		Infof("Presented credential (authenticatorRequired=%v)", result.AuthenticatorRequired)
	return result, nil
}

func (p *Presenter) postResponse(ctx context.Context, responseURI string, form url.Values) (*SubmissionResult, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpResponse, err := p.httpClient.Do(httpRequest)
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	defer httpResponse.Body.Close()
	if err := core.TestResponseCodeWithLog(httpResponse, log.Logger()); err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	data, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseSize))
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	result := &SubmissionResult{StatusCode: httpResponse.StatusCode}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(data, &result.Payload); err != nil {
		return nil, core.Errorf(core.ErrProtocolViolation, "invalid authorization response from verifier: %w", err)
	}
	result.AuthenticatorRequired = result.Payload["authenticatorRequired"] == "yes"
	if redirectURI, ok := result.Payload[oauth.RedirectURIParam].(string); ok {
		result.RedirectURI = redirectURI
	}
	return result, nil
}

// createVPToken creates a VP JWT containing the encoded credential, signed by the key pair.
func createVPToken(ctx context.Context, keyPair didkey.KeyPair, nonce string, encodedCredential string) (string, error) {
	id := uuid.NewString()
	holder := keyPair.DID.String()
	iat := nowFunc().Unix()
	header := map[string]interface{}{
		"kid": keyPair.KeyID(),
		"typ": "JWT",
		"alg": "ES256",
	}
	payload := map[string]interface{}{
		"jti":   id,
		"sub":   holder,
		"aud":   SelfIssuedAudience,
		"iat":   iat,
		"nbf":   iat,
		"exp":   iat + vpValidity,
		"iss":   holder,
		"nonce": nonce,
		"vp": map[string]interface{}{
			"context":              []string{VPContext},
			"type":                 []string{"VerifiablePresentation"},
			"id":                   id,
			"verifiableCredential": []string{encodedCredential},
			"holder":               holder,
		},
	}
	token, err := keyPair.SignJWT(ctx, header, payload)
	if err != nil {
		return "", core.WrapError(core.ErrCrypto, err)
	}
	return token, nil
}

// hasType returns true if the decoded credential's type is, or contains, the given type.
func hasType(record storage.CredentialRecord, credentialType string) bool {
	value, err := jsonpath.Get(typePath, record.Decoded)
	if err != nil {
		return false
	}
	switch types := value.(type) {
	case string:
		return types == credentialType
	case []interface{}:
		return slices.Contains(types, interface{}(credentialType))
	}
	return false
}

// requestParameters are the parameters of an authorization request.
type requestParameters map[string]interface{}

func (r requestParameters) get(key string) string {
	value, _ := r[key].(string)
	return value
}

// raw returns the parameter as JSON. String values are assumed to contain JSON.
func (r requestParameters) raw(key string) (json.RawMessage, error) {
	if value, ok := r[key].(string); ok {
		if !json.Valid([]byte(value)) {
			return nil, errors.New("invalid JSON in " + key)
		}
		return json.RawMessage(value), nil
	}
	return json.Marshal(r[key])
}

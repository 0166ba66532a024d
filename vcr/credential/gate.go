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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
	"github.com/nuts-foundation/nuts-wallet/crypto/jwt"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
)

// sendDIDPath is the path on the issuer's origin where the holder DID is sent for offered jwt_vc credentials.
const sendDIDPath = "/apiuser/senddid/"

var nowFunc = time.Now

// Gate normalizes received credentials and decides whether and how they are stored.
type Gate struct {
	store      storage.CredentialStore
	keys       didkey.KeyManager
	httpClient core.HTTPRequestDoer
}

// NewGate creates a Gate storing credentials in the given store.
// The key manager and HTTP client are used to accept offered credentials.
func NewGate(store storage.CredentialStore, keys didkey.KeyManager, httpClient core.HTTPRequestDoer) *Gate {
	return &Gate{
		store:      store,
		keys:       keys,
		httpClient: httpClient,
	}
}

// Normalize decodes the received credential according to its format and derives the key it is stored under.
// JWT credentials are decoded without verifying their signature.
func (g Gate) Normalize(received Received) (storage.CredentialRecord, error) {
	record := storage.CredentialRecord{
		Timestamp: nowFunc(),
		Type:      string(received.Format),
		Status:    string(received.Status),
		Encoded:   received.Encoded,
	}
	var id string
	switch received.Format {
	case JWTVCJSON, EBSI:
		token, err := jwt.Decode(received.Encoded)
		if err != nil {
			return record, fmt.Errorf("unable to decode %s credential: %w", received.Format, err)
		}
		record.Decoded = token.ClaimObject("vc")
		if record.Decoded == nil {
			return record, core.Errorf(core.ErrMalformedInput, "%s credential has no vc claim", received.Format)
		}
		id = token.ClaimString("jti")
	case JWTVC:
		token, err := jwt.Decode(received.Encoded)
		if err != nil {
			return record, fmt.Errorf("unable to decode %s credential: %w", received.Format, err)
		}
		record.Decoded = token.Payload
		id = token.ClaimString("id")
		if id == "" {
			id = token.ClaimString("jti")
		}
	case W3CVC, "":
		record.Type = string(W3CVC)
		if err := json.Unmarshal([]byte(received.Encoded), &record.Decoded); err != nil || record.Decoded == nil {
			return record, core.Errorf(core.ErrMalformedInput, "credential is not a JSON object")
		}
	default:
		return record, core.Errorf(core.ErrMalformedInput, "unsupported credential format: %s", received.Format)
	}
	if received.ID != "" {
		id = received.ID
	}
	if id == "" {
		id = crypto.SHA256Hex(received.Encoded)
	}
	record.Hash = id
	return record, nil
}

// Store normalizes and saves the received credential.
// Offered credentials must be accepted first. A signed jwt_vc credential always replaces its earlier (to be signed) version.
// If a credential with the same key exists and replace is false, core.ErrDuplicateCredential is returned.
func (g Gate) Store(ctx context.Context, received Received, replace bool) (*storage.CredentialRecord, error) {
	if received.Status == Offered {
		return nil, core.Errorf(core.ErrProtocolViolation, "credential is offered, it must be accepted before it can be stored")
	}
	record, err := g.Normalize(received)
	if err != nil {
		return nil, err
	}
	if received.Format == JWTVC && received.Status == Signed {
		replace = true
	}
	if err := g.store.Save(ctx, record, replace); err != nil {
		if errors.Is(err, core.ErrDuplicateCredential) {
			log.Logger().
				WithField(core.LogFieldCredentialID, record.Hash).
				Info("Credential already stored")
		}
		return nil, err
	}
	log.Logger().
		WithField(core.LogFieldCredentialID, record.Hash).
		WithField(core.LogFieldCredentialFormat, record.Type).
		Info("Stored credential")
	return &record, nil
}

// Accept accepts an offered credential by posting a proof of possession of the wallet's key to the acceptance URL.
// The audience of the proof is the origin of the acceptance URL.
// The credential returned by the issuer is stored once it's no longer offered.
func (g Gate) Accept(ctx context.Context, offered Received, acceptURL string) (*storage.CredentialRecord, error) {
	target, err := core.ParseHTTPURL(acceptURL)
	if err != nil {
		return nil, err
	}
	keyPair, err := g.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	proof, err := openid4vci.CreateProof(ctx, keyPair, openid4vci.ProofParams{
		KeyID:    keyPair.KeyID(),
		Audience: core.Origin(target),
		Nonce:    crypto.GenerateNonce(),
	}, nowFunc())
	if err != nil {
		return nil, err
	}
	request := map[string]interface{}{
		"format": openid4vci.CredentialFormatJWTVC,
		"proof": openid4vci.CredentialRequestProof{
			ProofType: openid4vci.ProofTypeJWT,
			Jwt:       proof,
		},
	}
	envelope, err := g.post(ctx, target.String(), request)
	if err != nil {
		return nil, fmt.Errorf("unable to accept credential: %w", err)
	}
	return g.storeEnvelope(ctx, *envelope)
}

// SendDID accepts an offered jwt_vc credential by sending the wallet's DID to the issuer,
// which binds the credential to it and returns the updated credential.
func (g Gate) SendDID(ctx context.Context, offered Received, issuerOrigin string) (*storage.CredentialRecord, error) {
	if offered.ID == "" {
		return nil, core.Errorf(core.ErrMalformedInput, "offered credential has no id")
	}
	origin, err := core.ParseHTTPURL(issuerOrigin)
	if err != nil {
		return nil, err
	}
	keyPair, err := g.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	targetURL := core.Origin(origin) + sendDIDPath + url.PathEscape(offered.ID)
	envelope, err := g.post(ctx, targetURL, map[string]string{"did": keyPair.DID.String()})
	if err != nil {
		return nil, fmt.Errorf("unable to send DID to issuer: %w", err)
	}
	return g.storeEnvelope(ctx, *envelope)
}

func (g Gate) storeEnvelope(ctx context.Context, envelope Envelope) (*storage.CredentialRecord, error) {
	received := envelope.Received()
	switch received.Status {
	case Signed, ToBeSigned:
		return g.Store(ctx, received, received.Status == Signed)
	default:
		return nil, core.Errorf(core.ErrProtocolViolation, "issuer returned credential with status '%s'", received.Status)
	}
}

func (g Gate) post(ctx context.Context, targetURL string, body interface{}) (*Envelope, error) {
	data, _ := json.Marshal(body)
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedInput, err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpResponse, err := g.httpClient.Do(httpRequest)
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	defer httpResponse.Body.Close()
	if err := core.TestResponseCodeWithLog(httpResponse, log.Logger()); err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	var envelope Envelope
	if err := json.NewDecoder(httpResponse.Body).Decode(&envelope); err != nil {
		return nil, core.Errorf(core.ErrProtocolViolation, "invalid credential response: %w", err)
	}
	if envelope.Credential == "" {
		return nil, core.Errorf(core.ErrProtocolViolation, "credential response does not contain a credential")
	}
	return &envelope, nil
}

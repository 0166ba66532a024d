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

// Package openid4vci contains the wallet side of OpenID for Verifiable Credential Issuance:
// the wire types, the metadata fetcher and the client for the issuer's token and credential endpoints.
package openid4vci

import (
	"encoding/json"
	"errors"

	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
)

// JWTTypeOpenID4VCIProof defines the OpenID4VCI JWT-subtype (used as typ claim in the JWT).
const JWTTypeOpenID4VCIProof = "openid4vci-proof+jwt"

// ProofTypeJWT defines the Credential Request proof type for JWTs.
const ProofTypeJWT = "jwt"

// CredentialFormatJWTVCJSON is the format requested in credential requests.
const CredentialFormatJWTVCJSON = "jwt_vc_json"

// CredentialFormatJWTVC is the format used when accepting an offered credential.
const CredentialFormatJWTVC = "jwt_vc"

// AuthorizationDetailsTypeCredential is the authorization_details type for credential requests.
const AuthorizationDetailsTypeCredential = "openid_credential"

// CredentialOfferParam is the query parameter holding a credential offer by value.
const CredentialOfferParam = "credential_offer"

// CredentialOfferURIParam is the query parameter holding a credential offer by reference.
const CredentialOfferURIParam = "credential_offer_uri"

// CredentialOffer defines credentials offered by the issuer to the wallet.
// Specified by https://openid.net/specs/openid-4-verifiable-credential-issuance-1_0.html#name-credential-offer
type CredentialOffer struct {
	// CredentialIssuer defines the identifier of the credential issuer.
	CredentialIssuer string `json:"credential_issuer"`
	// Credentials defines the credentials offered by the issuer to the wallet.
	Credentials []OfferedCredential `json:"credentials,omitempty"`
	// CredentialConfigurationIDs is the newer (final draft) way of announcing the offered credentials.
	CredentialConfigurationIDs []string `json:"credential_configuration_ids,omitempty"`
	// Grants defines the grants offered by the issuer to the wallet.
	Grants *Grants `json:"grants,omitempty"`
}

// Types returns the credential types of the first offered credential.
func (o CredentialOffer) Types() []string {
	if len(o.Credentials) > 0 && len(o.Credentials[0].Types) > 0 {
		return o.Credentials[0].Types
	}
	if len(o.Credentials) > 0 && o.Credentials[0].ID != "" {
		return []string{o.Credentials[0].ID}
	}
	if len(o.CredentialConfigurationIDs) > 0 {
		return []string{o.CredentialConfigurationIDs[0]}
	}
	return nil
}

// OfferedCredential is an entry of the credentials array of a credential offer.
// It is either an object specifying format and types, or a string referring to the issuer metadata.
type OfferedCredential struct {
	Format string   `json:"format,omitempty"`
	Types  []string `json:"types,omitempty"`
	// ID is set when the issuer offered the credential by reference.
	ID string `json:"-"`
}

func (o *OfferedCredential) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*o = OfferedCredential{ID: id}
		return nil
	}
	type alias OfferedCredential
	var result alias
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*o = OfferedCredential(result)
	return nil
}

// Grants contains the grants the issuer supports for an offer.
type Grants struct {
	AuthorizationCode *AuthorizationCodeGrant `json:"authorization_code,omitempty"`
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// AuthorizationCodeGrant contains the parameters of the authorization_code grant.
type AuthorizationCodeGrant struct {
	IssuerState string `json:"issuer_state,omitempty"`
}

// PreAuthorizedCodeGrant contains the parameters of the pre-authorized_code grant.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode string `json:"pre-authorized_code"`
	// TxCode is set when the issuer requires a transaction code, sent to the user out of band.
	TxCode *TxCode `json:"tx_code,omitempty"`
	// UserPinRequired is the older draft way of requiring a transaction code.
	UserPinRequired bool `json:"user_pin_required,omitempty"`
}

// RequiresTxCode returns whether the user has to enter a transaction code.
func (g PreAuthorizedCodeGrant) RequiresTxCode() bool {
	return g.TxCode != nil || g.UserPinRequired
}

// TxCode describes the transaction code the user has to enter.
type TxCode struct {
	InputMode   string `json:"input_mode,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// CredentialIssuerMetadata defines the OpenID4VCI Credential Issuer Metadata.
// Specified by https://openid.net/specs/openid-4-verifiable-credential-issuance-1_0.html#name-credential-issuer-metadata
type CredentialIssuerMetadata struct {
	// CredentialIssuer defines the identifier of the credential issuer.
	CredentialIssuer string `json:"credential_issuer"`
	// AuthorizationServer is the identifier of the authorization server the issuer relies on.
	// If absent, the issuer acts as its own authorization server.
	AuthorizationServer string `json:"authorization_server,omitempty"`
	// CredentialEndpoint defines where the wallet can send a request to retrieve a credential.
	CredentialEndpoint string `json:"credential_endpoint"`
	// DeferredCredentialEndpoint is where the wallet polls for credentials that are not immediately available.
	DeferredCredentialEndpoint string `json:"deferred_credential_endpoint,omitempty"`
}

// OAuthAuthorizationServerMetadata is the metadata of the authorization server that issues access tokens for the credential endpoint.
type OAuthAuthorizationServerMetadata = oauth.AuthorizationServerMetadata

// AuthorizationDetail is an entry of the authorization_details parameter of the authorization request.
type AuthorizationDetail struct {
	Type      string   `json:"type"`
	Format    string   `json:"format"`
	Types     []string `json:"types"`
	Locations []string `json:"locations,omitempty"`
}

// CredentialRequest defines an OpenID4VCI credential request.
type CredentialRequest struct {
	Types  []string                `json:"types"`
	Format string                  `json:"format"`
	Proof  *CredentialRequestProof `json:"proof,omitempty"`
}

// CredentialRequestProof defines the proof of possession of key material when requesting a Credential.
// Specified by https://openid.net/specs/openid-4-verifiable-credential-issuance-1_0.html#name-proof-types
type CredentialRequestProof struct {
	Jwt       string `json:"jwt"`
	ProofType string `json:"proof_type"`
}

// CredentialResponse defines the response for credential requests.
type CredentialResponse struct {
	Format string `json:"format,omitempty"`
	// Credential is a JWT string for JWT based formats, or a JSON object otherwise.
	Credential json.RawMessage `json:"credential,omitempty"`
	// AcceptanceToken is returned by issuers that issue the credential later, on the deferred credential endpoint.
	AcceptanceToken string `json:"acceptance_token,omitempty"`
	CNonce          string `json:"c_nonce,omitempty"`
}

// Deferred returns whether the credential must be fetched from the deferred credential endpoint.
func (r CredentialResponse) Deferred() bool {
	return r.AcceptanceToken != ""
}

// HasCredential returns whether the response contains a credential.
func (r CredentialResponse) HasCredential() bool {
	return len(r.Credential) > 0 && string(r.Credential) != "null"
}

// EncodedCredential returns the credential as it must be stored: the JWT for JWT formats, the JSON otherwise.
func (r CredentialResponse) EncodedCredential() (string, error) {
	if !r.HasCredential() {
		return "", errors.New("credential response does not contain a credential")
	}
	var jwt string
	if err := json.Unmarshal(r.Credential, &jwt); err == nil {
		return jwt, nil
	}
	return string(r.Credential), nil
}

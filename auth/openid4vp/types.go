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

package openid4vp

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nuts-foundation/nuts-wallet/storage"
)

// SelfIssuedAudience is the audience of Verifiable Presentations sent by a self-issued OpenID provider (SIOPv2).
const SelfIssuedAudience = "https://self-issued.me/v2"

// VPContext is the JSON-LD context of Verifiable Presentations created by the wallet.
const VPContext = "https://www.w3.org/ns/credentials/v2"

// vpValidity is the number of seconds a VP JWT is valid after it was issued.
const vpValidity = 480

// PresentationRequest is an OpenID4VP Authorization Request, resolved and matched against the wallet's credentials.
type PresentationRequest struct {
	ClientID     string `json:"client_id,omitempty"`
	ResponseURI  string `json:"response_uri"`
	ResponseType string `json:"response_type,omitempty"`
	ResponseMode string `json:"response_mode,omitempty"`
	State        string `json:"state,omitempty"`
	Nonce        string `json:"nonce,omitempty"`
	Scope        string `json:"scope"`
	// PresentationDefinition is the DIF Presentation Definition, if the verifier sent one.
	PresentationDefinition json.RawMessage `json:"presentation_definition,omitempty"`
	// CredentialType is the requested credential type, derived from the scope.
	CredentialType string `json:"credential_type"`
	// Candidates are the stored credentials of the requested type, newest first.
	Candidates []storage.CredentialRecord `json:"candidates"`
}

// Verifier returns the name of the verifier to show to the user, which is the host of the response URI.
func (r PresentationRequest) Verifier() string {
	parsed, err := url.Parse(r.ResponseURI)
	if err != nil || parsed.Hostname() == "" {
		return r.ClientID
	}
	return parsed.Hostname()
}

// NoMatch returns true if the wallet holds no credential of the requested type.
func (r PresentationRequest) NoMatch() bool {
	return len(r.Candidates) == 0
}

// NoMatchMessage returns the message to show to the user when there is no matching credential.
func (r PresentationRequest) NoMatchMessage() string {
	return fmt.Sprintf("%s has requested a Verifiable Credential of type %s, but you do not have any", r.Verifier(), r.CredentialType)
}

// Candidate returns the candidate credential with the given key.
func (r PresentationRequest) Candidate(key string) (storage.CredentialRecord, bool) {
	for _, candidate := range r.Candidates {
		if candidate.Hash == key {
			return candidate, true
		}
	}
	return storage.CredentialRecord{}, false
}

// SubmissionResult is the outcome of posting the Authorization Response to the verifier.
type SubmissionResult struct {
	StatusCode int `json:"status_code"`
	// RedirectURI is where the verifier wants the user to continue, if it returned one.
	RedirectURI string `json:"redirect_uri,omitempty"`
	// AuthenticatorRequired is set when the verifier requires the user to authenticate with WebAuthn to complete the login.
	// Payload, Origin and State are then passed to the authenticator.
	AuthenticatorRequired bool                   `json:"authenticator_required"`
	Payload               map[string]interface{} `json:"payload,omitempty"`
	Origin                string                 `json:"origin"`
	State                 string                 `json:"state,omitempty"`
}

// PresentationSubmission describes how the presented credential satisfies the presentation definition.
type PresentationSubmission struct {
	ID            string                         `json:"id"`
	DefinitionID  string                         `json:"definition_id"`
	DescriptorMap []InputDescriptorMappingObject `json:"descriptor_map"`
}

// InputDescriptorMappingObject maps an input descriptor to a path in the VP.
type InputDescriptorMappingObject struct {
	ID         string                        `json:"id"`
	Path       string                        `json:"path"`
	Format     string                        `json:"format"`
	PathNested *InputDescriptorMappingObject `json:"path_nested,omitempty"`
}

// singleCredentialSubmission returns the submission for a VP containing exactly one credential.
func singleCredentialSubmission(definitionID string) PresentationSubmission {
	if definitionID == "" {
		definitionID = "SingleCredentialPresentation"
	}
	return PresentationSubmission{
		ID:           "SingleCredentialSubmission",
		DefinitionID: definitionID,
		DescriptorMap: []InputDescriptorMappingObject{{
			ID:     "single_credential",
			Path:   "$",
			Format: "jwt_vp_json",
			PathNested: &InputDescriptorMappingObject{
				ID:     "single_credential",
				Format: "jwt_vc_json",
				Path:   "$.verifiableCredential[0]",
			},
		}},
	}
}

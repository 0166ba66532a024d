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
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/credential"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
)

// FlowState is the state of an issuance flow.
type FlowState string

const (
	// OfferReceived means the credential offer was parsed.
	OfferReceived FlowState = "OfferReceived"
	// IssuerMetadataFetched means the Credential Issuer Metadata was retrieved.
	IssuerMetadataFetched FlowState = "IssuerMetadataFetched"
	// AuthServerMetadataFetched means the metadata of the issuer's authorization server was retrieved.
	AuthServerMetadataFetched FlowState = "AuthServerMetadataFetched"
	// GrantSelected means the grant type to obtain an access token with is chosen.
	GrantSelected FlowState = "GrantSelected"
	// AuthorizationCodeSubflow means the wallet is authenticating to the authorization server with an ID token.
	AuthorizationCodeSubflow FlowState = "AuthorizationCodeSubflow"
	// PreAuthorizedSubflow means the wallet is exchanging the pre-authorized code for an access token.
	PreAuthorizedSubflow FlowState = "PreAuthorizedSubflow"
	// AccessTokenObtained means the wallet has an access token for the credential endpoint.
	AccessTokenObtained FlowState = "AccessTokenObtained"
	// CredentialRequested means the credential request was sent.
	CredentialRequested FlowState = "CredentialRequested"
	// DeferredPending means the issuer issues the credential later, and the wallet is polling for it.
	DeferredPending FlowState = "DeferredPending"
	// CredentialReceived means the wallet received the credential.
	CredentialReceived FlowState = "CredentialReceived"
)

// Flow holds the state of a single issuance, from scanning the offer to receiving the credential.
// A Flow is used by one goroutine at a time.
type Flow struct {
	State FlowState
	// Source is the URL the flow was started with.
	Source             string
	Offer              *openid4vci.CredentialOffer
	IssuerMetadata     *openid4vci.CredentialIssuerMetadata
	AuthServerMetadata *openid4vci.OAuthAuthorizationServerMetadata
	// GrantType is the selected OAuth2 grant type.
	GrantType string
	// RequiresTxCode is true when the pre-authorized grant requires the user to enter a transaction code.
	RequiresTxCode bool
	// Legacy is set when the credential was fetched directly from the scanned URL, without OpenID4VCI.
	Legacy *credential.Received
}

func (f *Flow) transition(state FlowState) {
	f.State = state
	entry := log.Logger().WithField(core.LogFieldFlowState, state)
	if f.Offer != nil {
		entry = entry.WithField(core.LogFieldCredentialIssuer, f.Offer.CredentialIssuer)
	}
	if f.GrantType != "" {
		entry = entry.WithField(core.LogFieldGrantType, f.GrantType)
	}
	entry.Debug("Issuance flow transition")
}

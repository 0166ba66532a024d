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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldCredentialID is the log field key for the storage key (jti or content hash) of a Verifiable Credential.
	LogFieldCredentialID = "credentialID"
	// LogFieldCredentialType is the log field key for the type of a Verifiable Credential.
	LogFieldCredentialType = "credentialType"
	// LogFieldCredentialFormat is the log field key for the format (jwt_vc, jwt_vc_json, w3cvc, EBSI) of a Verifiable Credential.
	LogFieldCredentialFormat = "credentialFormat"
	// LogFieldCredentialIssuer is the log field key for the issuer of a Verifiable Credential.
	LogFieldCredentialIssuer = "credentialIssuer"

	// LogFieldFlowState is the log field key for the state of an issuance flow.
	LogFieldFlowState = "flowState"
	// LogFieldGrantType is the log field key for the OAuth2 grant type used in an issuance flow.
	LogFieldGrantType = "grantType"
	// LogFieldVerifier is the log field key for the client_id of the verifier requesting a presentation.
	LogFieldVerifier = "verifier"

	// LogFieldStore is the log field key for the name of a store managed by the storage module.
	LogFieldStore = "store"
	// LogFieldStoreShelf is the log field key for the name of a shelf, in a store managed by the storage module.
	LogFieldStoreShelf = "storeShelf"

	// LogFieldKeyID is the log field key for the key ID (DID URL) of the wallet key.
	LogFieldKeyID = "keyID"
	// LogFieldDID is the log field key for the wallet DID.
	LogFieldDID = "did"

	// LogFieldRelayTarget is the log field key for the target URL of a relayed request.
	LogFieldRelayTarget = "relayTarget"
)

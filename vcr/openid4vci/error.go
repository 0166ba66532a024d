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
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode specifies error codes as defined by the OpenID4VCI spec.
type ErrorCode string

const (
	// InvalidRequest is returned when the request is malformed, or a transaction code is missing or unexpected.
	InvalidRequest ErrorCode = "invalid_request"
	// InvalidClient is returned when the client is not allowed to use a pre-authorized code without client ID.
	InvalidClient ErrorCode = "invalid_client"
	// InvalidGrant is returned when the code is wrong or expired, or the transaction code is wrong.
	InvalidGrant ErrorCode = "invalid_grant"
	// InvalidToken is returned when the Credential Request contains the wrong Access Token or the Access Token is missing
	InvalidToken ErrorCode = "invalid_token"
	// UnsupportedGrantType is returned when the Authorization Server does not support the requested grant type.
	UnsupportedGrantType ErrorCode = "unsupported_grant_type"
	// ServerError is returned when the remote party encountered an unexpected condition.
	ServerError ErrorCode = "server_error"
	// UnsupportedCredentialType is returned when the credential issuer does not support the requested credential type.
	UnsupportedCredentialType ErrorCode = "unsupported_credential_type"
	// UnsupportedCredentialFormat is returned when the credential issuer does not support the requested credential format.
	UnsupportedCredentialFormat ErrorCode = "unsupported_credential_format"
	// InvalidProof is returned when the proof is missing, invalid or not bound to the issuer provided nonce.
	InvalidProof ErrorCode = "invalid_proof"
	// IssuancePending is returned by the deferred credential endpoint while the credential is not yet issued.
	IssuancePending ErrorCode = "issuance_pending"
)

// Error is an error response of an issuer or authorization server, as specified by OAuth2 and OpenID4VCI.
type Error struct {
	// Code is the error code as returned by the server.
	Code ErrorCode `json:"error"`
	// Description is the human-readable error_description, if the server returned one.
	Description string `json:"error_description,omitempty"`
	// Err is the underlying error, may be omitted.
	Err error `json:"-"`
	// StatusCode is the HTTP status code the server responded with.
	StatusCode int `json:"-"`
}

// Error returns the error message, which is either the underlying error or the code if there is no underlying error
func (e Error) Error() string {
	msg := string(e.Code)
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e Error) Unwrap() error {
	return e.Err
}

// parseError turns a non-successful response into an Error.
// If the body isn't an OAuth2 error response, the code is derived from the status code.
func parseError(statusCode int, body []byte) Error {
	result := Error{StatusCode: statusCode}
	if err := json.Unmarshal(body, &result); err != nil || result.Code == "" {
		result.Code = ServerError
		if statusCode >= 400 && statusCode < 500 {
			result.Code = InvalidRequest
		}
		result.Err = fmt.Errorf("server returned HTTP %d (%s)", statusCode, http.StatusText(statusCode))
	}
	return result
}

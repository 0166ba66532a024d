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

import "sort"

// algValuesSupported contains the signature algorithms the wallet supports for JWT credentials and presentations.
var algValuesSupported = []string{"ES256"}

// DefaultSupportedFormats returns the formats the wallet announces in the vp_formats_supported field of its client metadata.
func DefaultSupportedFormats() SupportedFormats {
	return SupportedFormats{
		"jwt_vp": {"alg": algValuesSupported},
		"jwt_vc": {"alg": algValuesSupported},
	}
}

// SupportedFormats is a map of supported formats and their parameters.
// E.g., jwt_vp: {alg: [ES256]}
type SupportedFormats map[string]map[string][]string

// Names returns the names of the supported formats, sorted.
func (f SupportedFormats) Names() []string {
	result := make([]string, 0, len(f))
	for name := range f {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Format is the format tag of a received credential. It determines how the credential is decoded.
type Format string

const (
	// W3CVC is a plain JSON W3C Verifiable Credential.
	W3CVC Format = "w3cvc"
	// JWTVC is a JWT credential whose payload is the credential itself, issued through the non-standard issuance.
	JWTVC Format = "jwt_vc"
	// JWTVCJSON is a JWT credential with the credential in the vc claim, issued through OpenID4VCI.
	JWTVCJSON Format = "jwt_vc_json"
	// EBSI is a JWT credential received through the EBSI authorization code flow.
	EBSI Format = "EBSI"
)

// IsJWT returns whether credentials of this format are compact JWTs.
func (f Format) IsJWT() bool {
	return f == JWTVC || f == JWTVCJSON || f == EBSI
}

// Status is the lifecycle status of a credential.
type Status string

const (
	// Offered means the issuer offered the credential, but the holder didn't accept it yet.
	Offered Status = "offered"
	// ToBeSigned means the holder accepted the credential, and the issuer still has to sign it.
	ToBeSigned Status = "tobesigned"
	// Signed means the credential is issued.
	Signed Status = "signed"
)

// Received is a credential as received from an issuer, before it is normalized and stored.
type Received struct {
	Format  Format
	Status  Status
	Encoded string
	// ID is the identifier the issuer assigned to the credential, if any. It takes precedence over derived keys.
	ID string
}

// Envelope is the response of the non-standard issuance endpoints.
type Envelope struct {
	Credential string `json:"credential"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
}

// Received converts the envelope to a Received credential. The type defaults to jwt_vc.
func (e Envelope) Received() Received {
	format := Format(e.Type)
	if format == "" {
		format = JWTVC
	}
	return Received{
		Format:  format,
		Status:  Status(e.Status),
		Encoded: e.Credential,
		ID:      e.ID,
	}
}

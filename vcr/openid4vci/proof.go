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
	"context"
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto"
)

// ProofValidity is added to the issued-at time of proofs and ID tokens to get their expiration time.
const ProofValidity = 86500 * time.Second

// clockSkew is subtracted from the current time, so issuers with a slightly slower clock don't reject the proof.
const clockSkew = 2 * time.Second

// ProofParams contains the parameters of a proof of possession.
type ProofParams struct {
	// KeyID is put in the kid header; the issuer resolves the holder's public key from it.
	KeyID string
	// Issuer is the holder DID. It is omitted from the proof when empty.
	Issuer string
	// Audience is the credential issuer identifier.
	Audience string
	// Nonce is the c_nonce provided by the issuer.
	Nonce string
}

// CreateProof creates the proof of possession JWT of a credential request, signed by the given signer.
func CreateProof(ctx context.Context, signer crypto.JWTSigner, params ProofParams, now time.Time) (string, error) {
	iat := now.Add(-clockSkew)
	header := map[string]interface{}{
		"typ": JWTTypeOpenID4VCIProof,
		"alg": "ES256",
		"kid": params.KeyID,
	}
	payload := map[string]interface{}{
		"aud":   params.Audience,
		"iat":   iat.Unix(),
		"exp":   iat.Add(ProofValidity).Unix(),
		"nonce": params.Nonce,
	}
	if params.Issuer != "" {
		payload["iss"] = params.Issuer
	}
	proof, err := signer.SignJWT(ctx, header, payload)
	if err != nil {
		return "", core.WrapError(core.ErrCrypto, fmt.Errorf("unable to sign request proof: %w", err))
	}
	return proof, nil
}

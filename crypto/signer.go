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

package crypto

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/crypto/jwt"
	"github.com/nuts-foundation/nuts-wallet/crypto/log"
)

// JWTSigner signs JWTs with a key it doesn't expose, e.g. the wallet key or a hardware-backed key.
type JWTSigner interface {
	// SignJWT builds a compact JWT from the given header and payload and signs it.
	SignJWT(ctx context.Context, header map[string]interface{}, payload map[string]interface{}) (string, error)
}

// Sign signs the given data. ES256 signatures are returned in raw (r || s) form, as used by JWS.
func Sign(ctx context.Context, data []byte, key Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key.role != PrivateKeyRole {
		return nil, ErrNotAPrivateKey
	}
	signer, err := jws.NewSigner(key.algorithm)
	if err != nil {
		return nil, core.WrapError(core.ErrCrypto, err)
	}
	signature, err := signer.Sign(data, key.raw)
	if err != nil {
		return nil, core.WrapError(core.ErrCrypto, fmt.Errorf("unable to sign: %w", err))
	}
	return signature, nil
}

// Verify checks the signature over the given data, using the verification parameters of the key's algorithm.
// It returns false (without error) if the signature doesn't match.
func Verify(ctx context.Context, signature []byte, data []byte, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key.role != PublicKeyRole {
		return false, ErrNotAPublicKey
	}
	verifier, err := jws.NewVerifier(key.algorithm)
	if err != nil {
		return false, core.WrapError(core.ErrCrypto, err)
	}
	if err := verifier.Verify(data, signature, key.raw); err != nil {
		log.Logger().WithError(err).Debug("Signature verification failed")
		return false, nil
	}
	return true, nil
}

// SignJWT serializes the header and payload to JSON, base64url-encodes them and signs the dot-joined result.
func SignJWT(ctx context.Context, header map[string]interface{}, payload map[string]interface{}, key Key) (string, error) {
	encodedHeader, err := jwt.EncodeJSONSegment(header)
	if err != nil {
		return "", core.WrapError(core.ErrMalformedInput, fmt.Errorf("header: %w", err))
	}
	encodedPayload, err := jwt.EncodeJSONSegment(payload)
	if err != nil {
		return "", core.WrapError(core.ErrMalformedInput, fmt.Errorf("payload: %w", err))
	}
	signingInput := encodedHeader + "." + encodedPayload
	signature, err := Sign(ctx, []byte(signingInput), key)
	if err != nil {
		return "", err
	}
	return signingInput + "." + jwt.EncodeSegment(signature), nil
}

// VerifyJWT verifies the signature of a compact JWT over the header and payload exactly as transmitted.
// It does not validate any claims. A JWT that can't be decoded is reported as error.
func VerifyJWT(ctx context.Context, token string, key Key) (bool, error) {
	decoded, err := jwt.Decode(token)
	if err != nil {
		return false, err
	}
	// only the canonical encoding of a signature verifies
	signature, err := jwt.DecodeStrictSegment(decoded.Raw[2])
	if err != nil {
		log.Logger().WithError(err).Debug("JWT signature is not canonical base64url")
		return false, nil
	}
	return Verify(ctx, signature, decoded.SigningInput(), key)
}

// KeySigner is a JWTSigner backed by an in-memory key.
type KeySigner struct {
	Key Key
}

// SignJWT implements JWTSigner.
func (k KeySigner) SignJWT(ctx context.Context, header map[string]interface{}, payload map[string]interface{}) (string, error) {
	return SignJWT(ctx, header, payload, k.Key)
}

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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/nuts-wallet/core"
)

// KeyRole tells whether a key can be used for signing (private) or verification (public).
type KeyRole int

const (
	// PublicKeyRole is the role of keys that can only verify.
	PublicKeyRole KeyRole = iota
	// PrivateKeyRole is the role of keys that can sign.
	PrivateKeyRole
)

func (r KeyRole) String() string {
	if r == PrivateKeyRole {
		return "private"
	}
	return "public"
}

// ErrNotAPrivateKey is returned when signing with a public key.
var ErrNotAPrivateKey = core.WrapError(core.ErrCrypto, errors.New("not a private key"))

// ErrNotAPublicKey is returned when verifying with a private key.
var ErrNotAPublicKey = core.WrapError(core.ErrCrypto, errors.New("not a public key"))

// ErrUnsupportedKeyType is returned for JWKs that are neither EC P-256 nor RSA.
var ErrUnsupportedKeyType = core.WrapError(core.ErrCrypto, errors.New("unsupported key type"))

// Key is a JWK with a fixed role and signature algorithm.
// EC keys are used with ES256 (P-256/SHA-256), RSA keys with PS256 (RSA-PSS, salt length 32).
type Key struct {
	jwk       jwk.Key
	raw       interface{}
	role      KeyRole
	algorithm jwa.SignatureAlgorithm
}

// Role returns the role of the key.
func (k Key) Role() KeyRole {
	return k.role
}

// Algorithm returns the JWS algorithm the key is used with.
func (k Key) Algorithm() jwa.SignatureAlgorithm {
	return k.algorithm
}

// JWK returns the key as JWK.
func (k Key) JWK() jwk.Key {
	return k.jwk
}

// Public returns the public part of the key. For public keys it returns the key itself.
func (k Key) Public() (Key, error) {
	if k.role == PublicKeyRole {
		return k, nil
	}
	publicKey, err := jwk.PublicKeyOf(k.jwk)
	if err != nil {
		return Key{}, core.WrapError(core.ErrCrypto, err)
	}
	return fromJWK(publicKey)
}

// ECDSAPublicKey returns the public key as ECDSA key, or an error if it isn't an EC key.
func (k Key) ECDSAPublicKey() (*ecdsa.PublicKey, error) {
	switch raw := k.raw.(type) {
	case *ecdsa.PrivateKey:
		return &raw.PublicKey, nil
	case *ecdsa.PublicKey:
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: expected EC key, got %T", ErrUnsupportedKeyType, k.raw)
	}
}

// MarshalJSON exports the key as JWK.
func (k Key) MarshalJSON() ([]byte, error) {
	if k.jwk == nil {
		return nil, errors.New("empty key")
	}
	return json.Marshal(k.jwk)
}

// ParseJWK imports a JWK. The key is private when the JWK contains the private parameter (`d`), public otherwise.
// kty=EC is imported as P-256 key, kty=RSA as RSA-PSS key.
func ParseJWK(data []byte) (Key, error) {
	key, err := jwk.ParseKey(data)
	if err != nil {
		return Key{}, core.WrapError(core.ErrCrypto, fmt.Errorf("invalid JWK: %w", err))
	}
	return fromJWK(key)
}

// NewKey wraps a raw *ecdsa.PrivateKey, *ecdsa.PublicKey, *rsa.PrivateKey or *rsa.PublicKey.
func NewKey(raw interface{}) (Key, error) {
	key, err := jwk.FromRaw(raw)
	if err != nil {
		return Key{}, core.WrapError(core.ErrCrypto, err)
	}
	return fromJWK(key)
}

// GenerateKeyPair generates a new P-256 key. Failure of the random source is reported as crypto error, there's no fallback.
func GenerateKeyPair() (Key, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return Key{}, core.WrapError(core.ErrCrypto, fmt.Errorf("unable to generate key: %w", err))
	}
	return NewKey(privateKey)
}

func fromJWK(key jwk.Key) (Key, error) {
	result := Key{jwk: key}
	switch key.KeyType() {
	case jwa.EC:
		result.algorithm = jwa.ES256
		if crv, ok := key.Get(jwk.ECDSACrvKey); ok && crv != jwa.P256 {
			return Key{}, fmt.Errorf("%w: curve %v", ErrUnsupportedKeyType, crv)
		}
	case jwa.RSA:
		result.algorithm = jwa.PS256
	default:
		return Key{}, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, key.KeyType())
	}
	switch key.(type) {
	case jwk.ECDSAPrivateKey, jwk.RSAPrivateKey:
		result.role = PrivateKeyRole
	default:
		result.role = PublicKeyRole
	}
	if err := key.Raw(&result.raw); err != nil {
		return Key{}, core.WrapError(core.ErrCrypto, err)
	}
	return result, nil
}

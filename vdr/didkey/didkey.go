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

package didkey

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/binary"
	"errors"
	"io"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multicodec"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/nuts-wallet/core"
)

// MethodName is the name of this DID method.
const MethodName = "key"

// compressedP256Length is the length of a compressed P-256 point: 1 byte prefix and the 32 byte X coordinate.
const compressedP256Length = 33

var errInvalidPublicKeyLength = errors.New("invalid did:key: invalid public key length")

// FromPublicKey derives the did:key identifier of a P-256 public key.
// The point is compressed, prefixed with the multicodec varint of p256-pub (0x80 0x24) and base58btc encoded.
func FromPublicKey(publicKey *ecdsa.PublicKey) (did.DID, error) {
	if publicKey == nil || publicKey.Curve != elliptic.P256() {
		return did.DID{}, core.Errorf(core.ErrCrypto, "did:key: only P-256 keys are supported")
	}
	compressed := elliptic.MarshalCompressed(elliptic.P256(), publicKey.X, publicKey.Y)
	mcBytes := binary.AppendUvarint(nil, uint64(multicodec.P256Pub))
	mcBytes = append(mcBytes, compressed...)
	result, err := did.ParseDID("did:" + MethodName + ":z" + base58.Encode(mcBytes))
	if err != nil {
		return did.DID{}, err
	}
	return *result, nil
}

// PublicKey extracts the P-256 public key from a did:key identifier.
func PublicKey(id did.DID) (*ecdsa.PublicKey, error) {
	if id.Method != MethodName {
		return nil, core.Errorf(core.ErrMalformedInput, "unsupported DID method: %s", id.Method)
	}
	encodedKey := id.ID
	if len(encodedKey) == 0 || encodedKey[0] != 'z' {
		return nil, core.Errorf(core.ErrMalformedInput, "did:key does not start with 'z'")
	}
	mcBytes, err := base58.Decode(encodedKey[1:])
	if err != nil {
		return nil, core.Errorf(core.ErrMalformedInput, "did:key: invalid base58btc: %v", err)
	}
	reader := bytes.NewReader(mcBytes)
	keyType, err := binary.ReadUvarint(reader)
	if err != nil {
		return nil, core.Errorf(core.ErrMalformedInput, "did:key: invalid multicodec value: %v", err)
	}
	if multicodec.Code(keyType) != multicodec.P256Pub {
		return nil, core.Errorf(core.ErrMalformedInput, "did:key: unsupported public key type: %d", keyType)
	}
	keyBytes, _ := io.ReadAll(reader)
	if len(keyBytes) != compressedP256Length {
		return nil, core.WrapError(core.ErrMalformedInput, errInvalidPublicKeyLength)
	}
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), keyBytes)
	if x == nil {
		return nil, core.Errorf(core.ErrMalformedInput, "did:key: invalid P-256 point")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// KeyID returns the ID of the verification method of a did:key, which fragment is the method-specific ID.
func KeyID(id did.DID) did.DIDURL {
	return did.DIDURL{DID: id, Fragment: id.ID}
}

// ParseDID parses a did:key identifier.
func ParseDID(input string) (did.DID, error) {
	result, err := did.ParseDID(input)
	if err != nil {
		return did.DID{}, core.WrapError(core.ErrMalformedInput, err)
	}
	if result.Method != MethodName {
		return did.DID{}, core.Errorf(core.ErrMalformedInput, "unsupported DID method: %s", result.Method)
	}
	return *result, nil
}

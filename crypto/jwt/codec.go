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

// Package jwt splits, parses and builds compact JWTs without verifying them.
// Signature verification is the responsibility of the crypto package.
package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/core"
)

// DecodeErrorKind is the stable classification of a decode failure.
type DecodeErrorKind string

const (
	// NotAString is returned when the input is not a string.
	NotAString DecodeErrorKind = "NotAString"
	// WrongComponentCount is returned when the input doesn't consist of exactly 3 dot-separated components.
	WrongComponentCount DecodeErrorKind = "WrongComponentCount"
	// ParseError is returned when the header or payload isn't base64url encoded JSON.
	ParseError DecodeErrorKind = "ParseError"
	// MissingHeader is returned when the header segment is empty or holds JSON null. An empty object is a valid header.
	MissingHeader DecodeErrorKind = "MissingHeader"
)

// DecodeError describes why a JWT could not be decoded.
type DecodeError struct {
	Kind  DecodeErrorKind
	Cause error
}

func (e DecodeError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid JWT (%s)", e.Kind)
	}
	return fmt.Sprintf("invalid JWT (%s): %s", e.Kind, e.Cause)
}

// Is makes every DecodeError match core.ErrMalformedInput.
func (e DecodeError) Is(target error) bool {
	return target == core.ErrMalformedInput
}

func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Token is a decoded, unverified compact JWT.
type Token struct {
	Header    map[string]interface{}
	Payload   map[string]interface{}
	Signature []byte
	// Raw holds the three components as transmitted.
	Raw [3]string
}

// SigningInput returns the bytes the signature is computed over: the transmitted header and payload joined by a dot.
func (t Token) SigningInput() []byte {
	return []byte(t.Raw[0] + "." + t.Raw[1])
}

// String returns the compact serialization as transmitted.
func (t Token) String() string {
	return strings.Join(t.Raw[:], ".")
}

// HeaderString returns the header parameter as string, or an empty string if it isn't present or not a string.
func (t Token) HeaderString(name string) string {
	s, _ := t.Header[name].(string)
	return s
}

// ClaimString returns the payload claim as string, or an empty string if it isn't present or not a string.
func (t Token) ClaimString(name string) string {
	s, _ := t.Payload[name].(string)
	return s
}

// ClaimObject returns the payload claim as JSON object, or nil if it isn't present or not an object.
func (t Token) ClaimObject(name string) map[string]interface{} {
	m, _ := t.Payload[name].(map[string]interface{})
	return m
}

// DecodeValue decodes a value of unknown type (e.g. taken from a JSON document) as a compact JWT.
func DecodeValue(input interface{}) (*Token, error) {
	switch v := input.(type) {
	case string:
		return Decode(v)
	case []byte:
		return Decode(string(v))
	default:
		return nil, DecodeError{Kind: NotAString, Cause: fmt.Errorf("got %T", input)}
	}
}

// Decode splits and parses the given compact JWT, without verifying its signature or any of its claims.
func Decode(input string) (*Token, error) {
	parts := strings.Split(strings.TrimSpace(input), ".")
	if len(parts) != 3 {
		return nil, DecodeError{Kind: WrongComponentCount, Cause: fmt.Errorf("expected 3 components, got %d", len(parts))}
	}
	result := Token{Raw: [3]string{parts[0], parts[1], parts[2]}}
	if parts[0] == "" {
		return nil, DecodeError{Kind: MissingHeader}
	}
	headerBytes, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, DecodeError{Kind: ParseError, Cause: fmt.Errorf("header: %w", err)}
	}
	if bytes.Equal(bytes.TrimSpace(headerBytes), []byte("null")) {
		return nil, DecodeError{Kind: MissingHeader}
	}
	if err = json.Unmarshal(headerBytes, &result.Header); err != nil {
		return nil, DecodeError{Kind: ParseError, Cause: fmt.Errorf("header: %w", err)}
	}
	payloadBytes, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, DecodeError{Kind: ParseError, Cause: fmt.Errorf("payload: %w", err)}
	}
	if err = json.Unmarshal(payloadBytes, &result.Payload); err != nil || result.Payload == nil {
		if err == nil {
			err = fmt.Errorf("payload is not a JSON object")
		}
		return nil, DecodeError{Kind: ParseError, Cause: fmt.Errorf("payload: %w", err)}
	}
	if result.Signature, err = DecodeSegment(parts[2]); err != nil {
		return nil, DecodeError{Kind: ParseError, Cause: fmt.Errorf("signature: %w", err)}
	}
	return &result, nil
}

// EncodeSegment returns the unpadded base64url encoding of the given data.
func EncodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeSegment decodes a base64url encoded segment.
// Padding and the standard base64 alphabet are tolerated, since not every issuer strictly follows RFC7515.
func DecodeSegment(segment string) ([]byte, error) {
	segment = strings.TrimRight(segment, "=")
	segment = strings.NewReplacer("+", "-", "/", "_").Replace(segment)
	return base64.RawURLEncoding.DecodeString(segment)
}

// DecodeStrictSegment decodes a segment that must be canonical unpadded base64url, as produced by EncodeSegment.
// Each encoded form maps to exactly one byte sequence and vice versa.
func DecodeStrictSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(segment)
}

// EncodeJSONSegment marshals the given value as JSON and returns its base64url encoding.
func EncodeJSONSegment(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return EncodeSegment(data), nil
}

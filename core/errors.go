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

import (
	"fmt"

	"github.com/go-errors/errors"
)

// The error kinds below classify every failure of a credential exchange.
// None of them is fatal to the process: they terminate the current exchange only.
var (
	// ErrMalformedInput is returned when a scanned URL, JWT or request body has an invalid shape.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNetwork is returned when a remote party (or the relay) could not be reached or returned a non-success status.
	ErrNetwork = errors.New("network error")
	// ErrProtocolViolation is returned when a remote party does not behave according to the exchange protocol,
	// e.g. required metadata is missing or an unsupported response type is requested.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrCrypto is returned when a key has the wrong role or a signature can't be created or verified.
	ErrCrypto = errors.New("crypto error")
	// ErrTimeout is returned when a deferred credential did not become available within the configured attempts.
	ErrTimeout = errors.New("timeout")
	// ErrDuplicateCredential is returned when a credential with the same key is already stored.
	ErrDuplicateCredential = errors.New("credential already exists")
)

type wrappedError struct {
	err   error
	cause error
}

func (w wrappedError) Error() string {
	// Use Sprintf to avoid nil dereferences, when someone accidentally passes a nil err or cause.
	return fmt.Sprintf("%s", w.err) + ": " + fmt.Sprintf("%s", w.cause)
}

func (w wrappedError) Is(other error) bool {
	return errors.Is(w.err, other)
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// WrapError returns an error that wraps a cause. In contrary to fmt.Errorf, errors.Is can be used on both the outer error and cause.
func WrapError(err error, cause error) error {
	return wrappedError{
		err:   err,
		cause: cause,
	}
}

// Errorf wraps a formatted error message in the given error kind.
func Errorf(kind error, format string, args ...interface{}) error {
	return WrapError(kind, fmt.Errorf(format, args...))
}

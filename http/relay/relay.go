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

// Package relay forwards HTTP requests on behalf of a client that can't call the target directly,
// e.g. a browser frontend calling an issuer that doesn't send CORS headers.
package relay

import (
	"encoding/json"
	"errors"
)

// Path is the path the relay endpoint is served on.
const Path = "/serverhandler"

// Request is the envelope of a relayed request.
type Request struct {
	// Method is the HTTP method of the request to the target: GET or POST.
	Method string `json:"method"`
	// URL is the target URL.
	URL string `json:"url"`
	// MimeType is the Content-Type of the body sent to the target.
	MimeType string `json:"mimetype,omitempty"`
	// Body is the request body. A JSON string is sent to the target verbatim, any other JSON value as JSON.
	Body json.RawMessage `json:"body,omitempty"`
	// Authorization is a bearer token, without the "Bearer " prefix.
	Authorization string `json:"authorization,omitempty"`
}

// payload returns the bytes to send to the target.
func (r Request) payload() ([]byte, error) {
	if len(r.Body) == 0 || string(r.Body) == "null" {
		return nil, nil
	}
	if r.Body[0] == '"' {
		var text string
		if err := json.Unmarshal(r.Body, &text); err != nil {
			return nil, err
		}
		return []byte(text), nil
	}
	return r.Body, nil
}

var errInvalidTarget = errors.New("invalid relay target URL")

var errUnsupportedMethod = errors.New("unsupported relay method")

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

package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/http/log"
)

var _ core.HTTPRequestDoer = (*Client)(nil)

// NewClient creates a HTTPRequestDoer that sends every request through the relay at the given URL.
func NewClient(relayURL string, doer core.HTTPRequestDoer) *Client {
	return &Client{relayURL: relayURL, doer: doer}
}

// Client wraps requests into a relay Request and POSTs them to the relay.
// The relay's response (status, headers and body of the target) is returned as-is.
type Client struct {
	relayURL string
	doer     core.HTTPRequestDoer
}

func (c Client) Do(httpRequest *http.Request) (*http.Response, error) {
	relayRequest, err := toRelayRequest(httpRequest)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(relayRequest)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(httpRequest.Context(), http.MethodPost, c.relayURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	log.Logger().
		WithField(core.LogFieldRelayTarget, relayRequest.URL).
		Debugf("Relaying %s request", relayRequest.Method)
	return c.doer.Do(request)
}

func toRelayRequest(httpRequest *http.Request) (*Request, error) {
	if httpRequest.Method != http.MethodGet && httpRequest.Method != http.MethodPost {
		return nil, fmt.Errorf("relay does not support HTTP method: %s", httpRequest.Method)
	}
	result := &Request{
		Method:        httpRequest.Method,
		URL:           httpRequest.URL.String(),
		MimeType:      httpRequest.Header.Get("Content-Type"),
		Authorization: strings.TrimPrefix(httpRequest.Header.Get("Authorization"), "Bearer "),
	}
	if httpRequest.Body == nil || httpRequest.Body == http.NoBody {
		return result, nil
	}
	body, err := io.ReadAll(httpRequest.Body)
	if err != nil {
		return nil, err
	}
	_ = httpRequest.Body.Close()
	if len(body) == 0 {
		return result, nil
	}
	mediaType, _, _ := mime.ParseMediaType(result.MimeType)
	if mediaType == "application/json" && json.Valid(body) {
		result.Body = body
	} else {
		result.Body, _ = json.Marshal(string(body))
	}
	return result, nil
}

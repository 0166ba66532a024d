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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/http/log"
	"golang.org/x/time/rate"
)

// maxResponseSize limits the size of a relayed response body.
const maxResponseSize = 10 * 1024 * 1024

var _ core.Routable = (*Handler)(nil)

// NewHandler creates the relay endpoint, forwarding requests using the given client.
// At most ratePerMinute requests are forwarded per minute, with the given burst.
func NewHandler(client core.HTTPRequestDoer, ratePerMinute int, burst int) *Handler {
	return &Handler{
		client:  client,
		limiter: newRateLimiter(time.Minute, rate.Limit(ratePerMinute), burst),
	}
}

// Handler is the server side of the relay.
type Handler struct {
	client  core.HTTPRequestDoer
	limiter echo.MiddlewareFunc
}

func (h Handler) Routes(router core.EchoRouter) {
	router.POST(Path, h.handle, h.limiter)
}

func (h Handler) handle(c echo.Context) error {
	var relayRequest Request
	if err := json.NewDecoder(c.Request().Body).Decode(&relayRequest); err != nil {
		return core.InvalidInputError("bad request")
	}
	upstreamRequest, err := h.buildRequest(c, relayRequest)
	if err != nil {
		return core.InvalidInputError("bad request")
	}
	log.Logger().
		WithField(core.LogFieldRelayTarget, relayRequest.URL).
		Debugf("Forwarding relayed %s request", relayRequest.Method)
	response, err := h.client.Do(upstreamRequest)
	if err != nil {
		return core.Error(http.StatusBadGateway, "unable to reach relay target: %w", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return core.Error(http.StatusBadGateway, "unable to read response of relay target: %w", err)
	}
	// the client reads authorization responses from the Location header
	if location := response.Header.Get("Location"); location != "" {
		c.Response().Header().Set("Location", location)
	}
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(response.StatusCode, contentType, body)
}

func (h Handler) buildRequest(c echo.Context, relayRequest Request) (*http.Request, error) {
	target, err := url.Parse(relayRequest.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, errInvalidTarget
	}
	var body io.Reader
	switch relayRequest.Method {
	case http.MethodGet:
	case http.MethodPost:
		payload, err := relayRequest.payload()
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	default:
		return nil, errUnsupportedMethod
	}
	request, err := http.NewRequestWithContext(c.Request().Context(), relayRequest.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	if relayRequest.MimeType != "" {
		request.Header.Set("Content-Type", relayRequest.MimeType)
	}
	if relayRequest.Authorization != "" {
		request.Header.Set("Authorization", "Bearer "+relayRequest.Authorization)
	}
	return request, nil
}

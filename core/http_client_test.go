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
	"bytes"
	"errors"
	"io"
	stdHttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictHTTPClient(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(stdHttp.HandlerFunc(func(res stdHttp.ResponseWriter, req *stdHttp.Request) {
		userAgent = req.UserAgent()
		if req.URL.Path == "/moved" {
			res.Header().Set("Location", "/")
			res.WriteHeader(stdHttp.StatusFound)
			return
		}
		if req.URL.Path == "/redirect" {
			res.Header().Set("Location", "openid://?response_type=id_token")
			res.WriteHeader(stdHttp.StatusFound)
			return
		}
		res.WriteHeader(stdHttp.StatusOK)
	}))
	defer server.Close()

	t.Run("sets user agent", func(t *testing.T) {
		GitVersion = ""
		client := NewStrictHTTPClient(false, time.Second, nil)
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, server.URL, nil)

		response, err := client.Do(req)

		require.NoError(t, err)
		assert.Equal(t, stdHttp.StatusOK, response.StatusCode)
		assert.Equal(t, "nuts-wallet/development", userAgent)
	})
	t.Run("follows redirects", func(t *testing.T) {
		client := NewStrictHTTPClient(false, time.Second, nil)
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, server.URL+"/moved", nil)

		response, err := client.Do(req)

		require.NoError(t, err)
		assert.Equal(t, stdHttp.StatusOK, response.StatusCode)
		assert.Equal(t, "/", response.Request.URL.Path)
	})
	t.Run("does not follow redirects when disabled", func(t *testing.T) {
		client := NewStrictHTTPClient(false, time.Second, nil).WithoutRedirects()
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, server.URL+"/redirect", nil)

		response, err := client.Do(req)

		require.NoError(t, err)
		assert.Equal(t, stdHttp.StatusFound, response.StatusCode)
		assert.Equal(t, "openid://?response_type=id_token", response.Header.Get("Location"))
	})
	t.Run("wrapped transport", func(t *testing.T) {
		var invoked bool
		client := NewStrictHTTPClient(false, time.Second, nil).WrapTransport(func(next stdHttp.RoundTripper) stdHttp.RoundTripper {
			return roundTripperFunc(func(req *stdHttp.Request) (*stdHttp.Response, error) {
				invoked = true
				return next.RoundTrip(req)
			})
		})
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, server.URL, nil)

		_, err := client.Do(req)

		require.NoError(t, err)
		assert.True(t, invoked)
	})
	t.Run("strict mode refuses redirect to plain HTTP", func(t *testing.T) {
		tlsServer := httptest.NewTLSServer(stdHttp.RedirectHandler(server.URL, stdHttp.StatusFound))
		defer tlsServer.Close()
		tlsConfig := tlsServer.Client().Transport.(*stdHttp.Transport).TLSClientConfig
		client := NewStrictHTTPClient(true, time.Second, tlsConfig)
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, tlsServer.URL, nil)

		_, err := client.Do(req)

		assert.ErrorContains(t, err, "strictmode is enabled, but redirect is not over HTTPS")
	})
	t.Run("stops after too many redirects", func(t *testing.T) {
		loop := httptest.NewServer(stdHttp.RedirectHandler("/", stdHttp.StatusFound))
		defer loop.Close()
		client := NewStrictHTTPClient(false, time.Second, nil)
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, loop.URL, nil)

		_, err := client.Do(req)

		assert.ErrorContains(t, err, "stopped after 10 redirects")
	})
	t.Run("strict mode refuses plain HTTP", func(t *testing.T) {
		client := NewStrictHTTPClient(true, time.Second, nil)
		req, _ := stdHttp.NewRequest(stdHttp.MethodGet, server.URL, nil)

		_, err := client.Do(req)

		assert.EqualError(t, err, "strictmode is enabled, but request is not over HTTPS")
	})
}

func TestTestResponseCode(t *testing.T) {
	t.Run("success codes", func(t *testing.T) {
		assert.NoError(t, TestResponseCode(&stdHttp.Response{StatusCode: stdHttp.StatusOK}))
		assert.NoError(t, TestResponseCode(&stdHttp.Response{StatusCode: stdHttp.StatusCreated}))
	})
	t.Run("error code carries status and body", func(t *testing.T) {
		err := TestResponseCode(&stdHttp.Response{StatusCode: stdHttp.StatusUnauthorized, Body: io.NopCloser(bytes.NewReader([]byte("denied")))})

		var httpErr HttpError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, stdHttp.StatusUnauthorized, httpErr.StatusCode)
		assert.Equal(t, []byte("denied"), httpErr.ResponseBody)
		assert.EqualError(t, err, "server returned HTTP 401")
	})
	t.Run("with logger", func(t *testing.T) {
		request, _ := stdHttp.NewRequest(stdHttp.MethodGet, "https://example.com/path", nil)
		response := &stdHttp.Response{
			StatusCode: stdHttp.StatusBadRequest,
			Body:       io.NopCloser(bytes.NewReader(bytes.Repeat([]byte("a"), 200))),
			Request:    request,
		}

		err := TestResponseCodeWithLog(response, logrus.NewEntry(logrus.New()))

		assert.Error(t, err)
	})
}

type roundTripperFunc func(*stdHttp.Request) (*stdHttp.Response, error)

func (f roundTripperFunc) RoundTrip(req *stdHttp.Request) (*stdHttp.Response, error) {
	return f(req)
}

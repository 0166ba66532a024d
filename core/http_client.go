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
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const maxRedirects = 10

// HttpError describes an error returned when invoking a remote server.
type HttpError struct {
	error
	StatusCode   int
	ResponseBody []byte
}

// IsSuccess returns true if the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// TestResponseCode checks whether the returned HTTP status response code is a success (2xx) code.
// If it isn't it returns an HttpError, containing the received status code and the response body.
func TestResponseCode(response *http.Response) error {
	return TestResponseCodeWithLog(response, nil)
}

// TestResponseCodeWithLog acts like TestResponseCode, but logs the response body if the status code is not a success code.
// It logs using the given logger, unless nil is passed.
func TestResponseCodeWithLog(response *http.Response, log *logrus.Entry) error {
	if IsSuccess(response.StatusCode) {
		return nil
	}
	responseData, _ := io.ReadAll(response.Body)
	if log != nil {
		// Cut off the response body to 100 characters max to prevent logging of large responses
		responseBodyString := string(responseData)
		if len(responseBodyString) > 100 {
			responseBodyString = responseBodyString[:100] + "...(clipped)"
		}
		entry := log
		if response.Request != nil {
			entry = log.WithField("http_request_path", response.Request.URL.Path)
		}
		entry.Infof("Unexpected HTTP response (status=%d, len=%d): %s", response.StatusCode, len(responseData), responseBodyString)
	}
	return HttpError{
		error:        fmt.Errorf("server returned HTTP %d", response.StatusCode),
		StatusCode:   response.StatusCode,
		ResponseBody: responseData,
	}
}

// HTTPRequestDoer defines the Do method of the http.Client interface.
type HTTPRequestDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// UserAgentTransport sets the User-Agent header on every request.
type UserAgentTransport struct {
	Next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (u UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent())
	}
	return u.Next.RoundTrip(req)
}

// NewStrictHTTPClient creates a HTTPRequestDoer that only allows HTTPS calls when strictmode is enabled.
// Redirects are followed, in strict mode only to HTTPS locations. Use WithoutRedirects to disable that.
func NewStrictHTTPClient(strictmode bool, timeout time.Duration, tlsConfig *tls.Config) *StrictHTTPClient {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	transport := http.DefaultTransport
	// Might not be http.Transport in testing
	if httpTransport, ok := transport.(*http.Transport); ok {
		// cloning the transport might reduce performance.
		httpTransport = httpTransport.Clone()
		httpTransport.TLSClientConfig = tlsConfig
		transport = httpTransport
	}

	result := &StrictHTTPClient{
		client: &http.Client{
			Transport: UserAgentTransport{Next: transport},
			Timeout:   timeout,
		},
		strictMode: strictmode,
	}
	result.client.CheckRedirect = result.checkRedirect
	return result
}

// StrictHTTPClient is a HTTPRequestDoer that refuses plain HTTP when strict mode is enabled.
type StrictHTTPClient struct {
	client     *http.Client
	strictMode bool
}

// WrapTransport wraps the client's transport, e.g. to cache responses.
func (s *StrictHTTPClient) WrapTransport(wrap func(next http.RoundTripper) http.RoundTripper) *StrictHTTPClient {
	s.client.Transport = wrap(s.client.Transport)
	return s
}

// WithoutRedirects makes the client return redirect responses instead of following them,
// so callers can read the Location header of authorization responses.
func (s *StrictHTTPClient) WithoutRedirects() *StrictHTTPClient {
	s.client.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return s
}

func (s *StrictHTTPClient) checkRedirect(req *http.Request, via []*http.Request) error {
	if s.strictMode && req.URL.Scheme != "https" {
		return errors.New("strictmode is enabled, but redirect is not over HTTPS")
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

func (s *StrictHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if s.strictMode && req.URL.Scheme != "https" {
		return nil, errors.New("strictmode is enabled, but request is not over HTTPS")
	}
	return s.client.Do(req)
}

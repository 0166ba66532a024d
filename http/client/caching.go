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

package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nuts-foundation/nuts-wallet/http/log"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pquerna/cachecontrol"
)

// maxCacheTime is the maximum time responses are cached.
// Even if the server responds with a longer cache time, responses are never cached longer than maxCacheTime.
const maxCacheTime = time.Hour

var _ http.RoundTripper = &CachingRoundTripper{}

// NewCachingTransport creates a CachingRoundTripper on top of the given transport.
// Responses larger than maxEntryBytes are never cached.
func NewCachingTransport(underlyingTransport http.RoundTripper, maxEntryBytes int) *CachingRoundTripper {
	return &CachingRoundTripper{
		cache:            gocache.New(gocache.NoExpiration, 10*time.Minute),
		maxEntryBytes:    maxEntryBytes,
		wrappedTransport: underlyingTransport,
	}
}

// CachingRoundTripper caches responses to GET requests for issuer and authorization server metadata documents.
// Only 200 OK responses that are cacheable according to RFC 7234 are cached, for at most maxCacheTime.
// It only works on expiration time and does not respect ETags.
type CachingRoundTripper struct {
	cache            *gocache.Cache
	maxEntryBytes    int
	wrappedTransport http.RoundTripper
}

type cacheEntry struct {
	responseData    []byte
	responseStatus  int
	responseHeaders http.Header
}

func (r *CachingRoundTripper) RoundTrip(httpRequest *http.Request) (*http.Response, error) {
	if httpRequest.Method == http.MethodGet {
		if cached, ok := r.cache.Get(httpRequest.URL.String()); ok {
			entry := cached.(*cacheEntry)
			return &http.Response{
				StatusCode: entry.responseStatus,
				Header:     entry.responseHeaders.Clone(),
				Body:       io.NopCloser(bytes.NewReader(entry.responseData)),
				Request:    httpRequest,
			}, nil
		}
	}
	httpResponse, err := r.wrappedTransport.RoundTrip(httpRequest)
	if err != nil {
		return nil, err
	}
	if err = r.cacheResponse(httpRequest, httpResponse); err != nil {
		return nil, err
	}
	return httpResponse, nil
}

// Len returns the number of cached responses.
func (r *CachingRoundTripper) Len() int {
	return r.cache.ItemCount()
}

func (r *CachingRoundTripper) cacheResponse(httpRequest *http.Request, httpResponse *http.Response) error {
	if httpRequest.Method != http.MethodGet || httpResponse.StatusCode != http.StatusOK {
		return nil
	}
	reasons, expirationTime, err := cachecontrol.CachableResponse(httpRequest, httpResponse, cachecontrol.Options{PrivateCache: false})
	if err != nil {
		log.Logger().WithError(err).Infof("error while checking cacheability of response (url=%s), not caching", httpRequest.URL.String())
		return nil
	}
	if len(reasons) > 0 || expirationTime.IsZero() {
		log.Logger().Debugf("response (url=%s) is not cacheable: %v", httpRequest.URL.String(), reasons)
		return nil
	}
	ttl := time.Until(expirationTime)
	if ttl > maxCacheTime {
		ttl = maxCacheTime
	}
	if ttl <= 0 {
		return nil
	}
	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return fmt.Errorf("error while reading response body for caching: %w", err)
	}
	_ = httpResponse.Body.Close()
	httpResponse.Body = io.NopCloser(bytes.NewReader(responseBytes))
	if len(responseBytes) > r.maxEntryBytes {
		return nil
	}
	r.cache.Set(httpRequest.URL.String(), &cacheEntry{
		responseData:    responseBytes,
		responseStatus:  httpResponse.StatusCode,
		responseHeaders: httpResponse.Header.Clone(),
	}, ttl)
	return nil
}

// expiration returns the expiration time of the cached response for the given URL, for testing.
func (r *CachingRoundTripper) expiration(url string) (time.Time, bool) {
	_, expiration, ok := r.cache.GetWithExpiration(url)
	return expiration, ok
}

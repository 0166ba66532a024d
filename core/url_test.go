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
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURLPaths(t *testing.T) {
	assert.Equal(t, "", JoinURLPaths())
	assert.Equal(t, "https://issuer.example/.well-known/openid-credential-issuer", JoinURLPaths("https://issuer.example/", "/.well-known/openid-credential-issuer"))
	assert.Equal(t, "https://issuer.example/tenant/a", JoinURLPaths("https://issuer.example/tenant", "", "a"))
}

func TestParseHTTPURL(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		u, err := ParseHTTPURL("https://issuer.example/offer?id=1")

		require.NoError(t, err)
		assert.Equal(t, "https://issuer.example", Origin(u))
	})
	t.Run("other scheme", func(t *testing.T) {
		_, err := ParseHTTPURL("openid4vp://?request_uri=x")

		assert.ErrorIs(t, err, ErrMalformedInput)
	})
	t.Run("no host", func(t *testing.T) {
		_, err := ParseHTTPURL("https:///path")

		assert.ErrorIs(t, err, ErrMalformedInput)
	})
	t.Run("unparsable", func(t *testing.T) {
		_, err := ParseHTTPURL("http://[::1")

		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestAddQueryParams(t *testing.T) {
	u, _ := url.Parse("https://issuer.example/authorize?existing=1")

	result := AddQueryParams(*u, url.Values{
		"response_type": []string{"code"},
		"state":         []string{"a b"},
	})

	assert.Equal(t, "https://issuer.example/authorize?existing=1&response_type=code&state=a+b", result.String())
}

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

package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoCache(t *testing.T) {
	handle := func(t *testing.T, requestPath string) http.Header {
		e := echo.New()
		httpResponse := httptest.NewRecorder()
		echoContext := e.NewContext(httptest.NewRequest(http.MethodGet, requestPath, nil), httpResponse)

		err := NoCache("/internal/wallet", "/serverhandler").Handle(func(c echo.Context) error {
			return c.String(http.StatusOK, "OK")
		})(echoContext)

		require.NoError(t, err)
		return httpResponse.Header()
	}

	t.Run("match", func(t *testing.T) {
		header := handle(t, "/internal/wallet/v1/credentials?days=7")

		assert.Equal(t, "no-store", header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", header.Get("Pragma"))
	})
	t.Run("no match", func(t *testing.T) {
		header := handle(t, "/status")

		assert.Empty(t, header.Get("Cache-Control"))
		assert.Empty(t, header.Get("Pragma"))
	})
}

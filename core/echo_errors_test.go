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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"schneider.vip/problem"
)

type stubResolver struct {
	target     error
	statusCode int
}

func (s stubResolver) ResolveStatusCode(err error) int {
	if errors.Is(err, s.target) {
		return s.statusCode
	}
	return 0
}

type stubErrorWriter struct{}

func (s stubErrorWriter) Write(echoContext echo.Context, statusCode int, _ string, err error) error {
	return echoContext.String(statusCode, "custom: "+err.Error())
}

func TestHttpErrorHandler(t *testing.T) {
	server := echo.New()
	server.HTTPErrorHandler = CreateHTTPErrorHandler()
	call := func(handler echo.HandlerFunc) *httptest.ResponseRecorder {
		server.GET("/", handler)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		return recorder
	}

	t.Run("echo HTTPError", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "failed")
		})

		assert.Equal(t, http.StatusForbidden, response.Code)
		assert.Equal(t, problem.ContentTypeJSON, response.Header().Get("Content-Type"))
		body, _ := io.ReadAll(response.Body)
		assert.Equal(t, `{"detail":"failed","status":403,"title":"Operation failed"}`, string(body))
	})
	t.Run("status code from resolver", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			c.Set(OperationIDContextKey, "Issue")
			c.Set(StatusCodeResolverContextKey, stubResolver{target: ErrTimeout, statusCode: http.StatusGatewayTimeout})
			return WrapError(ErrTimeout, errors.New("no credential"))
		})

		assert.Equal(t, http.StatusGatewayTimeout, response.Code)
		assert.Contains(t, response.Body.String(), `"title":"Issue failed"`)
	})
	t.Run("resolver doesn't know the error", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			c.Set(StatusCodeResolverContextKey, stubResolver{target: ErrTimeout, statusCode: http.StatusGatewayTimeout})
			return WrapError(ErrNetwork, errors.New("connection refused"))
		})

		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
	t.Run("unmapped error", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			return errors.New("unexpected")
		})

		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
	t.Run("predefined status code", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			return NotFoundError("credential not found: %s", "abc")
		})

		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Contains(t, response.Body.String(), "credential not found: abc")
	})
	t.Run("custom error writer", func(t *testing.T) {
		response := call(func(c echo.Context) error {
			c.Set(ErrorWriterContextKey, stubErrorWriter{})
			return InvalidInputError("missing url")
		})

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, "custom: missing url", response.Body.String())
	})
}

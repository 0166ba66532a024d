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

package openid4vci

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Run("code only", func(t *testing.T) {
		assert.Equal(t, "invalid_grant", Error{Code: InvalidGrant}.Error())
	})
	t.Run("with description and underlying error", func(t *testing.T) {
		err := Error{Code: InvalidProof, Description: "nonce mismatch", Err: errors.New("boom")}

		assert.Equal(t, "invalid_proof (nonce mismatch) - boom", err.Error())
	})
}

func Test_parseError(t *testing.T) {
	t.Run("OAuth2 error response", func(t *testing.T) {
		err := parseError(http.StatusBadRequest, []byte(`{"error":"invalid_grant","error_description":"code expired"}`))

		assert.Equal(t, InvalidGrant, err.Code)
		assert.Equal(t, "code expired", err.Description)
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Nil(t, err.Err)
	})
	t.Run("client error without body", func(t *testing.T) {
		err := parseError(http.StatusForbidden, nil)

		assert.Equal(t, InvalidRequest, err.Code)
		assert.Equal(t, http.StatusForbidden, err.StatusCode)
		assert.EqualError(t, err, "invalid_request - server returned HTTP 403 (Forbidden)")
	})
	t.Run("server error with non-JSON body", func(t *testing.T) {
		err := parseError(http.StatusBadGateway, []byte("<html>"))

		assert.Equal(t, ServerError, err.Code)
	})
}

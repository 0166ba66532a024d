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

package wallet

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
)

// UserError is an error as shown to the user of the wallet.
type UserError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e UserError) Error() string {
	return e.Title + ": " + e.Message
}

type errorKind struct {
	err        error
	title      string
	statusCode int
	label      string
}

// errorKinds is ordered from most to least specific, since an error can match multiple kinds
// (e.g. a rejected transaction code is also a network error).
var errorKinds = []errorKind{
	{err: holder.ErrTxCodeRejected, title: "Invalid PIN", statusCode: http.StatusForbidden, label: "tx_code_rejected"},
	{err: core.ErrDuplicateCredential, title: "Credential already stored", statusCode: http.StatusConflict, label: "duplicate"},
	{err: storage.ErrNonceReplayed, title: "Request already answered", statusCode: http.StatusConflict, label: "replayed"},
	{err: storage.ErrNotFound, title: "Not found", statusCode: http.StatusNotFound, label: "not_found"},
	{err: core.ErrTimeout, title: "Credential not available", statusCode: http.StatusGatewayTimeout, label: "timeout"},
	{err: core.ErrMalformedInput, title: "Invalid input", statusCode: http.StatusBadRequest, label: "malformed_input"},
	{err: core.ErrCrypto, title: "Signature error", statusCode: http.StatusInternalServerError, label: "crypto"},
	{err: core.ErrProtocolViolation, title: "Protocol error", statusCode: http.StatusBadGateway, label: "protocol_violation"},
	{err: core.ErrNetwork, title: "Network error", statusCode: http.StatusBadGateway, label: "network"},
}

func kindOf(err error) *errorKind {
	for i := range errorKinds {
		if errors.Is(err, errorKinds[i].err) {
			return &errorKinds[i]
		}
	}
	return nil
}

// ToUserError converts an error of a credential exchange to the title and message shown to the user.
func ToUserError(err error) UserError {
	var userErr UserError
	if errors.As(err, &userErr) {
		return userErr
	}
	result := UserError{Title: "Error", Message: err.Error()}
	if kind := kindOf(err); kind != nil {
		result.Title = kind.title
	}
	if errors.Is(err, holder.ErrTxCodeRejected) {
		result.Message = "The issuer rejected the PIN. Scan the QR code again to retry."
	}
	return result
}

// resultLabel returns the label of the outcome of an exchange, used in metrics.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if kind := kindOf(err); kind != nil {
		return kind.label
	}
	return "error"
}

// ResolveStatusCode maps the error kinds to HTTP status codes.
func (w *Wallet) ResolveStatusCode(err error) int {
	if kind := kindOf(err); kind != nil {
		return kind.statusCode
	}
	return http.StatusInternalServerError
}

// userErrorWriter writes errors as UserError JSON objects.
type userErrorWriter struct{}

func (userErrorWriter) Write(echoContext echo.Context, statusCode int, _ string, err error) error {
	return echoContext.JSON(statusCode, ToUserError(err))
}

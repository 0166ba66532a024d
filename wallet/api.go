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
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/nuts-wallet/auth/openid4vp"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/http/cache"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/credential"
)

// APIPath is the base path of the wallet API used by the user interface.
const APIPath = "/internal/wallet/v1"

// IssuanceRequest is the body of POST /issuance.
type IssuanceRequest struct {
	URL    string `json:"url"`
	TxCode string `json:"tx_code,omitempty"`
}

// PresentationStartRequest is the body of POST /presentation.
type PresentationStartRequest struct {
	URL string `json:"url"`
}

// PresentationStartResponse is the response of POST /presentation.
type PresentationStartResponse struct {
	// ID identifies the presentation request when submitting it. It's empty when there's no matching credential.
	ID      string                         `json:"id,omitempty"`
	Request *openid4vp.PresentationRequest `json:"request"`
	// Message is set when there's no matching credential.
	Message string `json:"message,omitempty"`
}

// PresentationSubmitRequest is the body of POST /presentation/submit.
type PresentationSubmitRequest struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// CredentialResponse is a stored credential with its text preview.
type CredentialResponse struct {
	storage.CredentialRecord
	Preview string `json:"preview"`
}

// Routes registers the wallet API and, when enabled, the relay endpoint.
func (w *Wallet) Routes(router core.EchoRouter) {
	router.Use(cache.NoCache(APIPath).Handle)
	router.GET(APIPath+"/did", w.handleGetDID, w.errorContext("GetDID"))
	router.POST(APIPath+"/issuance", w.handleIssue, w.errorContext("Issue"))
	router.GET(APIPath+"/credentials", w.handleListCredentials, w.errorContext("ListCredentials"))
	router.GET(APIPath+"/credentials/:key", w.handleGetCredential, w.errorContext("GetCredential"))
	router.DELETE(APIPath+"/credentials/:key", w.handleDeleteCredential, w.errorContext("DeleteCredential"))
	router.DELETE(APIPath+"/credentials", w.handleDeleteAllCredentials, w.errorContext("DeleteAllCredentials"))
	router.POST(APIPath+"/presentation", w.handleStartPresentation, w.errorContext("StartPresentation"))
	router.POST(APIPath+"/presentation/submit", w.handleSubmitPresentation, w.errorContext("SubmitPresentation"))
	router.GET(APIPath+"/logs", w.handleListLogs, w.errorContext("ListLogs"))
	if w.relayHandler != nil {
		w.relayHandler.Routes(router)
	}
}

// errorContext makes the error handler write errors as UserError, with status codes resolved by the wallet.
func (w *Wallet) errorContext(operationID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(core.OperationIDContextKey, operationID)
			c.Set(core.ErrorWriterContextKey, userErrorWriter{})
			c.Set(core.StatusCodeResolverContextKey, w)
			return next(c)
		}
	}
}

func (w *Wallet) handleGetDID(c echo.Context) error {
	id, err := w.DID(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"did": id})
}

func (w *Wallet) handleIssue(c echo.Context) error {
	var request IssuanceRequest
	if err := c.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.URL == "" {
		return core.InvalidInputError("url is required")
	}
	result, err := w.Issue(c.Request().Context(), request.URL, request.TxCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (w *Wallet) handleListCredentials(c echo.Context) error {
	records, err := w.Credentials(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (w *Wallet) handleGetCredential(c echo.Context) error {
	record, err := w.Credential(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	preview, err := credential.Preview(*record)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CredentialResponse{CredentialRecord: *record, Preview: preview})
}

func (w *Wallet) handleDeleteCredential(c echo.Context) error {
	if err := w.DeleteCredential(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (w *Wallet) handleDeleteAllCredentials(c echo.Context) error {
	if err := w.DeleteAllCredentials(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (w *Wallet) handleStartPresentation(c echo.Context) error {
	var request PresentationStartRequest
	if err := c.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.URL == "" {
		return core.InvalidInputError("url is required")
	}
	id, presentationRequest, err := w.StartPresentation(c.Request().Context(), request.URL)
	if err != nil {
		return err
	}
	response := PresentationStartResponse{ID: id, Request: presentationRequest}
	if presentationRequest.NoMatch() {
		response.Message = presentationRequest.NoMatchMessage()
	}
	return c.JSON(http.StatusOK, response)
}

func (w *Wallet) handleSubmitPresentation(c echo.Context) error {
	var request PresentationSubmitRequest
	if err := c.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.ID == "" || request.Key == "" {
		return core.InvalidInputError("id and key are required")
	}
	result, err := w.SubmitPresentation(c.Request().Context(), request.ID, request.Key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (w *Wallet) handleListLogs(c echo.Context) error {
	entries, err := w.Logs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

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

package http

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// requestLoggerMiddleware returns middleware that logs metadata of HTTP requests.
// Should be added as the outer middleware to catch all errors and potential status rewrites
func requestLoggerMiddleware(skipper middleware.Skipper, logger *logrus.Entry) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:     skipper,
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			status := values.Status
			if values.Error != nil {
				status = resolveStatus(values.Error)
			}
			logger.WithFields(logrus.Fields{
				"remote_ip": values.RemoteIP,
				"method":    values.Method,
				"uri":       values.URI,
				"status":    status,
			}).Info("HTTP request")
			return nil
		},
	})
}

// resolveStatus determines the status code the error handler will write for the given error.
func resolveStatus(err error) int {
	// e.g. core.HTTPStatusCodeError
	if x, ok := err.(interface{ StatusCode() int }); ok {
		return x.StatusCode()
	}
	if x, ok := err.(*echo.HTTPError); ok {
		return x.Code
	}
	return http.StatusInternalServerError
}

// bodyLoggerMiddleware returns middleware that logs body of HTTP requests and their replies.
func bodyLoggerMiddleware(skipper middleware.Skipper, logger *logrus.Entry) echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Handler: func(e echo.Context, request []byte, response []byte) {
			logger.Infof("HTTP request body: %s", loggableBody(e.Request().Header.Get("Content-Type"), request))
			logger.Infof("HTTP response body: %s", loggableBody(e.Response().Header().Get("Content-Type"), response))
		},
		Skipper: skipper,
	})
}

func loggableBody(contentType string, body []byte) string {
	if !isLoggableContentType(contentType) {
		return "(not loggable: " + contentType + ")"
	}
	return string(body)
}

func isLoggableContentType(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json", "application/problem+json", "application/x-www-form-urlencoded", "text/plain":
		return true
	}
	return false
}

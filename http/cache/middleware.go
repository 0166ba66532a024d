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
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Middleware sets headers that prevent caching of responses under the given path prefixes.
// Wallet API responses contain credentials and session state, which must never end up in a browser or proxy cache.
type Middleware struct {
	Skipper middleware.Skipper
}

func (m Middleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.Skipper(c) {
			c.Response().Header().Set("Cache-Control", "no-store")
			// Pragma is deprecated (HTTP/1.0) but it's specified by OAuth2 RFC6749,
			// so specify it for compliance.
			c.Response().Header().Set("Pragma", "no-cache")
		}
		return next(c)
	}
}

// NoCache creates a new middleware that disables caching for requests whose path starts with one of the given prefixes.
func NoCache(pathPrefixes ...string) Middleware {
	return Middleware{
		Skipper: func(c echo.Context) bool {
			for _, prefix := range pathPrefixes {
				if strings.HasPrefix(c.Request().URL.Path, prefix) {
					return false
				}
			}
			return true
		},
	}
}

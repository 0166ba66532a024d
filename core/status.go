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
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var _ Routable = (*StatusEngine)(nil)
var _ Diagnosable = (*StatusEngine)(nil)

// StatusEngine serves the liveness endpoint and a text overview of the diagnostics of all engines.
type StatusEngine struct {
	system *System
}

// NewStatusEngine creates a new StatusEngine for the given system.
func NewStatusEngine(system *System) *StatusEngine {
	return &StatusEngine{system: system}
}

func (s *StatusEngine) Name() string {
	return "Status"
}

func (s *StatusEngine) Routes(router EchoRouter) {
	router.GET("/status/diagnostics", s.diagnosticsOverview)
	router.GET("/status", statusOK)
}

// Diagnostics lists the names of all registered engines.
func (s *StatusEngine) Diagnostics() []DiagnosticResult {
	return []DiagnosticResult{&GenericDiagnosticResult{Title: "Registered engines", Outcome: strings.Join(s.listAllEngines(), ",")}}
}

func (s *StatusEngine) diagnosticsOverview(ctx echo.Context) error {
	return ctx.String(http.StatusOK, s.diagnosticsSummaryAsText())
}

func (s *StatusEngine) diagnosticsSummaryAsText() string {
	var lines []string
	_ = s.system.VisitEnginesE(func(engine Engine) error {
		diagnosable, ok := engine.(Diagnosable)
		named, hasName := engine.(Named)
		if !ok || !hasName {
			return nil
		}
		lines = append(lines, named.Name())
		for _, d := range diagnosable.Diagnostics() {
			lines = append(lines, fmt.Sprintf("\t%s: %s", d.Name(), d.String()))
		}
		return nil
	})
	return strings.Join(lines, "\n")
}

func (s *StatusEngine) listAllEngines() []string {
	var names []string
	_ = s.system.VisitEnginesE(func(engine Engine) error {
		if named, ok := engine.(Named); ok {
			names = append(names, named.Name())
		}
		return nil
	})
	return names
}

// statusOK returns 200 OK with a "OK" body
func statusOK(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}

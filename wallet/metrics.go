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
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/prometheus/client_golang/prometheus"
)

var issuanceCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: core.MetricsPrefix + "issuance_total",
	Help: "Number of credential issuance flows, by result.",
}, []string{"result"})

var presentationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: core.MetricsPrefix + "presentation_total",
	Help: "Number of presentation flows, by result.",
}, []string{"result"})

func registerMetrics() error {
	return core.RegisterCollectors(issuanceCounter, presentationCounter)
}

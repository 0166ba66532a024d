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

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPrefix is the prefix of all metrics the wallet exposes.
const MetricsPrefix = "wallet_"

// MetricsEngine exposes prometheus metrics on /metrics.
// By default, the GoCollector and ProcessCollector are enabled.
type MetricsEngine struct{}

// NewMetricsEngine creates a new MetricsEngine.
func NewMetricsEngine() *MetricsEngine {
	return &MetricsEngine{}
}

// Name returns the name of the engine.
func (m *MetricsEngine) Name() string {
	return "Metrics"
}

// Configure registers the default collectors.
func (m *MetricsEngine) Configure(_ WalletConfig) error {
	return RegisterCollectors(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Routes registers the /metrics endpoint.
func (m *MetricsEngine) Routes(router EchoRouter) {
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCollectors registers the given collectors on the default registry, ignoring collectors that are already registered.
func RegisterCollectors(collectors ...prometheus.Collector) error {
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

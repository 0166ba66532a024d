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

import "time"

// DefaultConfig returns the default configuration of the wallet engine.
func DefaultConfig() Config {
	return Config{
		RedirectURI: "openid:",
		Deferred: DeferredConfig{
			Attempts: 10,
			Interval: time.Second,
		},
		RecentDays: 365,
	}
}

// Config is the configuration of the wallet engine.
type Config struct {
	// RedirectURI is the redirect_uri the wallet sends in authorization requests to issuers.
	RedirectURI string `koanf:"redirecturi"`
	// Deferred configures the polling of deferred credentials.
	Deferred DeferredConfig `koanf:"deferred"`
	// RecentDays is the number of days stored credentials are listed and offered to verifiers.
	RecentDays int `koanf:"recentdays"`
	// ResponseURIAllowList restricts the hosts presentations may be sent to. If empty, all hosts are allowed.
	ResponseURIAllowList []string `koanf:"responseuriallowlist"`
}

// DeferredConfig configures the polling of the deferred credential endpoint.
type DeferredConfig struct {
	// Attempts is the maximum number of polls.
	Attempts uint `koanf:"attempts"`
	// Interval is the time between polls.
	Interval time.Duration `koanf:"interval"`
}

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

package storage

import "time"

// DefaultConfig returns the default configuration for the storage engine.
func DefaultConfig() Config {
	return Config{
		BBolt: BBoltConfig{
			Filename: "wallet.db",
		},
		Session: SessionConfig{
			TTL: DefaultSessionTTL,
		},
	}
}

// Config specifies config for the storage engine.
type Config struct {
	BBolt   BBoltConfig   `koanf:"bbolt"`
	Session SessionConfig `koanf:"session"`
}

// BBoltConfig specifies config for the BBolt database holding credentials, keys, settings and the activity log.
type BBoltConfig struct {
	// Filename is the name of the database file, relative to the data directory.
	Filename string `koanf:"filename"`
	// NoSync disables fsync after each write. Only use it for testing.
	NoSync bool `koanf:"nosync"`
}

// SessionConfig specifies config for the in-memory session store.
type SessionConfig struct {
	// TTL is the time pending flows and claimed nonces are retained.
	TTL time.Duration `koanf:"ttl"`
}

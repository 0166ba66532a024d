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

import (
	"path"
	"testing"
)

// NewTestStore creates a BBolt-backed Store in a temporary directory, which is closed when the test completes.
func NewTestStore(t testing.TB) Store {
	t.Helper()
	store, err := NewBBoltStore(path.Join(t.TempDir(), "wallet.db"), true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewTestSessionStore creates an in-memory SessionStore.
func NewTestSessionStore(prefixes ...string) SessionStore {
	return NewSessionDatabase().GetStore(DefaultSessionTTL, prefixes...)
}

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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagSet(t *testing.T) {
	flags := FlagSet()

	attempts, _ := flags.GetUint("wallet.deferred.attempts")
	interval, _ := flags.GetDuration("wallet.deferred.interval")
	redirectURI, _ := flags.GetString("wallet.redirecturi")
	assert.Equal(t, uint(10), attempts)
	assert.Equal(t, "1s", interval.String())
	assert.Equal(t, "openid:", redirectURI)
	assert.NotNil(t, flags.Lookup("wallet.responseuriallowlist"))
	assert.NotNil(t, flags.Lookup("wallet.recentdays"))
}

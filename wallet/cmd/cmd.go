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
	"github.com/nuts-foundation/nuts-wallet/wallet"
	"github.com/spf13/pflag"
)

// FlagSet contains flags relevant for the wallet engine
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("wallet", pflag.ContinueOnError)
	defs := wallet.DefaultConfig()
	flagSet.String("wallet.redirecturi", defs.RedirectURI, "The redirect_uri the wallet sends in authorization requests to issuers.")
	flagSet.Uint("wallet.deferred.attempts", defs.Deferred.Attempts, "Maximum number of polls of the deferred credential endpoint of an issuer.")
	flagSet.Duration("wallet.deferred.interval", defs.Deferred.Interval, "Time between polls of the deferred credential endpoint, formatted as Golang duration (e.g. 1s, 500ms).")
	flagSet.Int("wallet.recentdays", defs.RecentDays, "Number of days stored credentials are listed and offered to verifiers.")
	flagSet.StringSlice("wallet.responseuriallowlist", defs.ResponseURIAllowList, "Hosts presentations may be sent to. When not set, all hosts are allowed.")
	return flagSet
}

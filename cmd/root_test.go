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
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/nuts-foundation/nuts-wallet/http"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, datadir string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	command := CreateCommand(CreateSystem(func() {}))
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(append(args, "--datadir", datadir, "--configfile", ""))
	err := command.ExecuteContext(context.Background())
	return buf.String(), err
}

func Test_rootCommand(t *testing.T) {
	t.Run("no args prints help", func(t *testing.T) {
		oldStdout := stdOutWriter
		buf := new(bytes.Buffer)
		stdOutWriter = buf
		defer func() {
			stdOutWriter = oldStdout
		}()
		oldArgs := os.Args
		os.Args = []string{"wallet"}
		defer func() {
			os.Args = oldArgs
		}()

		err := Execute(context.Background(), CreateSystem(func() {}))

		require.NoError(t, err)
		actual := buf.String()
		assert.Contains(t, actual, "Available Commands")
		assert.Contains(t, actual, "present")
	})
	t.Run("config", func(t *testing.T) {
		output, err := runCommand(t, t.TempDir(), "config", "--wallet.recentdays", "30")

		require.NoError(t, err)
		assert.Contains(t, output, "Current system config")
		assert.Contains(t, output, "wallet.recentdays -> 30")
	})
}

func Test_didCommand(t *testing.T) {
	datadir := t.TempDir()

	first, err := runCommand(t, datadir, "did")
	require.NoError(t, err)
	second, err := runCommand(t, datadir, "did")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "did:key:z"), first)
	assert.Equal(t, first, second, "DID must be created once and then reused")

	t.Run("as QR code", func(t *testing.T) {
		output, err := runCommand(t, datadir, "did", "--qr")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(output, first))
		assert.Greater(t, len(output), len(first))
	})
	t.Run("unexpected argument", func(t *testing.T) {
		_, err := runCommand(t, datadir, "did", "extra")

		assert.Error(t, err)
	})
}

func Test_credentialCommand(t *testing.T) {
	datadir := t.TempDir()

	t.Run("list without credentials", func(t *testing.T) {
		output, err := runCommand(t, datadir, "credential", "list")

		require.NoError(t, err)
		assert.Contains(t, output, "No credentials")
	})
	t.Run("delete", func(t *testing.T) {
		output, err := runCommand(t, datadir, "credential", "delete", "unknown")

		require.NoError(t, err)
		assert.Contains(t, output, "Credential deleted")
	})
	t.Run("delete-all", func(t *testing.T) {
		output, err := runCommand(t, datadir, "credential", "delete-all")

		require.NoError(t, err)
		assert.Contains(t, output, "All credentials deleted")
	})
	t.Run("delete requires key", func(t *testing.T) {
		_, err := runCommand(t, datadir, "credential", "delete")

		assert.Error(t, err)
	})
}

func Test_issueCommand(t *testing.T) {
	t.Run("invalid offer URL", func(t *testing.T) {
		_, err := runCommand(t, t.TempDir(), "issue", "ftp://example.com")

		assert.Error(t, err)
	})
	t.Run("requires URL", func(t *testing.T) {
		_, err := runCommand(t, t.TempDir(), "issue")

		assert.Error(t, err)
	})
}

func Test_presentCommand(t *testing.T) {
	t.Run("invalid request URL", func(t *testing.T) {
		_, err := runCommand(t, t.TempDir(), "present", "ftp://example.com")

		assert.Error(t, err)
	})
}

func Test_logsCommand(t *testing.T) {
	_, err := runCommand(t, t.TempDir(), "logs")

	assert.NoError(t, err)
}

func TestCreateSystem(t *testing.T) {
	system := CreateSystem(func() {})

	assert.NotNil(t, findEngine[*storage.Engine](system))
	assert.NotNil(t, findEngine[*http.Engine](system))
	assert.NotNil(t, findEngine[*wallet.Wallet](system))
	assert.Len(t, system.Routers, 3)
}

func Test_userFacing(t *testing.T) {
	err := userFacing(holder.ErrTxCodeRejected)

	assert.EqualError(t, err, "Invalid PIN: The issuer rejected the PIN. Scan the QR code again to retry.")
}

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
	"os"
	"path"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_loadFromEnv(t *testing.T) {
	t.Run("scalar value", func(t *testing.T) {
		t.Setenv("WALLET_RELAY_URL", "http://relay")
		configMap := koanf.New(defaultDelimiter)

		require.NoError(t, loadFromEnv(configMap))

		assert.Equal(t, "http://relay", configMap.String("relay.url"))
	})
	t.Run("list value", func(t *testing.T) {
		t.Setenv("WALLET_HTTP_CORS_ORIGIN", "a, b,c")
		configMap := koanf.New(defaultDelimiter)

		require.NoError(t, loadFromEnv(configMap))

		assert.Equal(t, []string{"a", "b", "c"}, configMap.Strings("http.cors.origin"))
	})
}

func Test_loadFromFile(t *testing.T) {
	t.Run("no file path", func(t *testing.T) {
		assert.NoError(t, loadFromFile(koanf.New(defaultDelimiter), ""))
	})
	t.Run("file does not exist", func(t *testing.T) {
		assert.NoError(t, loadFromFile(koanf.New(defaultDelimiter), path.Join(t.TempDir(), "missing.yaml")))
	})
	t.Run("ok", func(t *testing.T) {
		file := path.Join(t.TempDir(), "wallet.yaml")
		require.NoError(t, os.WriteFile(file, []byte("storage:\n  bbolt:\n    filename: other.db\n"), 0600))
		configMap := koanf.New(defaultDelimiter)

		require.NoError(t, loadFromFile(configMap, file))

		assert.Equal(t, "other.db", configMap.String("storage.bbolt.filename"))
	})
	t.Run("invalid contents", func(t *testing.T) {
		file := path.Join(t.TempDir(), "wallet.yaml")
		require.NoError(t, os.WriteFile(file, []byte("{"), 0600))

		assert.Error(t, loadFromFile(koanf.New(defaultDelimiter), file))
	})
}

func Test_loadConfigMap(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String(configFileFlag, "", "")
		flags.String("a", "default-a", "")
		flags.String("b", "default-b", "")
		flags.String("c", "default-c", "")
		flags.String("d", "default-d", "")
		return flags
	}
	file := path.Join(t.TempDir(), "wallet.yaml")
	require.NoError(t, os.WriteFile(file, []byte("b: file-b\nc: file-c\nd: file-d\n"), 0600))
	t.Setenv("WALLET_C", "env-c")
	t.Setenv("WALLET_D", "env-d")
	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--configfile=" + file, "--d=flag-d"}))
	configMap := koanf.New(defaultDelimiter)

	require.NoError(t, loadConfigMap(configMap, flags))

	assert.Equal(t, "default-a", configMap.String("a"))
	assert.Equal(t, "file-b", configMap.String("b"))
	assert.Equal(t, "env-c", configMap.String("c"))
	assert.Equal(t, "flag-d", configMap.String("d"))
}

func Test_resolveConfigFilePath(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(configFileFlag, defaultConfigFile, "")

	t.Run("default", func(t *testing.T) {
		assert.Equal(t, defaultConfigFile, resolveConfigFilePath(flags))
	})
	t.Run("env", func(t *testing.T) {
		t.Setenv("WALLET_CONFIGFILE", "from-env.yaml")

		assert.Equal(t, "from-env.yaml", resolveConfigFilePath(flags))
	})
}

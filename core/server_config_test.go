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
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletConfig_Load(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("WALLET_CONFIGFILE", path.Join(t.TempDir(), "missing.yaml"))
		cfg := NewWalletConfig()

		err := cfg.Load(FlagSet())

		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Verbosity)
		assert.Equal(t, "./data", cfg.Datadir)
		assert.Equal(t, 30*time.Second, cfg.HTTP.ClientTimeout)
		assert.False(t, cfg.Relay.Serve)
	})
	t.Run("config file, env and flags", func(t *testing.T) {
		configFile := path.Join(t.TempDir(), "wallet.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("datadir: /from/file\nrelay:\n  url: http://relay/serverhandler\nhttp:\n  clienttimeout: 5s\n"), 0600))
		t.Setenv("WALLET_CONFIGFILE", configFile)
		t.Setenv("WALLET_HTTP_CLIENTTIMEOUT", "10s")
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--verbosity=debug"}))
		cfg := NewWalletConfig()

		err := cfg.Load(flags)

		require.NoError(t, err)
		assert.Equal(t, "/from/file", cfg.Datadir)
		assert.Equal(t, "http://relay/serverhandler", cfg.Relay.URL)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ClientTimeout)
		assert.Equal(t, "debug", cfg.Verbosity)
		assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
		logrus.SetLevel(logrus.InfoLevel)
	})
	t.Run("invalid logger format", func(t *testing.T) {
		t.Setenv("WALLET_CONFIGFILE", path.Join(t.TempDir(), "missing.yaml"))
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--loggerformat=xml"}))

		err := NewWalletConfig().Load(flags)

		assert.EqualError(t, err, "invalid formatter: 'xml'")
	})
}

type injectableEngine struct {
	cfg struct {
		Attempts int `koanf:"attempts"`
		Nested   struct {
			Value string `koanf:"value"`
		} `koanf:"nested"`
	}
}

func (i *injectableEngine) Name() string        { return "Test" }
func (i *injectableEngine) ConfigKey() string   { return "test" }
func (i *injectableEngine) Config() interface{} { return &i.cfg }

func TestWalletConfig_InjectIntoEngine(t *testing.T) {
	t.Setenv("WALLET_CONFIGFILE", path.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("WALLET_TEST_ATTEMPTS", "3")
	t.Setenv("WALLET_TEST_NESTED_VALUE", "hello")
	cfg := NewWalletConfig()
	require.NoError(t, cfg.Load(FlagSet()))
	engine := &injectableEngine{}

	err := cfg.InjectIntoEngine(engine)

	require.NoError(t, err)
	assert.Equal(t, 3, engine.cfg.Attempts)
	assert.Equal(t, "hello", engine.cfg.Nested.Value)
	assert.Contains(t, cfg.PrintConfig(), "test.attempts")
}

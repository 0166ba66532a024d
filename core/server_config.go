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
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const defaultConfigFile = "wallet.yaml"
const configFileFlag = "configfile"

const defaultPrefix = "WALLET_"
const defaultDelimiter = "."
const configValueListSeparator = ","

// WalletConfig has global wallet settings.
type WalletConfig struct {
	Verbosity    string      `koanf:"verbosity"`
	LoggerFormat string      `koanf:"loggerformat"`
	Strictmode   bool        `koanf:"strictmode"`
	Datadir      string      `koanf:"datadir"`
	HTTP         HTTPConfig  `koanf:"http"`
	Relay        RelayConfig `koanf:"relay"`
	configMap    *koanf.Koanf
}

// HTTPConfig contains the configuration of outbound HTTP calls.
type HTTPConfig struct {
	// ClientTimeout is the timeout for outbound calls to issuers, authorization servers and verifiers.
	ClientTimeout time.Duration `koanf:"clienttimeout"`
	// TrustStoreFile is an optional PEM file with CA certificates to trust for outbound calls, in addition to the system roots.
	TrustStoreFile string `koanf:"truststorefile"`
}

// RelayConfig contains the configuration of the HTTP relay that forwards requests to parties lacking CORS headers.
type RelayConfig struct {
	// URL is the endpoint of the relay. When set, outbound protocol calls are sent through it.
	URL string `koanf:"url"`
	// Serve enables the relay endpoint (/serverhandler) on the local HTTP interface.
	Serve bool `koanf:"serve"`
	// RateLimit is the number of relayed requests allowed per minute.
	RateLimit int `koanf:"ratelimit"`
	// Burst is the number of relayed requests allowed to exceed the rate limit at once.
	Burst int `koanf:"burst"`
}

// NewWalletConfig creates an initialized empty wallet config
func NewWalletConfig() *WalletConfig {
	return &WalletConfig{
		configMap: koanf.New(defaultDelimiter),
	}
}

// Load loads the wallet config, following the load order of configfile, env vars and then commandline param
func (ngc *WalletConfig) Load(flags *pflag.FlagSet) error {
	if err := loadConfigMap(ngc.configMap, flags); err != nil {
		return err
	}

	if err := ngc.configMap.UnmarshalWithConf("", ngc, koanf.UnmarshalConf{
		FlatPaths: false,
	}); err != nil {
		return err
	}

	return ngc.configureLogging()
}

func (ngc *WalletConfig) configureLogging() error {
	lvl, err := logrus.ParseLevel(ngc.Verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)

	switch ngc.LoggerFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid formatter: '%s'", ngc.LoggerFormat)
	}
	return nil
}

// FlagSet returns the default wallet flags
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("wallet", pflag.ContinueOnError)
	flagSet.String(configFileFlag, defaultConfigFile, "Wallet config file")
	flagSet.String("verbosity", "info", "Log level (trace, debug, info, warn, error)")
	flagSet.String("loggerformat", "text", "Log format (text, json)")
	flagSet.Bool("strictmode", false, "When set, protocol calls over plain HTTP are refused.")
	flagSet.String("datadir", "./data", "Directory where the wallet stores its files.")
	flagSet.Duration("http.clienttimeout", 30*time.Second, "Timeout for outbound calls to issuers and verifiers.")
	flagSet.String("http.truststorefile", "", "PEM file with CA certificates trusted for outbound calls. When not set, the system roots are used.")
	flagSet.String("relay.url", "", "When set, outbound protocol calls are forwarded through the relay at this URL.")
	flagSet.Bool("relay.serve", false, "When set, the relay endpoint (/serverhandler) is served on the wallet API.")
	flagSet.Int("relay.ratelimit", 120, "Number of requests per minute the relay endpoint forwards.")
	flagSet.Int("relay.burst", 20, "Number of requests the relay endpoint forwards at once before rate limiting applies.")
	return flagSet
}

// PrintConfig return the current config in string form
func (ngc *WalletConfig) PrintConfig() string {
	return ngc.configMap.Sprint()
}

// InjectIntoEngine takes the loaded config and sets the engine's config struct
func (ngc *WalletConfig) InjectIntoEngine(e Injectable) error {
	return ngc.configMap.UnmarshalWithConf(strings.ToLower(e.ConfigKey()), e.Config(), koanf.UnmarshalConf{
		FlatPaths: false,
	})
}

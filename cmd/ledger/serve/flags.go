// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"fmt"
	"os"
	"time"

	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
)

const (
	HTTPHostKey            = "http-host"
	HTTPPortKey            = "http-port"
	HTTPAllowedOriginsKey  = "http-allowed-origins"
	HTTPAllowedHostsKey    = "http-allowed-hosts"
	HTTPShutdownTimeoutKey = "http-shutdown-timeout"
	HTTPReadTimeoutKey     = "http-read-timeout"
	HTTPWriteTimeoutKey    = "http-write-timeout"
	DBDirKey               = "db-dir"
	ConfigFileKey          = "config-file"
	DefaultRateKey         = "default-rate"
	StrictFreezeKey        = "strict-freeze"
	TermPolicyKey          = "term-policy"
	TreasuryKey            = "treasury"
	EventCacheSizeKey      = "event-cache-size"
)

func AddFlags(flags *pflag.FlagSet) {
	defaults := config.DefaultConfig()

	flags.String(HTTPHostKey, "127.0.0.1", "Address the HTTP server listens on")
	flags.Uint16(HTTPPortKey, 9650, "Port the HTTP server listens on")
	flags.StringSlice(HTTPAllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin requests")
	flags.StringSlice(HTTPAllowedHostsKey, []string{"localhost"}, "Hosts allowed in the Host header. \"*\" allows all")
	flags.Duration(HTTPShutdownTimeoutKey, 10*time.Second, "Maximum time to wait for in-flight requests on shutdown")
	flags.Duration(HTTPReadTimeoutKey, 30*time.Second, "Maximum duration for reading an entire request")
	flags.Duration(HTTPWriteTimeoutKey, 30*time.Second, "Maximum duration before timing out writes of a response")
	flags.String(DBDirKey, "", "Directory of the persistent database. Empty keeps the ledger in memory")
	flags.String(ConfigFileKey, "", "JSON ledger config file. Flags below override its values")
	flags.String(DefaultRateKey, defaults.DefaultRate.String(), "Interest rate charged until one is set, as a fraction in [0, 1]")
	flags.Bool(StrictFreezeKey, defaults.StrictFreeze, "Gate deposits, withdrawals, borrows and repayments on the freeze flag")
	flags.String(TermPolicyKey, string(defaults.TermPolicy), "Term handling when borrowing against an open loan (overwrite or reject)")
	flags.String(TreasuryKey, "", "Account credited with repayment interest")
	flags.Int(EventCacheSizeKey, defaults.EventCacheSize, "Number of recent events kept for lookup")
}

type Config struct {
	HTTPHost            string
	HTTPPort            uint16
	HTTPAllowedOrigins  []string
	HTTPAllowedHosts    []string
	HTTPShutdownTimeout time.Duration
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	DBDir               string
	Ledger              config.Config
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	c := &Config{}
	var err error
	if c.HTTPHost, err = flags.GetString(HTTPHostKey); err != nil {
		return nil, err
	}
	if c.HTTPPort, err = flags.GetUint16(HTTPPortKey); err != nil {
		return nil, err
	}
	if c.HTTPAllowedOrigins, err = flags.GetStringSlice(HTTPAllowedOriginsKey); err != nil {
		return nil, err
	}
	if c.HTTPAllowedHosts, err = flags.GetStringSlice(HTTPAllowedHostsKey); err != nil {
		return nil, err
	}
	if c.HTTPShutdownTimeout, err = flags.GetDuration(HTTPShutdownTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTPReadTimeout, err = flags.GetDuration(HTTPReadTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTPWriteTimeout, err = flags.GetDuration(HTTPWriteTimeoutKey); err != nil {
		return nil, err
	}
	if c.DBDir, err = flags.GetString(DBDirKey); err != nil {
		return nil, err
	}
	if c.Ledger, err = parseLedgerConfig(flags); err != nil {
		return nil, err
	}
	return c, nil
}

// parseLedgerConfig reads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func parseLedgerConfig(flags *pflag.FlagSet) (config.Config, error) {
	configFile, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return config.Config{}, err
	}
	var configBytes []byte
	if configFile != "" {
		configBytes, err = os.ReadFile(configFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	c, err := config.Parse(configBytes)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed(DefaultRateKey) {
		rateStr, err := flags.GetString(DefaultRateKey)
		if err != nil {
			return config.Config{}, err
		}
		if c.DefaultRate, err = interest.ParseRate(rateStr); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(StrictFreezeKey) {
		if c.StrictFreeze, err = flags.GetBool(StrictFreezeKey); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(TermPolicyKey) {
		policy, err := flags.GetString(TermPolicyKey)
		if err != nil {
			return config.Config{}, err
		}
		c.TermPolicy = config.TermPolicy(policy)
	}
	if flags.Changed(TreasuryKey) {
		treasuryStr, err := flags.GetString(TreasuryKey)
		if err != nil {
			return config.Config{}, err
		}
		if c.Treasury, err = ids.ShortFromString(treasuryStr); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed(EventCacheSizeKey) {
		if c.EventCacheSize, err = flags.GetInt(EventCacheSizeKey); err != nil {
			return config.Config{}, err
		}
	}
	return c, c.Verify()
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the ledger engine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/interest"
)

// TermPolicy controls what a borrow does to the term of an open loan.
type TermPolicy string

const (
	// OverwriteTerm adds to the principal and replaces the term.
	OverwriteTerm TermPolicy = "overwrite"
	// RejectTermChange fails a borrow whose term differs from the open
	// loan's term. Terms then only change through an explicit extension.
	RejectTermChange TermPolicy = "reject"
)

var (
	ErrUnknownTermPolicy  = errors.New("unknown term policy")
	ErrInvalidCacheSize   = errors.New("event cache size must be positive")
	errInvalidDefaultRate = errors.New("invalid default rate")
)

// Config contains configuration parameters for the ledger engine.
type Config struct {
	// DefaultRate is the interest rate used until a rate has been set.
	DefaultRate interest.Rate `json:"defaultRate"`
	// StrictFreeze gates deposits, withdrawals, borrows and repayments on
	// the freeze flag. Transfers are always gated.
	StrictFreeze bool `json:"strictFreeze"`
	// TermPolicy is applied when borrowing against an open loan.
	TermPolicy TermPolicy `json:"termPolicy"`
	// Treasury receives the interest paid on repayments as a deposit. Interest
	// is only reported when the treasury is empty.
	Treasury ids.ShortID `json:"treasury"`
	// EventCacheSize is the number of recent events kept for lookup.
	EventCacheSize int `json:"eventCacheSize"`
}

// DefaultConfig returns the default configuration for the ledger engine.
func DefaultConfig() Config {
	return Config{
		DefaultRate:    interest.Zero,
		StrictFreeze:   true,
		TermPolicy:     OverwriteTerm,
		Treasury:       ids.ShortEmpty,
		EventCacheSize: 1024,
	}
}

// Parse reads a JSON config on top of the defaults.
func Parse(configBytes []byte) (Config, error) {
	config := DefaultConfig()
	if len(configBytes) > 0 {
		if err := json.Unmarshal(configBytes, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return config, config.Verify()
}

func (c *Config) Verify() error {
	if err := c.DefaultRate.Verify(); err != nil {
		return fmt.Errorf("%w: %w", errInvalidDefaultRate, err)
	}
	switch c.TermPolicy {
	case OverwriteTerm, RejectTermChange:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTermPolicy, c.TermPolicy)
	}
	if c.EventCacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.EventCacheSize)
	}
	return nil
}

// HasTreasury reports whether repayment interest is credited to a treasury.
func (c *Config) HasTreasury() bool {
	return c.Treasury != ids.ShortEmpty
}

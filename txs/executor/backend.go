// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
)

type Backend struct {
	Config *config.Config
}

// EffectiveRate returns the rate a new borrow of asset is charged: the
// asset's override if set, else the global rate, else the configured
// default.
func (b *Backend) EffectiveRate(s *state.State, asset ids.ID) (interest.Rate, error) {
	rate, ok, err := s.GetAssetRate(asset)
	if err != nil || ok {
		return rate, err
	}
	rate, ok, err = s.GetRate()
	if err != nil || ok {
		return rate, err
	}
	return b.Config.DefaultRate, nil
}

// gatesAll reports whether the freeze flag gates every balance or loan
// movement rather than transfers only.
func (b *Backend) gatesAll() bool {
	return b.Config.StrictFreeze
}

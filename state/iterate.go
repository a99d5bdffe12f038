// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
)

// Holding is one per-account record of an asset.
type Holding[T any] struct {
	Account ids.ShortID
	Value   T
}

// Balances returns every non-zero balance of asset in account order.
func (s *State) Balances(asset ids.ID) ([]Holding[uint64], error) {
	iter := s.balanceDB.NewIteratorWithPrefix(asset[:])
	defer iter.Release()

	var holdings []Holding[uint64]
	for iter.Next() {
		_, account, err := parseHoldingKey(iter.Key())
		if err != nil {
			return nil, err
		}
		balance, err := database.ParseUInt64(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("%w: balance of %s in %s: %w", ErrCorrupted, account, asset, err)
		}
		holdings = append(holdings, Holding[uint64]{
			Account: account,
			Value:   balance,
		})
	}
	return holdings, iter.Error()
}

// Loans returns every open loan of asset in account order.
func (s *State) Loans(asset ids.ID) ([]Holding[Loan], error) {
	iter := s.loanDB.NewIteratorWithPrefix(asset[:])
	defer iter.Release()

	var holdings []Holding[Loan]
	for iter.Next() {
		_, account, err := parseHoldingKey(iter.Key())
		if err != nil {
			return nil, err
		}
		var loan Loan
		if _, err := Codec.Unmarshal(iter.Value(), &loan); err != nil {
			return nil, fmt.Errorf("%w: loan of %s in %s: %w", ErrCorrupted, account, asset, err)
		}
		holdings = append(holdings, Holding[Loan]{
			Account: account,
			Value:   loan,
		})
	}
	return holdings, iter.Error()
}

// Assets returns every asset known to the ledger.
func (s *State) Assets() ([]ids.ID, error) {
	iter := s.poolDB.NewIterator()
	defer iter.Release()

	var assets []ids.ID
	for iter.Next() {
		asset, err := ids.ToID(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("%w: pool key: %w", ErrCorrupted, err)
		}
		assets = append(assets, asset)
	}
	return assets, iter.Error()
}

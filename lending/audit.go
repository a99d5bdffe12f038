// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lending

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/ledger/utils/math"
)

var ErrImbalanced = errors.New("ledger is imbalanced")

// Audit compares the incrementally maintained pool totals of an asset with
// the records they summarize.
type Audit struct {
	Asset          ids.ID `json:"asset"`
	TotalDeposited uint64 `json:"totalDeposited"`
	TotalBorrowed  uint64 `json:"totalBorrowed"`
	SumBalances    uint64 `json:"sumBalances"`
	SumPrincipal   uint64 `json:"sumPrincipal"`
	Holders        int    `json:"holders"`
	Borrowers      int    `json:"borrowers"`
}

// Verify returns ErrImbalanced if the totals disagree with the records or
// more is lent out than was deposited.
func (a Audit) Verify() error {
	switch {
	case a.SumBalances != a.TotalDeposited:
		return fmt.Errorf("%w: %s balances sum to %d, deposits are %d",
			ErrImbalanced, a.Asset, a.SumBalances, a.TotalDeposited)
	case a.SumPrincipal != a.TotalBorrowed:
		return fmt.Errorf("%w: %s principals sum to %d, borrowed is %d",
			ErrImbalanced, a.Asset, a.SumPrincipal, a.TotalBorrowed)
	case a.TotalBorrowed > a.TotalDeposited:
		return fmt.Errorf("%w: %s has %d borrowed against %d deposited",
			ErrImbalanced, a.Asset, a.TotalBorrowed, a.TotalDeposited)
	default:
		return nil
	}
}

// Audit scans every balance and loan of asset.
func (e *Engine) Audit(asset ids.ID) (Audit, error) {
	pool, err := e.state.GetPool(asset)
	if err != nil {
		return Audit{}, err
	}
	balances, err := e.state.Balances(asset)
	if err != nil {
		return Audit{}, err
	}
	loans, err := e.state.Loans(asset)
	if err != nil {
		return Audit{}, err
	}

	audit := Audit{
		Asset:          asset,
		TotalDeposited: pool.TotalDeposited,
		TotalBorrowed:  pool.TotalBorrowed,
		Holders:        len(balances),
		Borrowers:      len(loans),
	}
	for _, b := range balances {
		audit.SumBalances, err = safemath.Add(audit.SumBalances, b.Value)
		if err != nil {
			return audit, fmt.Errorf("%w: balances of %s", ErrImbalanced, asset)
		}
	}
	for _, l := range loans {
		audit.SumPrincipal, err = safemath.Add(audit.SumPrincipal, l.Value.Principal)
		if err != nil {
			return audit, fmt.Errorf("%w: principals of %s", ErrImbalanced, asset)
		}
	}
	return audit, nil
}

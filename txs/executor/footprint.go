// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/math/set"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
)

var _ txs.Visitor = (*footprintVisitor)(nil)

// Footprint is the set of records a tx may read and write. Execution of the
// tx touches no record outside of it.
type Footprint struct {
	Reads  set.Set[state.Key]
	Writes set.Set[state.Key]
}

// Conflicts reports whether f and other must be applied in order: either
// one writes a record the other touches.
func (f Footprint) Conflicts(other Footprint) bool {
	return f.Writes.Overlaps(other.Writes) ||
		f.Writes.Overlaps(other.Reads) ||
		other.Writes.Overlaps(f.Reads)
}

// FootprintOf returns the records tx may touch under cfg.
func FootprintOf(tx txs.UnsignedTx, cfg *config.Config) (Footprint, error) {
	v := &footprintVisitor{
		config: cfg,
		footprint: Footprint{
			Reads:  set.NewSet[state.Key](4),
			Writes: set.NewSet[state.Key](2),
		},
	}
	if err := tx.Visit(v); err != nil {
		return Footprint{}, err
	}
	return v.footprint, nil
}

type footprintVisitor struct {
	config    *config.Config
	footprint Footprint
}

func (v *footprintVisitor) read(keys ...state.Key) {
	v.footprint.Reads.Add(keys...)
}

// write also marks keys as read, since every write is a read-modify-write.
func (v *footprintVisitor) write(keys ...state.Key) {
	v.footprint.Reads.Add(keys...)
	v.footprint.Writes.Add(keys...)
}

func (v *footprintVisitor) gate(key state.Key, gated bool) {
	if gated {
		v.read(key)
	}
}

func (v *footprintVisitor) DepositTx(tx *txs.DepositTx) error {
	v.gate(state.FrozenKey(tx.Asset), v.config.StrictFreeze)
	v.write(state.BalanceKey(tx.Asset, tx.Account), state.PoolKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) WithdrawTx(tx *txs.WithdrawTx) error {
	v.gate(state.FrozenKey(tx.Asset), v.config.StrictFreeze)
	v.write(state.BalanceKey(tx.Asset, tx.Account), state.PoolKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) TransferTx(tx *txs.TransferTx) error {
	v.gate(state.FrozenKey(tx.Asset), true)
	v.write(
		state.BalanceKey(tx.Asset, tx.From),
		state.BalanceKey(tx.Asset, tx.To),
		state.PoolKey(tx.Asset),
	)
	return nil
}

func (v *footprintVisitor) BorrowTx(tx *txs.BorrowTx) error {
	v.gate(state.FrozenKey(tx.Asset), v.config.StrictFreeze)
	v.read(state.AssetRateKey(tx.Asset), state.GlobalRateKey())
	v.write(state.LoanKey(tx.Asset, tx.Borrower), state.PoolKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) RepayTx(tx *txs.RepayTx) error {
	v.gate(state.FrozenKey(tx.Asset), v.config.StrictFreeze)
	v.write(state.LoanKey(tx.Asset, tx.Borrower), state.PoolKey(tx.Asset))
	if v.config.HasTreasury() {
		v.write(state.BalanceKey(tx.Asset, v.config.Treasury))
	}
	return nil
}

func (v *footprintVisitor) FreezeTx(tx *txs.FreezeTx) error {
	v.read(state.PoolKey(tx.Asset))
	v.write(state.FrozenKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) UnfreezeTx(tx *txs.UnfreezeTx) error {
	v.read(state.PoolKey(tx.Asset))
	v.write(state.FrozenKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) UpdateRateTx(*txs.UpdateRateTx) error {
	v.write(state.GlobalRateKey())
	return nil
}

func (v *footprintVisitor) UpdateAssetRateTx(tx *txs.UpdateAssetRateTx) error {
	v.write(state.AssetRateKey(tx.Asset))
	return nil
}

func (v *footprintVisitor) ExtendTermTx(tx *txs.ExtendTermTx) error {
	v.write(state.LoanKey(tx.Asset, tx.Borrower))
	return nil
}

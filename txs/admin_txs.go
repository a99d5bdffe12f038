// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/interest"
)

var (
	_ UnsignedTx = (*FreezeTx)(nil)
	_ UnsignedTx = (*UnfreezeTx)(nil)
	_ UnsignedTx = (*UpdateRateTx)(nil)
	_ UnsignedTx = (*UpdateAssetRateTx)(nil)
)

// FreezeTx blocks balance movements of Asset.
type FreezeTx struct {
	Asset ids.ID `serialize:"true" json:"asset"`
}

func (tx *FreezeTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *FreezeTx) Visit(visitor Visitor) error {
	return visitor.FreezeTx(tx)
}

type UnfreezeTx struct {
	Asset ids.ID `serialize:"true" json:"asset"`
}

func (tx *UnfreezeTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *UnfreezeTx) Visit(visitor Visitor) error {
	return visitor.UnfreezeTx(tx)
}

// UpdateRateTx replaces the global interest rate.
type UpdateRateTx struct {
	Rate interest.Rate `serialize:"true" json:"rate"`
}

func (tx *UpdateRateTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.Rate.Verify()
}

func (tx *UpdateRateTx) Visit(visitor Visitor) error {
	return visitor.UpdateRateTx(tx)
}

// UpdateAssetRateTx sets the interest rate of a single asset, overriding the
// global rate for loans drawn afterwards.
type UpdateAssetRateTx struct {
	Asset ids.ID        `serialize:"true" json:"asset"`
	Rate  interest.Rate `serialize:"true" json:"rate"`
}

func (tx *UpdateAssetRateTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return tx.Rate.Verify()
}

func (tx *UpdateAssetRateTx) Visit(visitor Visitor) error {
	return visitor.UpdateAssetRateTx(tx)
}

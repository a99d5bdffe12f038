// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "github.com/luxfi/ids"

var (
	_ UnsignedTx = (*DepositTx)(nil)
	_ UnsignedTx = (*WithdrawTx)(nil)
	_ UnsignedTx = (*TransferTx)(nil)
)

// DepositTx credits Amount of Asset to Account and adds it to the pool.
type DepositTx struct {
	Asset   ids.ID      `serialize:"true" json:"asset"`
	Account ids.ShortID `serialize:"true" json:"account"`
	Amount  uint64      `serialize:"true" json:"amount"`
}

func (tx *DepositTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *DepositTx) Visit(visitor Visitor) error {
	return visitor.DepositTx(tx)
}

// WithdrawTx debits Amount of Asset from Account and removes it from the
// pool.
type WithdrawTx struct {
	Asset   ids.ID      `serialize:"true" json:"asset"`
	Account ids.ShortID `serialize:"true" json:"account"`
	Amount  uint64      `serialize:"true" json:"amount"`
}

func (tx *WithdrawTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *WithdrawTx) Visit(visitor Visitor) error {
	return visitor.WithdrawTx(tx)
}

// TransferTx moves Amount of Asset between two deposit balances.
type TransferTx struct {
	Asset  ids.ID      `serialize:"true" json:"asset"`
	From   ids.ShortID `serialize:"true" json:"from"`
	To     ids.ShortID `serialize:"true" json:"to"`
	Amount uint64      `serialize:"true" json:"amount"`
}

func (tx *TransferTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *TransferTx) Visit(visitor Visitor) error {
	return visitor.TransferTx(tx)
}

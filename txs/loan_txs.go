// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "github.com/luxfi/ids"

var (
	_ UnsignedTx = (*BorrowTx)(nil)
	_ UnsignedTx = (*RepayTx)(nil)
	_ UnsignedTx = (*ExtendTermTx)(nil)
)

// BorrowTx draws Amount of Asset from the pool against Borrower's loan.
//
// Term is recorded on the loan. Borrowing does not credit Borrower's deposit
// balance: disbursement is left to the host.
type BorrowTx struct {
	Asset    ids.ID      `serialize:"true" json:"asset"`
	Borrower ids.ShortID `serialize:"true" json:"borrower"`
	Amount   uint64      `serialize:"true" json:"amount"`
	Term     uint64      `serialize:"true" json:"term"`
}

func (tx *BorrowTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *BorrowTx) Visit(visitor Visitor) error {
	return visitor.BorrowTx(tx)
}

// RepayTx returns Amount of principal to the pool.
type RepayTx struct {
	Asset    ids.ID      `serialize:"true" json:"asset"`
	Borrower ids.ShortID `serialize:"true" json:"borrower"`
	Amount   uint64      `serialize:"true" json:"amount"`
}

func (tx *RepayTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *RepayTx) Visit(visitor Visitor) error {
	return visitor.RepayTx(tx)
}

// ExtendTermTx replaces the term of an open loan.
type ExtendTermTx struct {
	Asset    ids.ID      `serialize:"true" json:"asset"`
	Borrower ids.ShortID `serialize:"true" json:"borrower"`
	Term     uint64      `serialize:"true" json:"term"`
}

func (tx *ExtendTermTx) SyntacticVerify() error {
	if tx == nil {
		return ErrNilTx
	}
	return nil
}

func (tx *ExtendTermTx) Visit(visitor Visitor) error {
	return visitor.ExtendTermTx(tx)
}

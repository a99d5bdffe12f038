// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

var _ Visitor = (*kindVisitor)(nil)

// Kind names a tx type. The names are used in events, metrics and the API.
type Kind string

const (
	DepositKind         Kind = "deposit"
	WithdrawKind        Kind = "withdraw"
	TransferKind        Kind = "transfer"
	BorrowKind          Kind = "borrow"
	RepayKind           Kind = "repay"
	FreezeKind          Kind = "freeze"
	UnfreezeKind        Kind = "unfreeze"
	UpdateRateKind      Kind = "update_rate"
	UpdateAssetRateKind Kind = "update_asset_rate"
	ExtendTermKind      Kind = "extend_term"
)

// Kinds lists every tx kind in codec registration order.
var Kinds = []Kind{
	DepositKind,
	WithdrawKind,
	TransferKind,
	BorrowKind,
	RepayKind,
	FreezeKind,
	UnfreezeKind,
	UpdateRateKind,
	UpdateAssetRateKind,
	ExtendTermKind,
}

// KindOf returns the kind of tx, or the empty kind for a nil tx.
func KindOf(tx UnsignedTx) Kind {
	if tx == nil {
		return ""
	}
	v := kindVisitor{}
	_ = tx.Visit(&v)
	return v.kind
}

type kindVisitor struct {
	kind Kind
}

func (v *kindVisitor) DepositTx(*DepositTx) error {
	v.kind = DepositKind
	return nil
}

func (v *kindVisitor) WithdrawTx(*WithdrawTx) error {
	v.kind = WithdrawKind
	return nil
}

func (v *kindVisitor) TransferTx(*TransferTx) error {
	v.kind = TransferKind
	return nil
}

func (v *kindVisitor) BorrowTx(*BorrowTx) error {
	v.kind = BorrowKind
	return nil
}

func (v *kindVisitor) RepayTx(*RepayTx) error {
	v.kind = RepayKind
	return nil
}

func (v *kindVisitor) FreezeTx(*FreezeTx) error {
	v.kind = FreezeKind
	return nil
}

func (v *kindVisitor) UnfreezeTx(*UnfreezeTx) error {
	v.kind = UnfreezeKind
	return nil
}

func (v *kindVisitor) UpdateRateTx(*UpdateRateTx) error {
	v.kind = UpdateRateKind
	return nil
}

func (v *kindVisitor) UpdateAssetRateTx(*UpdateAssetRateTx) error {
	v.kind = UpdateAssetRateKind
	return nil
}

func (v *kindVisitor) ExtendTermTx(*ExtendTermTx) error {
	v.kind = ExtendTermKind
	return nil
}

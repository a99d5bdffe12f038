// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Allow vm to execute custom logic against the underlying transaction types.
type Visitor interface {
	DepositTx(*DepositTx) error
	WithdrawTx(*WithdrawTx) error
	TransferTx(*TransferTx) error
	BorrowTx(*BorrowTx) error
	RepayTx(*RepayTx) error
	FreezeTx(*FreezeTx) error
	UnfreezeTx(*UnfreezeTx) error
	UpdateRateTx(*UpdateRateTx) error
	UpdateAssetRateTx(*UpdateAssetRateTx) error
	ExtendTermTx(*ExtendTermTx) error
}

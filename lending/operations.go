// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lending

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/txs/executor"
)

// Repayment is the outcome of a repay.
type Repayment struct {
	Principal uint64
	Interest  uint64
	// InterestCapped is set when Interest was capped at the maximum uint64.
	InterestCapped bool
}

func (e *Engine) Deposit(asset ids.ID, account ids.ShortID, amount uint64) error {
	_, err := e.Issue(&txs.DepositTx{
		Asset:   asset,
		Account: account,
		Amount:  amount,
	})
	return err
}

func (e *Engine) Withdraw(asset ids.ID, account ids.ShortID, amount uint64) error {
	_, err := e.Issue(&txs.WithdrawTx{
		Asset:   asset,
		Account: account,
		Amount:  amount,
	})
	return err
}

func (e *Engine) Transfer(asset ids.ID, from, to ids.ShortID, amount uint64) error {
	_, err := e.Issue(&txs.TransferTx{
		Asset:  asset,
		From:   from,
		To:     to,
		Amount: amount,
	})
	return err
}

func (e *Engine) Borrow(asset ids.ID, borrower ids.ShortID, amount uint64, term uint64) error {
	_, err := e.Issue(&txs.BorrowTx{
		Asset:    asset,
		Borrower: borrower,
		Amount:   amount,
		Term:     term,
	})
	return err
}

func (e *Engine) Repay(asset ids.ID, borrower ids.ShortID, amount uint64) (Repayment, error) {
	receipt, err := e.Issue(&txs.RepayTx{
		Asset:    asset,
		Borrower: borrower,
		Amount:   amount,
	})
	if err != nil {
		return Repayment{}, err
	}
	return Repayment{
		Principal: amount,
		Interest:  uint64(receipt.Event.Interest),

		InterestCapped: receipt.Event.InterestCapped,
	}, nil
}

func (e *Engine) Freeze(asset ids.ID) error {
	_, err := e.Issue(&txs.FreezeTx{Asset: asset})
	return err
}

func (e *Engine) Unfreeze(asset ids.ID) error {
	_, err := e.Issue(&txs.UnfreezeTx{Asset: asset})
	return err
}

func (e *Engine) UpdateRate(rate interest.Rate) error {
	_, err := e.Issue(&txs.UpdateRateTx{Rate: rate})
	return err
}

func (e *Engine) UpdateAssetRate(asset ids.ID, rate interest.Rate) error {
	_, err := e.Issue(&txs.UpdateAssetRateTx{
		Asset: asset,
		Rate:  rate,
	})
	return err
}

func (e *Engine) ExtendTerm(asset ids.ID, borrower ids.ShortID, term uint64) error {
	_, err := e.Issue(&txs.ExtendTermTx{
		Asset:    asset,
		Borrower: borrower,
		Term:     term,
	})
	return err
}

func (e *Engine) Balance(asset ids.ID, account ids.ShortID) (uint64, error) {
	return e.state.GetBalance(asset, account)
}

// Loan returns the borrower's loan and whether one is open.
func (e *Engine) Loan(asset ids.ID, borrower ids.ShortID) (state.Loan, bool, error) {
	return e.state.GetLoan(asset, borrower)
}

func (e *Engine) Pool(asset ids.ID) (state.Pool, error) {
	return e.state.GetPool(asset)
}

func (e *Engine) IsFrozen(asset ids.ID) (bool, error) {
	return e.state.IsFrozen(asset)
}

// Rate returns the global rate, or the configured default if none was set.
func (e *Engine) Rate() (interest.Rate, error) {
	rate, ok, err := e.state.GetRate()
	if err != nil || ok {
		return rate, err
	}
	return e.config.DefaultRate, nil
}

// AssetRate returns the rate a new borrow of asset is charged.
func (e *Engine) AssetRate(asset ids.ID) (interest.Rate, error) {
	return e.executorBackend.EffectiveRate(e.state, asset)
}

// Assets returns every asset that has been deposited.
func (e *Engine) Assets() ([]ids.ID, error) {
	return e.state.Assets()
}

// Footprint returns the records unsigned may read or write under the engine's
// config. Operations whose footprints do not conflict commute.
func (e *Engine) Footprint(unsigned txs.UnsignedTx) (executor.Footprint, error) {
	return executor.FootprintOf(unsigned, &e.config)
}

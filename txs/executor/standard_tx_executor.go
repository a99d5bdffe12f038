// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"

	safemath "github.com/luxfi/ledger/utils/math"
)

var (
	_ txs.Visitor = (*StandardTxExecutor)(nil)

	ErrInsufficientLiquidity = errors.New("insufficient liquidity in pool")
	ErrAssetFrozen           = errors.New("asset is frozen")
	ErrAssetUnknown          = errors.New("asset is unknown")
	ErrTermMismatch          = errors.New("term differs from open loan")
)

// StandardTxExecutor applies one tx to State. On error State may hold partial
// writes, so callers run it against a versiondb and abort on failure.
type StandardTxExecutor struct {
	// inputs, to be filled before visitor methods are called
	*Backend
	State *state.State

	// outputs of visitor execution
	Interest uint64
	// InterestCapped is set when the reported interest exceeded a uint64 and
	// was capped. Only possible when no treasury is credited.
	InterestCapped bool
	// Rate is the rate of the loan a borrow or repay touched.
	Rate interest.Rate
}

func (e *StandardTxExecutor) DepositTx(tx *txs.DepositTx) error {
	if err := e.checkGate(tx.Asset, e.gatesAll()); err != nil {
		return err
	}
	return e.State.Credit(tx.Asset, tx.Account, tx.Amount)
}

func (e *StandardTxExecutor) WithdrawTx(tx *txs.WithdrawTx) error {
	if err := e.checkGate(tx.Asset, e.gatesAll()); err != nil {
		return err
	}

	balance, err := e.State.GetBalance(tx.Asset, tx.Account)
	if err != nil {
		return err
	}
	if tx.Amount > balance {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d",
			state.ErrInsufficientBalance, tx.Account, balance, tx.Asset, tx.Amount)
	}

	pool, err := e.State.GetPool(tx.Asset)
	if err != nil {
		return err
	}
	if tx.Amount > pool.Available() {
		return fmt.Errorf("%w: withdrawing %d of %s leaves %d deposited against %d borrowed",
			ErrInsufficientLiquidity, tx.Amount, tx.Asset, pool.TotalDeposited-tx.Amount, pool.TotalBorrowed)
	}
	return e.State.Debit(tx.Asset, tx.Account, tx.Amount)
}

func (e *StandardTxExecutor) TransferTx(tx *txs.TransferTx) error {
	if err := e.checkGate(tx.Asset, true); err != nil {
		return err
	}
	return e.State.Transfer(tx.Asset, tx.From, tx.To, tx.Amount)
}

func (e *StandardTxExecutor) BorrowTx(tx *txs.BorrowTx) error {
	if err := e.checkGate(tx.Asset, e.gatesAll()); err != nil {
		return err
	}

	if e.Config.TermPolicy == config.RejectTermChange {
		loan, ok, err := e.State.GetLoan(tx.Asset, tx.Borrower)
		if err != nil {
			return err
		}
		if ok && loan.Term != tx.Term {
			return fmt.Errorf("%w: open loan has term %d, borrow has term %d",
				ErrTermMismatch, loan.Term, tx.Term)
		}
	}

	pool, err := e.State.GetPool(tx.Asset)
	if err != nil {
		return err
	}
	newBorrowed, err := safemath.Add(pool.TotalBorrowed, tx.Amount)
	if err != nil {
		return fmt.Errorf("%w: total borrowed of %s", err, tx.Asset)
	}
	if newBorrowed > pool.TotalDeposited {
		return fmt.Errorf("%w: %s has %d available, requested %d",
			ErrInsufficientLiquidity, tx.Asset, pool.Available(), tx.Amount)
	}

	rate, err := e.EffectiveRate(e.State, tx.Asset)
	if err != nil {
		return err
	}
	e.Rate = rate
	return e.State.OpenOrIncreaseLoan(tx.Asset, tx.Borrower, tx.Amount, tx.Term, rate)
}

func (e *StandardTxExecutor) RepayTx(tx *txs.RepayTx) error {
	if err := e.checkGate(tx.Asset, e.gatesAll()); err != nil {
		return err
	}

	loan, err := e.State.RepayLoan(tx.Asset, tx.Borrower, tx.Amount)
	if err != nil {
		return err
	}

	e.Rate = loan.Rate

	accrued, err := interest.Accrue(tx.Amount, loan.Rate, loan.Term)
	if !e.Config.HasTreasury() {
		// Uncredited interest is only reported, so it never fails a repay.
		if errors.Is(err, safemath.ErrOverflow) {
			accrued, err = math.MaxUint64, nil
			e.InterestCapped = true
		}
		e.Interest = accrued
		return err
	}
	if err != nil {
		return err
	}
	e.Interest = accrued
	if accrued == 0 {
		return nil
	}
	return e.State.Credit(tx.Asset, e.Config.Treasury, accrued)
}

func (e *StandardTxExecutor) FreezeTx(tx *txs.FreezeTx) error {
	return e.setFrozen(tx.Asset, true)
}

func (e *StandardTxExecutor) UnfreezeTx(tx *txs.UnfreezeTx) error {
	return e.setFrozen(tx.Asset, false)
}

func (e *StandardTxExecutor) UpdateRateTx(tx *txs.UpdateRateTx) error {
	if err := tx.Rate.Verify(); err != nil {
		return err
	}
	return e.State.SetRate(tx.Rate)
}

func (e *StandardTxExecutor) UpdateAssetRateTx(tx *txs.UpdateAssetRateTx) error {
	if err := tx.Rate.Verify(); err != nil {
		return err
	}
	return e.State.SetAssetRate(tx.Asset, tx.Rate)
}

func (e *StandardTxExecutor) ExtendTermTx(tx *txs.ExtendTermTx) error {
	return e.State.SetLoanTerm(tx.Asset, tx.Borrower, tx.Term)
}

func (e *StandardTxExecutor) setFrozen(asset ids.ID, frozen bool) error {
	known, err := e.State.HasPool(asset)
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrAssetUnknown, asset)
	}
	return e.State.SetFrozen(asset, frozen)
}

func (e *StandardTxExecutor) checkGate(asset ids.ID, gated bool) error {
	if !gated {
		return nil
	}
	frozen, err := e.State.IsFrozen(asset)
	if err != nil {
		return err
	}
	if frozen {
		return fmt.Errorf("%w: %s", ErrAssetFrozen, asset)
	}
	return nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the ledger records: balances, pool totals, loans,
// freeze flags and interest rates.
//
// State performs no locking and no buffering. Every mutation is written
// straight to the backing database, so callers that need atomic multi-record
// transitions wrap the database in a versiondb and commit or abort it.
package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/ledger/interest"

	safemath "github.com/luxfi/ledger/utils/math"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientLoan    = errors.New("repayment exceeds outstanding principal")
	ErrNoSuchLoan          = errors.New("no such loan")
	ErrCorrupted           = errors.New("state corrupted")

	BalancePrefix   = []byte("balance")
	LoanPrefix      = []byte("loan")
	PoolPrefix      = []byte("pool")
	FrozenPrefix    = []byte("frozen")
	RatePrefix      = []byte("rate")
	SingletonPrefix = []byte("singleton")

	GlobalRateKeyBytes = []byte("global rate")

	frozenValue = []byte{1}
)

// Pool is the aggregate accounting of one asset.
type Pool struct {
	TotalDeposited uint64 `serialize:"true" json:"totalDeposited"`
	TotalBorrowed  uint64 `serialize:"true" json:"totalBorrowed"`
}

// Available returns the liquidity that may still be borrowed.
func (p Pool) Available() uint64 {
	if p.TotalBorrowed > p.TotalDeposited {
		return 0
	}
	return p.TotalDeposited - p.TotalBorrowed
}

// Loan is an open borrowing position. Rate is the interest rate in effect
// when the loan was last drawn on.
type Loan struct {
	Principal uint64        `serialize:"true" json:"principal"`
	Term      uint64        `serialize:"true" json:"term"`
	Rate      interest.Rate `serialize:"true" json:"rate"`
}

type State struct {
	balanceDB   database.Database
	loanDB      database.Database
	poolDB      database.Database
	frozenDB    database.Database
	rateDB      database.Database
	singletonDB database.Database
}

func New(db database.Database) *State {
	return &State{
		balanceDB:   prefixdb.New(BalancePrefix, db),
		loanDB:      prefixdb.New(LoanPrefix, db),
		poolDB:      prefixdb.New(PoolPrefix, db),
		frozenDB:    prefixdb.New(FrozenPrefix, db),
		rateDB:      prefixdb.New(RatePrefix, db),
		singletonDB: prefixdb.New(SingletonPrefix, db),
	}
}

// GetBalance returns the deposit balance of account in asset. Missing
// balances are zero.
func (s *State) GetBalance(asset ids.ID, account ids.ShortID) (uint64, error) {
	balance, err := database.GetUInt64(s.balanceDB, holdingKey(asset, account))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return balance, err
}

func (s *State) putBalance(asset ids.ID, account ids.ShortID, balance uint64) error {
	key := holdingKey(asset, account)
	if balance == 0 {
		return s.balanceDB.Delete(key)
	}
	return database.PutUInt64(s.balanceDB, key, balance)
}

// Credit adds amount to the balance of account and to the pool's deposits.
func (s *State) Credit(asset ids.ID, account ids.ShortID, amount uint64) error {
	pool, err := s.GetPool(asset)
	if err != nil {
		return err
	}
	balance, err := s.GetBalance(asset, account)
	if err != nil {
		return err
	}

	newTotal, err := safemath.Add(pool.TotalDeposited, amount)
	if err != nil {
		return fmt.Errorf("%w: total deposits of %s", err, asset)
	}
	newBalance, err := safemath.Add(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: balance of %s in %s", err, account, asset)
	}

	pool.TotalDeposited = newTotal
	if err := s.putPool(asset, pool); err != nil {
		return err
	}
	return s.putBalance(asset, account, newBalance)
}

// Debit removes amount from the balance of account and from the pool's
// deposits.
func (s *State) Debit(asset ids.ID, account ids.ShortID, amount uint64) error {
	balance, err := s.GetBalance(asset, account)
	if err != nil {
		return err
	}
	if amount > balance {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d",
			ErrInsufficientBalance, account, balance, asset, amount)
	}
	if amount == 0 {
		return nil
	}

	pool, err := s.GetPool(asset)
	if err != nil {
		return err
	}
	newTotal, err := safemath.Sub(pool.TotalDeposited, amount)
	if err != nil {
		return fmt.Errorf("%w: total deposits of %s below balance of %s", ErrCorrupted, asset, account)
	}

	pool.TotalDeposited = newTotal
	if err := s.putPool(asset, pool); err != nil {
		return err
	}
	return s.putBalance(asset, account, balance-amount)
}

// Transfer moves amount between two balances. The pool's deposits are
// unchanged. The credit is never attempted if the debit fails.
func (s *State) Transfer(asset ids.ID, from, to ids.ShortID, amount uint64) error {
	if err := s.Debit(asset, from, amount); err != nil {
		return err
	}
	return s.Credit(asset, to, amount)
}

// GetPool returns the pool totals of asset. Unknown assets have zero totals.
func (s *State) GetPool(asset ids.ID) (Pool, error) {
	var pool Pool
	poolBytes, err := s.poolDB.Get(asset[:])
	if errors.Is(err, database.ErrNotFound) {
		return pool, nil
	}
	if err != nil {
		return pool, err
	}
	if _, err := Codec.Unmarshal(poolBytes, &pool); err != nil {
		return pool, fmt.Errorf("%w: pool %s: %w", ErrCorrupted, asset, err)
	}
	return pool, nil
}

// HasPool reports whether asset has ever been deposited, which is what makes
// an asset known to the ledger.
func (s *State) HasPool(asset ids.ID) (bool, error) {
	return s.poolDB.Has(asset[:])
}

func (s *State) putPool(asset ids.ID, pool Pool) error {
	poolBytes, err := Codec.Marshal(CodecVersion, &pool)
	if err != nil {
		return err
	}
	return s.poolDB.Put(asset[:], poolBytes)
}

// GetLoan returns the loan of account in asset and whether one is open.
func (s *State) GetLoan(asset ids.ID, account ids.ShortID) (Loan, bool, error) {
	var loan Loan
	loanBytes, err := s.loanDB.Get(holdingKey(asset, account))
	if errors.Is(err, database.ErrNotFound) {
		return loan, false, nil
	}
	if err != nil {
		return loan, false, err
	}
	if _, err := Codec.Unmarshal(loanBytes, &loan); err != nil {
		return loan, false, fmt.Errorf("%w: loan of %s in %s: %w", ErrCorrupted, account, asset, err)
	}
	return loan, true, nil
}

func (s *State) putLoan(asset ids.ID, account ids.ShortID, loan Loan) error {
	key := holdingKey(asset, account)
	if loan.Principal == 0 {
		return s.loanDB.Delete(key)
	}
	loanBytes, err := Codec.Marshal(CodecVersion, &loan)
	if err != nil {
		return err
	}
	return s.loanDB.Put(key, loanBytes)
}

// OpenOrIncreaseLoan adds amount to the principal of the borrower's loan,
// opening one if needed. The term and rate are replaced by the given ones.
func (s *State) OpenOrIncreaseLoan(
	asset ids.ID,
	borrower ids.ShortID,
	amount uint64,
	term uint64,
	rate interest.Rate,
) error {
	pool, err := s.GetPool(asset)
	if err != nil {
		return err
	}
	loan, _, err := s.GetLoan(asset, borrower)
	if err != nil {
		return err
	}

	newBorrowed, err := safemath.Add(pool.TotalBorrowed, amount)
	if err != nil {
		return fmt.Errorf("%w: total borrowed of %s", err, asset)
	}
	newPrincipal, err := safemath.Add(loan.Principal, amount)
	if err != nil {
		return fmt.Errorf("%w: principal of %s in %s", err, borrower, asset)
	}

	pool.TotalBorrowed = newBorrowed
	if err := s.putPool(asset, pool); err != nil {
		return err
	}
	return s.putLoan(asset, borrower, Loan{
		Principal: newPrincipal,
		Term:      term,
		Rate:      rate,
	})
}

// RepayLoan reduces the borrower's principal by amount and returns the loan
// as it was before repayment. The loan record is removed once it is fully
// repaid.
func (s *State) RepayLoan(asset ids.ID, borrower ids.ShortID, amount uint64) (Loan, error) {
	loan, ok, err := s.GetLoan(asset, borrower)
	if err != nil {
		return Loan{}, err
	}
	if !ok {
		return Loan{}, fmt.Errorf("%w: %s in %s", ErrNoSuchLoan, borrower, asset)
	}
	if amount > loan.Principal {
		return Loan{}, fmt.Errorf("%w: owes %d, repaying %d", ErrInsufficientLoan, loan.Principal, amount)
	}

	pool, err := s.GetPool(asset)
	if err != nil {
		return Loan{}, err
	}
	newBorrowed, err := safemath.Sub(pool.TotalBorrowed, amount)
	if err != nil {
		return Loan{}, fmt.Errorf("%w: total borrowed of %s below principal of %s", ErrCorrupted, asset, borrower)
	}

	pool.TotalBorrowed = newBorrowed
	if err := s.putPool(asset, pool); err != nil {
		return Loan{}, err
	}

	repaid := loan
	repaid.Principal -= amount
	return loan, s.putLoan(asset, borrower, repaid)
}

// SetLoanTerm replaces the term of an open loan.
func (s *State) SetLoanTerm(asset ids.ID, borrower ids.ShortID, term uint64) error {
	loan, ok, err := s.GetLoan(asset, borrower)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrNoSuchLoan, borrower, asset)
	}
	loan.Term = term
	return s.putLoan(asset, borrower, loan)
}

func (s *State) IsFrozen(asset ids.ID) (bool, error) {
	return s.frozenDB.Has(asset[:])
}

func (s *State) SetFrozen(asset ids.ID, frozen bool) error {
	if frozen {
		return s.frozenDB.Put(asset[:], frozenValue)
	}
	return s.frozenDB.Delete(asset[:])
}

// GetRate returns the global interest rate and whether one has been set.
func (s *State) GetRate() (interest.Rate, bool, error) {
	return getRate(s.singletonDB, GlobalRateKeyBytes)
}

func (s *State) SetRate(rate interest.Rate) error {
	return database.PutUInt64(s.singletonDB, GlobalRateKeyBytes, uint64(rate))
}

// GetAssetRate returns the rate override of asset and whether one is set.
func (s *State) GetAssetRate(asset ids.ID) (interest.Rate, bool, error) {
	return getRate(s.rateDB, asset[:])
}

func (s *State) SetAssetRate(asset ids.ID, rate interest.Rate) error {
	return database.PutUInt64(s.rateDB, asset[:], uint64(rate))
}

func getRate(db database.Database, key []byte) (interest.Rate, bool, error) {
	rate, err := database.GetUInt64(db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return interest.Rate(rate), true, nil
}

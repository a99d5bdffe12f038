// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lending

import (
	"math"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/utils/timer/mockable"
)

var (
	asset1 = ids.GenerateTestID()
	asset2 = ids.GenerateTestID()

	accountA = ids.GenerateTestShortID()
	accountB = ids.GenerateTestShortID()
	accountC = ids.GenerateTestShortID()
	accountD = ids.GenerateTestShortID()
)

func newTestEngine(t *testing.T, opts ...func(*config.Config)) *Engine {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	clock := &mockable.Clock{}
	clock.Set(time.Unix(1_700_000_000, 0))

	engine, err := New(Backend{
		Config: cfg,
		DB:     memdb.New(),
		Log:    log.NoLog{},
		Clock:  clock,
	})
	require.NoError(t, err)
	return engine
}

func requireBalanced(t *testing.T, engine *Engine, assets ...ids.ID) {
	for _, asset := range assets {
		audit, err := engine.Audit(asset)
		require.NoError(t, err)
		require.NoError(t, audit.Verify())
	}
}

func TestDepositTransferBorrowRepayFreeze(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)

	// deposit
	require.NoError(engine.Deposit(asset1, accountA, 1000))
	balance, err := engine.Balance(asset1, accountA)
	require.NoError(err)
	require.Equal(uint64(1000), balance)
	pool, err := engine.Pool(asset1)
	require.NoError(err)
	require.Equal(uint64(1000), pool.TotalDeposited)

	// transfer
	require.NoError(engine.Transfer(asset1, accountA, accountB, 500))
	balance, err = engine.Balance(asset1, accountA)
	require.NoError(err)
	require.Equal(uint64(500), balance)
	balance, err = engine.Balance(asset1, accountB)
	require.NoError(err)
	require.Equal(uint64(500), balance)

	// borrow
	require.NoError(engine.Borrow(asset1, accountC, 100, 10))
	loan, ok, err := engine.Loan(asset1, accountC)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(100), loan.Principal)
	require.Equal(uint64(10), loan.Term)
	pool, err = engine.Pool(asset1)
	require.NoError(err)
	require.Equal(uint64(100), pool.TotalBorrowed)

	// repay
	_, err = engine.Repay(asset1, accountC, 50)
	require.NoError(err)
	loan, ok, err = engine.Loan(asset1, accountC)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(50), loan.Principal)
	require.Equal(uint64(10), loan.Term)
	pool, err = engine.Pool(asset1)
	require.NoError(err)
	require.Equal(uint64(50), pool.TotalBorrowed)

	_, err = engine.Repay(asset1, accountC, 1000)
	require.ErrorIs(err, ErrInsufficientLoan)

	// freeze
	require.NoError(engine.Freeze(asset1))
	require.ErrorIs(engine.Transfer(asset1, accountA, accountB, 1), ErrAssetFrozen)
	require.NoError(engine.Unfreeze(asset1))
	require.NoError(engine.Transfer(asset1, accountA, accountB, 1))

	// insufficient liquidity
	before, err := engine.Pool(asset1)
	require.NoError(err)
	require.ErrorIs(engine.Borrow(asset1, accountD, 10_000, 1), ErrInsufficientLiquidity)
	after, err := engine.Pool(asset1)
	require.NoError(err)
	require.Equal(before, after)
	_, ok, err = engine.Loan(asset1, accountD)
	require.NoError(err)
	require.False(ok)

	requireBalanced(t, engine, asset1)
}

func TestFailedOperationsLeaveNoTrace(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)
	require.NoError(engine.Deposit(asset1, accountA, math.MaxUint64))

	require.ErrorIs(engine.Deposit(asset1, accountB, 1), ErrOverflow)
	require.ErrorIs(engine.Withdraw(asset1, accountB, 1), ErrInsufficientBalance)
	require.ErrorIs(engine.Transfer(asset1, accountB, accountA, 1), ErrInsufficientBalance)
	_, err := engine.Repay(asset1, accountB, 1)
	require.ErrorIs(err, ErrNoSuchLoan)
	require.ErrorIs(engine.Freeze(asset2), ErrAssetUnknown)
	require.ErrorIs(engine.UpdateRate(interest.One+1), ErrInvalidRate)

	balance, err := engine.Balance(asset1, accountB)
	require.NoError(err)
	require.Zero(balance)
	pool, err := engine.Pool(asset1)
	require.NoError(err)
	require.Equal(state.Pool{TotalDeposited: math.MaxUint64}, pool)
	frozen, err := engine.IsFrozen(asset2)
	require.NoError(err)
	require.False(frozen)
	rate, err := engine.Rate()
	require.NoError(err)
	require.Equal(interest.Zero, rate)

	require.Equal(uint64(1), engine.NextSeq())
	requireBalanced(t, engine, asset1)
}

func TestRepayOverflowRollsBack(t *testing.T) {
	require := require.New(t)

	treasury := ids.GenerateTestShortID()
	engine := newTestEngine(t, func(c *config.Config) {
		c.DefaultRate = interest.One
		c.Treasury = treasury
	})
	require.NoError(engine.Deposit(asset1, accountA, math.MaxUint64))
	require.NoError(engine.Borrow(asset1, accountB, math.MaxUint64, 2))

	_, err := engine.Repay(asset1, accountB, math.MaxUint64)
	require.ErrorIs(err, ErrOverflow)

	loan, ok, err := engine.Loan(asset1, accountB)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(math.MaxUint64), loan.Principal)

	balance, err := engine.Balance(asset1, treasury)
	require.NoError(err)
	require.Zero(balance)
	requireBalanced(t, engine, asset1)
}

func TestRepayWithoutTreasury(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t, func(c *config.Config) {
		c.DefaultRate = interest.One / 10
	})
	require.NoError(engine.Deposit(asset1, accountA, 1000))
	require.NoError(engine.Borrow(asset1, accountB, 500, 2))

	repayment, err := engine.Repay(asset1, accountB, 500)
	require.NoError(err)
	require.Equal(Repayment{Principal: 500, Interest: 100}, repayment)

	pool, err := engine.Pool(asset1)
	require.NoError(err)
	require.Equal(state.Pool{TotalDeposited: 1000}, pool)
	requireBalanced(t, engine, asset1)
}

func TestRepayWithoutTreasuryCapsInterest(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t, func(c *config.Config) {
		c.DefaultRate = interest.One
	})
	const principal = math.MaxUint64 / 2
	require.NoError(engine.Deposit(asset1, accountA, principal))
	require.NoError(engine.Borrow(asset1, accountB, principal, 3))

	repayment, err := engine.Repay(asset1, accountB, principal)
	require.NoError(err)
	require.Equal(Repayment{
		Principal:      principal,
		Interest:       math.MaxUint64,
		InterestCapped: true,
	}, repayment)

	_, ok, err := engine.Loan(asset1, accountB)
	require.NoError(err)
	require.False(ok)

	event, ok := engine.Event(2)
	require.True(ok)
	require.Equal(txs.RepayKind, event.Kind)
	require.True(event.InterestCapped)
	require.Equal(interest.One, event.Rate)
	requireBalanced(t, engine, asset1)
}

func TestRepayCreditsTreasury(t *testing.T) {
	require := require.New(t)

	treasury := ids.GenerateTestShortID()
	engine := newTestEngine(t, func(c *config.Config) {
		c.Treasury = treasury
	})
	require.NoError(engine.UpdateRate(interest.One / 20))
	require.NoError(engine.Deposit(asset1, accountA, 10_000))
	require.NoError(engine.Borrow(asset1, accountB, 1000, 2))

	repayment, err := engine.Repay(asset1, accountB, 1000)
	require.NoError(err)
	require.Equal(Repayment{Principal: 1000, Interest: 100}, repayment)

	balance, err := engine.Balance(asset1, treasury)
	require.NoError(err)
	require.Equal(uint64(100), balance)

	_, ok, err := engine.Loan(asset1, accountB)
	require.NoError(err)
	require.False(ok)
	requireBalanced(t, engine, asset1)
}

func TestRateUpdateDoesNotRepriceLoans(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)
	require.NoError(engine.UpdateRate(interest.One / 10))
	require.NoError(engine.Deposit(asset1, accountA, 10_000))
	require.NoError(engine.Borrow(asset1, accountB, 1000, 1))
	require.NoError(engine.UpdateRate(interest.One / 2))

	repayment, err := engine.Repay(asset1, accountB, 1000)
	require.NoError(err)
	require.Equal(uint64(100), repayment.Interest)

	rate, err := engine.Rate()
	require.NoError(err)
	require.Equal(interest.One/2, rate)
}

func TestAssetRate(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t, func(c *config.Config) {
		c.DefaultRate = interest.One / 100
	})

	rate, err := engine.AssetRate(asset1)
	require.NoError(err)
	require.Equal(interest.One/100, rate)

	require.NoError(engine.UpdateAssetRate(asset1, interest.One/4))
	rate, err = engine.AssetRate(asset1)
	require.NoError(err)
	require.Equal(interest.One/4, rate)

	rate, err = engine.AssetRate(asset2)
	require.NoError(err)
	require.Equal(interest.One/100, rate)
}

func TestTermPolicies(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		require := require.New(t)

		engine := newTestEngine(t)
		require.NoError(engine.Deposit(asset1, accountA, 1000))
		require.NoError(engine.Borrow(asset1, accountB, 100, 10))
		require.NoError(engine.Borrow(asset1, accountB, 100, 20))

		loan, _, err := engine.Loan(asset1, accountB)
		require.NoError(err)
		require.Equal(uint64(200), loan.Principal)
		require.Equal(uint64(20), loan.Term)
	})
	t.Run("reject", func(t *testing.T) {
		require := require.New(t)

		engine := newTestEngine(t, func(c *config.Config) {
			c.TermPolicy = config.RejectTermChange
		})
		require.NoError(engine.Deposit(asset1, accountA, 1000))
		require.NoError(engine.Borrow(asset1, accountB, 100, 10))
		require.ErrorIs(engine.Borrow(asset1, accountB, 100, 20), ErrTermMismatch)
		require.NoError(engine.ExtendTerm(asset1, accountB, 20))
		require.NoError(engine.Borrow(asset1, accountB, 100, 20))

		loan, _, err := engine.Loan(asset1, accountB)
		require.NoError(err)
		require.Equal(uint64(200), loan.Principal)
		require.Equal(uint64(20), loan.Term)
	})
}

func TestStrictFreeze(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)
	require.NoError(engine.Deposit(asset1, accountA, 1000))
	require.NoError(engine.Borrow(asset1, accountB, 100, 1))
	require.NoError(engine.Freeze(asset1))
	require.NoError(engine.Freeze(asset1))

	require.ErrorIs(engine.Deposit(asset1, accountA, 1), ErrAssetFrozen)
	require.ErrorIs(engine.Withdraw(asset1, accountA, 1), ErrAssetFrozen)
	require.ErrorIs(engine.Borrow(asset1, accountB, 1, 1), ErrAssetFrozen)
	_, err := engine.Repay(asset1, accountB, 1)
	require.ErrorIs(err, ErrAssetFrozen)

	require.NoError(engine.Deposit(asset2, accountA, 1))

	require.NoError(engine.Unfreeze(asset1))
	require.NoError(engine.Withdraw(asset1, accountA, 1))
	requireBalanced(t, engine, asset1, asset2)
}

func TestCalculateInterestIsPure(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)
	for range 3 {
		accrued, err := engine.CalculateInterest(1000, interest.One/20, 2)
		require.NoError(err)
		require.Equal(uint64(100), accrued)
	}
	_, err := engine.CalculateInterest(1000, interest.One+1, 2)
	require.ErrorIs(err, ErrInvalidRate)
	require.Zero(engine.NextSeq())
}

func TestEvents(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t, func(c *config.Config) {
		c.EventCacheSize = 2
	})
	require.NoError(engine.Deposit(asset1, accountA, 1000))
	require.NoError(engine.Transfer(asset1, accountA, accountB, 10))
	require.Error(engine.Withdraw(asset1, accountC, 1))
	require.NoError(engine.Borrow(asset1, accountC, 10, 5))

	require.Equal(uint64(3), engine.NextSeq())

	_, ok := engine.Event(0)
	require.False(ok)

	event, ok := engine.Event(1)
	require.True(ok)
	require.Equal(txs.TransferKind, event.Kind)
	require.Equal(asset1, event.Asset)
	require.Equal([]ids.ShortID{accountA, accountB}, event.Accounts)
	require.Equal(uint64(10), uint64(event.Amount))
	require.Equal(uint64(1_700_000_000), uint64(event.Time))

	event, ok = engine.Event(2)
	require.True(ok)
	require.Equal(txs.BorrowKind, event.Kind)
	require.Equal(uint64(5), uint64(event.Term))
	require.Equal(interest.Zero, event.Rate)
	require.False(event.InterestCapped)
}

func TestBorrowEventRecordsLoanRate(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)
	require.NoError(engine.UpdateRate(interest.One / 20))
	require.NoError(engine.UpdateAssetRate(asset1, interest.One/10))
	require.NoError(engine.Deposit(asset1, accountA, 1000))
	require.NoError(engine.Borrow(asset1, accountB, 100, 3))
	_, err := engine.Repay(asset1, accountB, 100)
	require.NoError(err)

	borrow, ok := engine.Event(3)
	require.True(ok)
	require.Equal(txs.BorrowKind, borrow.Kind)
	require.Equal(interest.One/10, borrow.Rate)

	repay, ok := engine.Event(4)
	require.True(ok)
	require.Equal(txs.RepayKind, repay.Kind)
	require.Equal(interest.One/10, repay.Rate)
	require.Equal(uint64(30), uint64(repay.Interest))
}

func TestApplyBatch(t *testing.T) {
	require := require.New(t)

	engine := newTestEngine(t)

	var batch [][]byte
	for _, unsigned := range []txs.UnsignedTx{
		&txs.DepositTx{Asset: asset1, Account: accountA, Amount: 100},
		&txs.WithdrawTx{Asset: asset1, Account: accountA, Amount: 101},
		&txs.TransferTx{Asset: asset1, From: accountA, To: accountB, Amount: 40},
		&txs.UpdateRateTx{Rate: interest.One + 1},
	} {
		tx, err := txs.NewTx(unsigned)
		require.NoError(err)
		batch = append(batch, tx.Bytes())
	}
	batch = append(batch, []byte{0xde, 0xad})

	errs := engine.ApplyBatch(batch)
	require.Len(errs, 5)
	require.NoError(errs[0])
	require.ErrorIs(errs[1], ErrInsufficientBalance)
	require.NoError(errs[2])
	require.ErrorIs(errs[3], ErrInvalidRate)
	require.Error(errs[4])

	balance, err := engine.Balance(asset1, accountB)
	require.NoError(err)
	require.Equal(uint64(40), balance)
	requireBalanced(t, engine, asset1)
}

func TestIssueNil(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Issue(nil)
	require.ErrorIs(t, err, txs.ErrNilTx)

	var deposit *txs.DepositTx
	_, err = engine.Issue(deposit)
	require.ErrorIs(t, err, txs.ErrNilTx)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.TermPolicy = "sometimes"
	_, err := New(Backend{Config: cfg, DB: memdb.New()})
	require.ErrorIs(err, config.ErrUnknownTermPolicy)

	_, err = New(Backend{Config: config.DefaultConfig()})
	require.ErrorIs(err, errNilDatabase)
}

func TestFootprintCommutes(t *testing.T) {
	require := require.New(t)
	engine := newTestEngine(t)

	depositA := &txs.DepositTx{Asset: asset1, Account: accountA, Amount: 10}
	depositB := &txs.DepositTx{Asset: asset2, Account: accountB, Amount: 20}
	withdrawA := &txs.WithdrawTx{Asset: asset1, Account: accountA, Amount: 5}

	fA, err := engine.Footprint(depositA)
	require.NoError(err)
	fB, err := engine.Footprint(depositB)
	require.NoError(err)
	fW, err := engine.Footprint(withdrawA)
	require.NoError(err)

	require.False(fA.Conflicts(fB))
	require.True(fA.Conflicts(fW))
}

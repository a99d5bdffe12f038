// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
)

func TestFootprintOf(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	footprint, err := FootprintOf(&txs.TransferTx{Asset: testAsset, From: alice, To: bob, Amount: 1}, &cfg)
	require.NoError(err)
	require.True(footprint.Reads.Contains(state.FrozenKey(testAsset)))
	require.False(footprint.Writes.Contains(state.FrozenKey(testAsset)))
	require.True(footprint.Writes.Contains(state.BalanceKey(testAsset, alice)))
	require.True(footprint.Writes.Contains(state.BalanceKey(testAsset, bob)))
	require.True(footprint.Writes.Contains(state.PoolKey(testAsset)))

	cfg.StrictFreeze = false
	footprint, err = FootprintOf(&txs.DepositTx{Asset: testAsset, Account: alice}, &cfg)
	require.NoError(err)
	require.False(footprint.Reads.Contains(state.FrozenKey(testAsset)))

	footprint, err = FootprintOf(&txs.RepayTx{Asset: testAsset, Borrower: bob}, &cfg)
	require.NoError(err)
	require.False(footprint.Writes.Contains(state.BalanceKey(testAsset, treasury)))

	cfg.Treasury = treasury
	footprint, err = FootprintOf(&txs.RepayTx{Asset: testAsset, Borrower: bob}, &cfg)
	require.NoError(err)
	require.True(footprint.Writes.Contains(state.BalanceKey(testAsset, treasury)))
}

func TestFootprintConflicts(t *testing.T) {
	otherAsset := ids.GenerateTestID()
	cfg := config.DefaultConfig()

	tests := []struct {
		name      string
		a, b      txs.UnsignedTx
		conflicts bool
	}{
		{
			name:      "deposits of different assets",
			a:         &txs.DepositTx{Asset: testAsset, Account: alice},
			b:         &txs.DepositTx{Asset: otherAsset, Account: alice},
			conflicts: false,
		},
		{
			name:      "deposits of the same asset share the pool",
			a:         &txs.DepositTx{Asset: testAsset, Account: alice},
			b:         &txs.DepositTx{Asset: testAsset, Account: bob},
			conflicts: true,
		},
		{
			name:      "freeze against transfer",
			a:         &txs.FreezeTx{Asset: testAsset},
			b:         &txs.TransferTx{Asset: testAsset, From: alice, To: bob},
			conflicts: true,
		},
		{
			name:      "rate update against borrow",
			a:         &txs.UpdateRateTx{Rate: interest.One},
			b:         &txs.BorrowTx{Asset: otherAsset, Borrower: bob},
			conflicts: true,
		},
		{
			name:      "rate update against deposit",
			a:         &txs.UpdateRateTx{Rate: interest.One},
			b:         &txs.DepositTx{Asset: testAsset, Account: alice},
			conflicts: false,
		},
		{
			name:      "term extensions of different borrowers",
			a:         &txs.ExtendTermTx{Asset: testAsset, Borrower: alice},
			b:         &txs.ExtendTermTx{Asset: testAsset, Borrower: bob},
			conflicts: false,
		},
		{
			name:      "freezes only read the pool",
			a:         &txs.FreezeTx{Asset: testAsset},
			b:         &txs.UnfreezeTx{Asset: otherAsset},
			conflicts: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			a, err := FootprintOf(test.a, &cfg)
			require.NoError(err)
			b, err := FootprintOf(test.b, &cfg)
			require.NoError(err)

			require.Equal(test.conflicts, a.Conflicts(b))
			require.Equal(test.conflicts, b.Conflicts(a))
		})
	}
}

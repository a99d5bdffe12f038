// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/txs"
)

const lendingScript = `
config:
  treasury: treasury
steps:
  - {op: deposit, asset: DOT, account: alice, amount: 1000}
  - {op: update_rate, rate: "0.05"}
  - {op: borrow, asset: DOT, account: bob, amount: 400, term: 2}
  - {op: withdraw, asset: DOT, account: alice, amount: 700, expect: insufficient_liquidity}
  - {op: repay, asset: DOT, account: bob, amount: 100}
  - {op: freeze, asset: DOT}
  - {op: transfer, asset: DOT, account: alice, to: carol, amount: 5, expect: asset_frozen}
`

func TestReplay(t *testing.T) {
	require := require.New(t)

	script, err := ParseScript([]byte(lendingScript))
	require.NoError(err)
	require.Len(script.Steps, 7)

	report, err := Replay(script, log.NoLog{})
	require.NoError(err)

	results := make([]string, len(report.Steps))
	for i, step := range report.Steps {
		results[i] = step.Result
	}
	require.Equal([]string{
		"ok",
		"ok",
		"ok",
		"insufficient_liquidity",
		"ok",
		"ok",
		"asset_frozen",
	}, results)

	repay := report.Steps[4]
	require.Equal(txs.RepayKind, repay.Op)
	require.Equal(uint64(10), repay.Interest)
	require.NotNil(repay.Seq)
	require.Equal(uint64(3), *repay.Seq)
	require.Nil(report.Steps[3].Seq)

	require.Len(report.Assets, 1)
	dot := report.Assets[0]
	require.Equal("DOT", dot.Label)
	require.Equal(uint64(1010), dot.TotalDeposited)
	require.Equal(uint64(300), dot.TotalBorrowed)
	require.True(dot.Frozen)
	require.Equal(map[string]uint64{
		"alice":    1000,
		"treasury": 10,
	}, dot.Balances)
	require.Equal(map[string]LoanReport{
		"bob": {
			Principal: 300,
			Term:      2,
			Rate:      "0.05",
		},
	}, dot.Loans)
}

func TestReplayExpectationFailure(t *testing.T) {
	require := require.New(t)

	script, err := ParseScript([]byte(`
steps:
  - {op: withdraw, asset: DOT, account: alice, amount: 1}
  - {op: deposit, asset: DOT, account: alice, amount: 1, expect: overflow}
`))
	require.NoError(err)

	report, err := Replay(script, log.NoLog{})
	require.ErrorIs(err, ErrExpectationFailed)
	require.NotNil(report)
	require.Equal("insufficient_balance", report.Steps[0].Result)
	require.NotEmpty(report.Steps[0].Error)
	require.Equal("ok", report.Steps[1].Result)
}

func TestReplayUnknownOp(t *testing.T) {
	script, err := ParseScript([]byte(`steps: [{op: mint, asset: DOT, account: alice, amount: 1}]`))
	require.NoError(t, err)

	_, err = Replay(script, log.NoLog{})
	require.ErrorIs(t, err, errUnknownOp)
}

func TestScriptConfig(t *testing.T) {
	require := require.New(t)

	script, err := ParseScript([]byte(`
config:
  defaultRate: "0.1"
  strictFreeze: false
  termPolicy: reject
  eventCacheSize: 8
`))
	require.NoError(err)

	c, err := script.ledgerConfig(newLabels())
	require.NoError(err)
	require.False(c.StrictFreeze)
	require.Equal(config.RejectTermChange, c.TermPolicy)
	require.Equal(8, c.EventCacheSize)
	require.Equal("0.1", c.DefaultRate.String())
	require.False(c.HasTreasury())

	script.Config.TermPolicy = "sometimes"
	_, err = script.ledgerConfig(newLabels())
	require.ErrorIs(err, config.ErrUnknownTermPolicy)
}

func TestLabels(t *testing.T) {
	require := require.New(t)
	l := newLabels()

	assetID := ids.GenerateTestID()
	require.Equal(assetID, l.asset(assetID.String()))
	require.Equal(l.asset("DOT"), l.asset("DOT"))
	require.NotEqual(l.asset("DOT"), l.asset("KSM"))
	require.Equal(ids.Empty, l.asset(""))
	require.Equal([]string{assetID.String(), "DOT", "KSM"}, l.assets)

	accountID := ids.GenerateTestShortID()
	got, err := l.account(accountID.String())
	require.NoError(err)
	require.Equal(accountID, got)

	alice, err := l.account("alice")
	require.NoError(err)
	require.NotEqual(ids.ShortEmpty, alice)
	require.Equal("alice", l.accountLabel(alice))

	empty, err := l.account("")
	require.NoError(err)
	require.Equal(ids.ShortEmpty, empty)
	require.Len(l.accounts, 2)
}

func TestCommand(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(os.WriteFile(path, []byte(lendingScript), 0o600))

	var out bytes.Buffer
	cmd := Command()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(cmd.Execute())

	var report Report
	require.NoError(yaml.Unmarshal(out.Bytes(), &report))
	require.Len(report.Steps, 7)
	require.Len(report.Assets, 1)
	require.Equal(uint64(1010), report.Assets[0].TotalDeposited)
}

func TestCommandMissingScript(t *testing.T) {
	cmd := Command()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.ErrorIs(t, cmd.Execute(), errMissingScript)
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/ledger"
	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/lending"
	"github.com/luxfi/ledger/metrics"
	"github.com/luxfi/ledger/txs"
)

const okResult = "ok"

var (
	ErrExpectationFailed = errors.New("step result did not match expectation")

	errUnknownOp = errors.New("unknown op")
)

// Script is a sequence of ledger operations. Assets and accounts are named by
// labels: a label that parses as an ID is used as is, any other label is
// hashed into one.
type Script struct {
	Config *ScriptConfig `yaml:"config"`
	Steps  []Step        `yaml:"steps"`
}

// ScriptConfig overrides the default ledger config. Unset fields keep their
// defaults.
type ScriptConfig struct {
	DefaultRate    string `yaml:"defaultRate"`
	StrictFreeze   *bool  `yaml:"strictFreeze"`
	TermPolicy     string `yaml:"termPolicy"`
	Treasury       string `yaml:"treasury"`
	EventCacheSize int    `yaml:"eventCacheSize"`
}

type Step struct {
	Op      txs.Kind `yaml:"op"`
	Asset   string   `yaml:"asset"`
	Account string   `yaml:"account"`
	To      string   `yaml:"to"`
	Amount  uint64   `yaml:"amount"`
	Term    uint64   `yaml:"term"`
	Rate    string   `yaml:"rate"`
	// Expect is "ok" or the metrics reason of the expected failure. Empty
	// expects success.
	Expect string `yaml:"expect"`
}

func ParseScript(b []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return s, nil
}

// Replay runs script against a fresh in-memory ledger.
func Replay(script *Script, logger log.Logger) (*Report, error) {
	l := newLabels()
	c, err := script.ledgerConfig(l)
	if err != nil {
		return nil, err
	}
	factory := &ledger.Factory{
		Config: c,
		Sink:   lending.NewLogSink(logger),
	}
	engine, err := factory.NewEngine(logger)
	if err != nil {
		return nil, err
	}
	return script.run(engine, l)
}

func (s *Script) ledgerConfig(l *labels) (config.Config, error) {
	c := config.DefaultConfig()
	if s.Config == nil {
		return c, nil
	}
	sc := s.Config
	if sc.DefaultRate != "" {
		rate, err := interest.ParseRate(sc.DefaultRate)
		if err != nil {
			return c, err
		}
		c.DefaultRate = rate
	}
	if sc.StrictFreeze != nil {
		c.StrictFreeze = *sc.StrictFreeze
	}
	if sc.TermPolicy != "" {
		c.TermPolicy = config.TermPolicy(sc.TermPolicy)
	}
	if sc.Treasury != "" {
		treasury, err := l.account(sc.Treasury)
		if err != nil {
			return c, err
		}
		c.Treasury = treasury
	}
	if sc.EventCacheSize != 0 {
		c.EventCacheSize = sc.EventCacheSize
	}
	return c, c.Verify()
}

// labels maps script labels to IDs, remembering the order they were first
// seen in.
type labels struct {
	assets      []string
	assetIDs    map[string]ids.ID
	accounts    []string
	accountIDs  map[string]ids.ShortID
	accountName map[ids.ShortID]string
}

func newLabels() *labels {
	return &labels{
		assetIDs:    make(map[string]ids.ID),
		accountIDs:  make(map[string]ids.ShortID),
		accountName: make(map[ids.ShortID]string),
	}
}

func (l *labels) asset(label string) ids.ID {
	if label == "" {
		return ids.Empty
	}
	if id, ok := l.assetIDs[label]; ok {
		return id
	}
	id, err := ids.FromString(label)
	if err != nil {
		id = ids.ID(hash.ComputeHash256Array([]byte(label)))
	}
	l.assets = append(l.assets, label)
	l.assetIDs[label] = id
	return id
}

func (l *labels) account(label string) (ids.ShortID, error) {
	if label == "" {
		return ids.ShortEmpty, nil
	}
	if id, ok := l.accountIDs[label]; ok {
		return id, nil
	}
	id, err := ids.ShortFromString(label)
	if err != nil {
		digest := hash.ComputeHash256Array([]byte(label))
		id, err = ids.ToShortID(digest[:len(ids.ShortEmpty)])
		if err != nil {
			return ids.ShortEmpty, err
		}
	}
	l.accounts = append(l.accounts, label)
	l.accountIDs[label] = id
	l.accountName[id] = label
	return id, nil
}

func (l *labels) accountLabel(id ids.ShortID) string {
	if label, ok := l.accountName[id]; ok {
		return label
	}
	return id.String()
}

// tx builds the tx a step issues.
func (s *Step) tx(l *labels) (txs.UnsignedTx, error) {
	asset := l.asset(s.Asset)
	account, err := l.account(s.Account)
	if err != nil {
		return nil, err
	}

	switch s.Op {
	case txs.DepositKind:
		return &txs.DepositTx{Asset: asset, Account: account, Amount: s.Amount}, nil
	case txs.WithdrawKind:
		return &txs.WithdrawTx{Asset: asset, Account: account, Amount: s.Amount}, nil
	case txs.TransferKind:
		to, err := l.account(s.To)
		if err != nil {
			return nil, err
		}
		return &txs.TransferTx{Asset: asset, From: account, To: to, Amount: s.Amount}, nil
	case txs.BorrowKind:
		return &txs.BorrowTx{Asset: asset, Borrower: account, Amount: s.Amount, Term: s.Term}, nil
	case txs.RepayKind:
		return &txs.RepayTx{Asset: asset, Borrower: account, Amount: s.Amount}, nil
	case txs.FreezeKind:
		return &txs.FreezeTx{Asset: asset}, nil
	case txs.UnfreezeKind:
		return &txs.UnfreezeTx{Asset: asset}, nil
	case txs.UpdateRateKind:
		rate, err := interest.ParseRate(s.Rate)
		if err != nil {
			return nil, err
		}
		return &txs.UpdateRateTx{Rate: rate}, nil
	case txs.UpdateAssetRateKind:
		rate, err := interest.ParseRate(s.Rate)
		if err != nil {
			return nil, err
		}
		return &txs.UpdateAssetRateTx{Asset: asset, Rate: rate}, nil
	case txs.ExtendTermKind:
		return &txs.ExtendTermTx{Asset: asset, Borrower: account, Term: s.Term}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownOp, s.Op)
	}
}

type Report struct {
	Steps  []StepReport  `yaml:"steps"`
	Assets []AssetReport `yaml:"assets"`
}

type StepReport struct {
	Index    int      `yaml:"index"`
	Op       txs.Kind `yaml:"op"`
	Result   string   `yaml:"result"`
	Error    string   `yaml:"error,omitempty"`
	Seq      *uint64  `yaml:"seq,omitempty"`
	Interest uint64   `yaml:"interest,omitempty"`
}

type AssetReport struct {
	Label          string                `yaml:"label"`
	ID             string                `yaml:"id"`
	TotalDeposited uint64                `yaml:"totalDeposited"`
	TotalBorrowed  uint64                `yaml:"totalBorrowed"`
	Frozen         bool                  `yaml:"frozen"`
	Rate           string                `yaml:"rate"`
	Balances       map[string]uint64     `yaml:"balances,omitempty"`
	Loans          map[string]LoanReport `yaml:"loans,omitempty"`
}

type LoanReport struct {
	Principal uint64 `yaml:"principal"`
	Term      uint64 `yaml:"term"`
	Rate      string `yaml:"rate"`
}

// run applies every step to engine and reports the resulting state. The
// returned error joins every step whose result did not match its
// expectation.
func (s *Script) run(engine *lending.Engine, l *labels) (*Report, error) {
	report := &Report{
		Steps: make([]StepReport, 0, len(s.Steps)),
	}

	var errs []error
	for i := range s.Steps {
		step := &s.Steps[i]
		stepReport := StepReport{
			Index: i,
			Op:    step.Op,
		}

		unsigned, err := step.tx(l)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		receipt, err := engine.Issue(unsigned)
		if err != nil {
			stepReport.Result = metrics.Reason(err)
			stepReport.Error = err.Error()
		} else {
			seq := receipt.Event.Seq
			stepReport.Result = okResult
			stepReport.Seq = &seq
			stepReport.Interest = uint64(receipt.Event.Interest)
		}
		report.Steps = append(report.Steps, stepReport)

		expect := step.Expect
		if expect == "" {
			expect = okResult
		}
		if stepReport.Result != expect {
			errs = append(errs, fmt.Errorf("%w: step %d (%s) expected %s, got %s",
				ErrExpectationFailed, i, step.Op, expect, stepReport.Result))
		}
	}

	for _, label := range l.assets {
		assetReport, err := reportAsset(engine, l, label)
		if err != nil {
			return nil, err
		}
		report.Assets = append(report.Assets, assetReport)
	}
	return report, errors.Join(errs...)
}

func reportAsset(engine *lending.Engine, l *labels, label string) (AssetReport, error) {
	asset := l.assetIDs[label]
	pool, err := engine.Pool(asset)
	if err != nil {
		return AssetReport{}, err
	}
	frozen, err := engine.IsFrozen(asset)
	if err != nil {
		return AssetReport{}, err
	}
	rate, err := engine.AssetRate(asset)
	if err != nil {
		return AssetReport{}, err
	}

	r := AssetReport{
		Label:          label,
		ID:             asset.String(),
		TotalDeposited: pool.TotalDeposited,
		TotalBorrowed:  pool.TotalBorrowed,
		Frozen:         frozen,
		Rate:           rate.String(),
		Balances:       make(map[string]uint64),
		Loans:          make(map[string]LoanReport),
	}
	for _, accountLabel := range l.accounts {
		account := l.accountIDs[accountLabel]
		balance, err := engine.Balance(asset, account)
		if err != nil {
			return AssetReport{}, err
		}
		if balance != 0 {
			r.Balances[l.accountLabel(account)] = balance
		}
		loan, ok, err := engine.Loan(asset, account)
		if err != nil {
			return AssetReport{}, err
		}
		if ok {
			r.Loans[l.accountLabel(account)] = LoanReport{
				Principal: loan.Principal,
				Term:      loan.Term,
				Rate:      loan.Rate.String(),
			}
		}
	}
	return r, nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the ledger engine over JSON-RPC.
package api

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/lending"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/utils/json"
	utilmetric "github.com/luxfi/ledger/utils/metric"
)

// ServiceName is the namespace the service's methods are registered under.
const ServiceName = "ledger"

var ErrEventNotFound = errors.New("event not found")

// Service is the JSON-RPC surface of a lending.Engine. Calls are serialized
// through a single lock.
type Service struct {
	lock   sync.Mutex
	engine *lending.Engine
	log    log.Logger
}

func NewService(engine *lending.Engine, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NoLog{}
	}
	return &Service{
		engine: engine,
		log:    logger,
	}
}

// NewHandler returns a gorilla/rpc server for service. The interceptor is
// optional.
func NewHandler(service *Service, interceptor utilmetric.APIInterceptor) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json2.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	if interceptor != nil {
		server.RegisterInterceptFunc(interceptor.InterceptRequest)
		server.RegisterAfterFunc(interceptor.AfterRequest)
	}
	return server, server.RegisterService(service, ServiceName)
}

// IssueReply identifies the committed operation.
type IssueReply struct {
	TxID ids.ID      `json:"txID"`
	Seq  json.Uint64 `json:"seq"`
}

func (r *IssueReply) set(receipt lending.Receipt) {
	r.TxID = receipt.TxID
	r.Seq = json.Uint64(receipt.Event.Seq)
}

func (s *Service) issue(method string, unsigned txs.UnsignedTx, reply *IssueReply) (lending.Receipt, error) {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", method),
	)

	s.lock.Lock()
	defer s.lock.Unlock()

	receipt, err := s.engine.Issue(unsigned)
	if err != nil {
		return receipt, err
	}
	reply.set(receipt)
	return receipt, nil
}

type AmountArgs struct {
	Asset   ids.ID      `json:"asset"`
	Account ids.ShortID `json:"account"`
	Amount  json.Uint64 `json:"amount"`
}

// Deposit credits account with amount of asset.
func (s *Service) Deposit(_ *http.Request, args *AmountArgs, reply *IssueReply) error {
	_, err := s.issue("deposit", &txs.DepositTx{
		Asset:   args.Asset,
		Account: args.Account,
		Amount:  uint64(args.Amount),
	}, reply)
	return err
}

// Withdraw debits account by amount of asset.
func (s *Service) Withdraw(_ *http.Request, args *AmountArgs, reply *IssueReply) error {
	_, err := s.issue("withdraw", &txs.WithdrawTx{
		Asset:   args.Asset,
		Account: args.Account,
		Amount:  uint64(args.Amount),
	}, reply)
	return err
}

type TransferArgs struct {
	Asset  ids.ID      `json:"asset"`
	From   ids.ShortID `json:"from"`
	To     ids.ShortID `json:"to"`
	Amount json.Uint64 `json:"amount"`
}

func (s *Service) Transfer(_ *http.Request, args *TransferArgs, reply *IssueReply) error {
	_, err := s.issue("transfer", &txs.TransferTx{
		Asset:  args.Asset,
		From:   args.From,
		To:     args.To,
		Amount: uint64(args.Amount),
	}, reply)
	return err
}

type BorrowArgs struct {
	Asset    ids.ID      `json:"asset"`
	Borrower ids.ShortID `json:"borrower"`
	Amount   json.Uint64 `json:"amount"`
	Term     json.Uint64 `json:"term"`
}

func (s *Service) Borrow(_ *http.Request, args *BorrowArgs, reply *IssueReply) error {
	_, err := s.issue("borrow", &txs.BorrowTx{
		Asset:    args.Asset,
		Borrower: args.Borrower,
		Amount:   uint64(args.Amount),
		Term:     uint64(args.Term),
	}, reply)
	return err
}

type RepayArgs struct {
	Asset    ids.ID      `json:"asset"`
	Borrower ids.ShortID `json:"borrower"`
	Amount   json.Uint64 `json:"amount"`
}

type RepayReply struct {
	IssueReply
	Principal json.Uint64 `json:"principal"`
	Interest  json.Uint64 `json:"interest"`

	InterestCapped bool `json:"interestCapped,omitempty"`
}

// Repay reduces the borrower's loan and reports the interest charged on the
// repaid principal.
func (s *Service) Repay(_ *http.Request, args *RepayArgs, reply *RepayReply) error {
	receipt, err := s.issue("repay", &txs.RepayTx{
		Asset:    args.Asset,
		Borrower: args.Borrower,
		Amount:   uint64(args.Amount),
	}, &reply.IssueReply)
	if err != nil {
		return err
	}
	reply.Principal = args.Amount
	reply.Interest = receipt.Event.Interest
	reply.InterestCapped = receipt.Event.InterestCapped
	return nil
}

type AssetArgs struct {
	Asset ids.ID `json:"asset"`
}

func (s *Service) Freeze(_ *http.Request, args *AssetArgs, reply *IssueReply) error {
	_, err := s.issue("freeze", &txs.FreezeTx{Asset: args.Asset}, reply)
	return err
}

func (s *Service) Unfreeze(_ *http.Request, args *AssetArgs, reply *IssueReply) error {
	_, err := s.issue("unfreeze", &txs.UnfreezeTx{Asset: args.Asset}, reply)
	return err
}

type RateArgs struct {
	Rate interest.Rate `json:"rate"`
}

// UpdateRate replaces the global rate charged on new loans.
func (s *Service) UpdateRate(_ *http.Request, args *RateArgs, reply *IssueReply) error {
	_, err := s.issue("updateRate", &txs.UpdateRateTx{Rate: args.Rate}, reply)
	return err
}

type AssetRateArgs struct {
	Asset ids.ID        `json:"asset"`
	Rate  interest.Rate `json:"rate"`
}

// UpdateAssetRate overrides the global rate for new loans of one asset.
func (s *Service) UpdateAssetRate(_ *http.Request, args *AssetRateArgs, reply *IssueReply) error {
	_, err := s.issue("updateAssetRate", &txs.UpdateAssetRateTx{
		Asset: args.Asset,
		Rate:  args.Rate,
	}, reply)
	return err
}

type ExtendTermArgs struct {
	Asset    ids.ID      `json:"asset"`
	Borrower ids.ShortID `json:"borrower"`
	Term     json.Uint64 `json:"term"`
}

func (s *Service) ExtendTerm(_ *http.Request, args *ExtendTermArgs, reply *IssueReply) error {
	_, err := s.issue("extendTerm", &txs.ExtendTermTx{
		Asset:    args.Asset,
		Borrower: args.Borrower,
		Term:     uint64(args.Term),
	}, reply)
	return err
}

// IssueTxsArgs carries hex encoded txs, with or without a 0x prefix.
type IssueTxsArgs struct {
	Txs []string `json:"txs"`
}

type IssueTxResult struct {
	TxID  ids.ID `json:"txID"`
	Error string `json:"error,omitempty"`
}

type IssueTxsReply struct {
	Results []IssueTxResult `json:"results"`
}

// IssueTxs applies codec encoded txs in order. Each tx commits or fails on its
// own; a failure is reported in its result and does not stop the rest.
func (s *Service) IssueTxs(_ *http.Request, args *IssueTxsArgs, reply *IssueTxsReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "issueTxs"),
	)

	txBytes := make([][]byte, len(args.Txs))
	for i, encoded := range args.Txs {
		b, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
		if err != nil {
			return fmt.Errorf("problem decoding tx %d: %w", i, err)
		}
		txBytes[i] = b
	}

	s.lock.Lock()
	errs := s.engine.ApplyBatch(txBytes)
	s.lock.Unlock()

	reply.Results = make([]IssueTxResult, len(txBytes))
	for i, b := range txBytes {
		if tx, err := txs.Parse(b); err == nil {
			reply.Results[i].TxID = tx.ID()
		}
		if errs[i] != nil {
			reply.Results[i].Error = errs[i].Error()
		}
	}
	return nil
}

type CalculateInterestArgs struct {
	Principal json.Uint64   `json:"principal"`
	Rate      interest.Rate `json:"rate"`
	Duration  json.Uint64   `json:"duration"`
}

type CalculateInterestReply struct {
	Interest json.Uint64 `json:"interest"`
}

// CalculateInterest returns principal * rate * duration without touching any
// state.
func (s *Service) CalculateInterest(_ *http.Request, args *CalculateInterestArgs, reply *CalculateInterestReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "calculateInterest"),
	)

	amount, err := s.engine.CalculateInterest(uint64(args.Principal), args.Rate, uint64(args.Duration))
	if err != nil {
		return err
	}
	reply.Interest = json.Uint64(amount)
	return nil
}

type GetBalanceArgs struct {
	Asset   ids.ID      `json:"asset"`
	Account ids.ShortID `json:"account"`
}

type GetBalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	balance, err := s.engine.Balance(args.Asset, args.Account)
	if err != nil {
		return err
	}
	reply.Balance = json.Uint64(balance)
	return nil
}

type GetLoanArgs struct {
	Asset    ids.ID      `json:"asset"`
	Borrower ids.ShortID `json:"borrower"`
}

// GetLoanReply reports the borrower's loan. Principal and Term are zero when
// no loan is open.
type GetLoanReply struct {
	Open      bool          `json:"open"`
	Principal json.Uint64   `json:"principal"`
	Term      json.Uint64   `json:"term"`
	Rate      interest.Rate `json:"rate"`
}

func (s *Service) GetLoan(_ *http.Request, args *GetLoanArgs, reply *GetLoanReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	loan, ok, err := s.engine.Loan(args.Asset, args.Borrower)
	if err != nil {
		return err
	}
	reply.Open = ok
	reply.Principal = json.Uint64(loan.Principal)
	reply.Term = json.Uint64(loan.Term)
	reply.Rate = loan.Rate
	return nil
}

type GetPoolReply struct {
	TotalDeposited json.Uint64 `json:"totalDeposited"`
	TotalBorrowed  json.Uint64 `json:"totalBorrowed"`
	Available      json.Uint64 `json:"available"`
}

func (s *Service) GetPool(_ *http.Request, args *AssetArgs, reply *GetPoolReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	pool, err := s.engine.Pool(args.Asset)
	if err != nil {
		return err
	}
	reply.TotalDeposited = json.Uint64(pool.TotalDeposited)
	reply.TotalBorrowed = json.Uint64(pool.TotalBorrowed)
	reply.Available = json.Uint64(pool.Available())
	return nil
}

type IsFrozenReply struct {
	Frozen bool `json:"frozen"`
}

func (s *Service) IsFrozen(_ *http.Request, args *AssetArgs, reply *IsFrozenReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	frozen, err := s.engine.IsFrozen(args.Asset)
	reply.Frozen = frozen
	return err
}

// GetRateArgs optionally names an asset. An empty asset selects the global
// rate.
type GetRateArgs struct {
	Asset ids.ID `json:"asset"`
}

type GetRateReply struct {
	Rate interest.Rate `json:"rate"`
}

func (s *Service) GetRate(_ *http.Request, args *GetRateArgs, reply *GetRateReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		rate interest.Rate
		err  error
	)
	if args.Asset == ids.Empty {
		rate, err = s.engine.Rate()
	} else {
		rate, err = s.engine.AssetRate(args.Asset)
	}
	reply.Rate = rate
	return err
}

// AuditReply carries the audit of the requested asset, or of every known
// asset when none is given.
type AuditReply struct {
	Audits []lending.Audit `json:"audits"`
}

// Audit recomputes pool totals from the stored records. It fails with
// lending.ErrImbalanced if any asset disagrees.
func (s *Service) Audit(_ *http.Request, args *GetRateArgs, reply *AuditReply) error {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", "audit"),
	)

	s.lock.Lock()
	defer s.lock.Unlock()

	assets := []ids.ID{args.Asset}
	if args.Asset == ids.Empty {
		var err error
		assets, err = s.engine.Assets()
		if err != nil {
			return err
		}
	}

	reply.Audits = make([]lending.Audit, 0, len(assets))
	for _, asset := range assets {
		audit, err := s.engine.Audit(asset)
		if err != nil {
			return err
		}
		if err := audit.Verify(); err != nil {
			return err
		}
		reply.Audits = append(reply.Audits, audit)
	}
	return nil
}

type GetEventArgs struct {
	Seq json.Uint64 `json:"seq"`
}

type GetEventReply struct {
	Event lending.Event `json:"event"`
}

// GetEvent returns a recently committed event. Old events are evicted.
func (s *Service) GetEvent(_ *http.Request, args *GetEventArgs, reply *GetEventReply) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	event, ok := s.engine.Event(uint64(args.Seq))
	if !ok {
		return fmt.Errorf("%w: %d", ErrEventNotFound, args.Seq)
	}
	reply.Event = event
	return nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lending

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/utils/json"
)

var (
	_ txs.Visitor = (*eventBuilder)(nil)
	_ EventSink   = (*logSink)(nil)
)

// Event describes one committed operation.
type Event struct {
	Seq      uint64        `json:"seq"`
	TxID     ids.ID        `json:"txID"`
	Kind     txs.Kind      `json:"kind"`
	Asset    ids.ID        `json:"asset"`
	Accounts []ids.ShortID `json:"accounts,omitempty"`
	Amount   json.Uint64   `json:"amount"`
	Interest json.Uint64   `json:"interest"`
	// InterestCapped marks interest that exceeded a uint64 and was reported
	// as the maximum instead.
	InterestCapped bool          `json:"interestCapped,omitempty"`
	Term           json.Uint64   `json:"term"`
	Rate           interest.Rate `json:"rate"`
	Time           json.Uint64   `json:"time"`
}

// EventSink receives one event per committed operation, in commit order.
type EventSink interface {
	Record(Event)
}

type noopSink struct{}

func (noopSink) Record(Event) {}

type logSink struct {
	log log.Logger
}

// NewLogSink returns a sink that logs every event.
func NewLogSink(logger log.Logger) EventSink {
	return &logSink{log: logger}
}

func (s *logSink) Record(e Event) {
	s.log.Info("ledger event",
		log.Uint64("seq", e.Seq),
		log.String("kind", string(e.Kind)),
		log.Stringer("asset", e.Asset),
		log.Uint64("amount", uint64(e.Amount)),
		log.Uint64("interest", uint64(e.Interest)),
	)
}

// eventBuilder fills the tx-specific fields of an Event. Borrow and repay
// events keep the loan rate set from the executor.
type eventBuilder struct {
	event *Event
}

func (b eventBuilder) DepositTx(tx *txs.DepositTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.Account}
	b.event.Amount = json.Uint64(tx.Amount)
	return nil
}

func (b eventBuilder) WithdrawTx(tx *txs.WithdrawTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.Account}
	b.event.Amount = json.Uint64(tx.Amount)
	return nil
}

func (b eventBuilder) TransferTx(tx *txs.TransferTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.From, tx.To}
	b.event.Amount = json.Uint64(tx.Amount)
	return nil
}

func (b eventBuilder) BorrowTx(tx *txs.BorrowTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.Borrower}
	b.event.Amount = json.Uint64(tx.Amount)
	b.event.Term = json.Uint64(tx.Term)
	return nil
}

func (b eventBuilder) RepayTx(tx *txs.RepayTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.Borrower}
	b.event.Amount = json.Uint64(tx.Amount)
	return nil
}

func (b eventBuilder) FreezeTx(tx *txs.FreezeTx) error {
	b.event.Asset = tx.Asset
	return nil
}

func (b eventBuilder) UnfreezeTx(tx *txs.UnfreezeTx) error {
	b.event.Asset = tx.Asset
	return nil
}

func (b eventBuilder) UpdateRateTx(tx *txs.UpdateRateTx) error {
	b.event.Rate = tx.Rate
	return nil
}

func (b eventBuilder) UpdateAssetRateTx(tx *txs.UpdateAssetRateTx) error {
	b.event.Asset = tx.Asset
	b.event.Rate = tx.Rate
	return nil
}

func (b eventBuilder) ExtendTermTx(tx *txs.ExtendTermTx) error {
	b.event.Asset = tx.Asset
	b.event.Accounts = []ids.ShortID{tx.Borrower}
	b.event.Term = json.Uint64(tx.Term)
	return nil
}

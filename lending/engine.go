// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lending is the host-facing accounting engine of the ledger.
//
// Every operation is a single atomic transition: it runs against a
// versiondb layered over the base database and is committed only when every
// check passes. A failed operation leaves no trace in the base database.
//
// The engine takes no locks. Hosts must serialize calls, or only run
// operations concurrently when their footprints do not conflict.
package lending

import (
	"errors"
	"fmt"

	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/metrics"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/txs/executor"
	"github.com/luxfi/ledger/utils/json"
	"github.com/luxfi/ledger/utils/timer/mockable"
)

const metricsNamespace = "ledger"

var errNilDatabase = errors.New("database is nil")

// Backend holds the collaborators of an Engine. Only Config and DB are
// required.
type Backend struct {
	Config  config.Config
	DB      database.Database
	Log     log.Logger
	Metrics metrics.Metrics
	Sink    EventSink
	Clock   *mockable.Clock
}

type Engine struct {
	config  config.Config
	db      database.Database
	state   *state.State
	log     log.Logger
	metrics metrics.Metrics
	sink    EventSink
	clock   *mockable.Clock

	executorBackend *executor.Backend

	nextSeq uint64
	events  *lru.Cache[uint64, Event]
}

func New(b Backend) (*Engine, error) {
	if err := b.Config.Verify(); err != nil {
		return nil, err
	}
	if b.DB == nil {
		return nil, errNilDatabase
	}
	if b.Log == nil {
		b.Log = log.NoLog{}
	}
	if b.Metrics == nil {
		m, err := metrics.New(metricsNamespace, prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		b.Metrics = m
	}
	if b.Sink == nil {
		b.Sink = noopSink{}
	}
	if b.Clock == nil {
		b.Clock = &mockable.Clock{}
	}

	e := &Engine{
		config:  b.Config,
		db:      b.DB,
		state:   state.New(b.DB),
		log:     b.Log,
		metrics: b.Metrics,
		sink:    b.Sink,
		clock:   b.Clock,
		events:  lru.NewCache[uint64, Event](b.Config.EventCacheSize),
	}
	e.executorBackend = &executor.Backend{Config: &e.config}

	e.log.Info("initialized ledger engine",
		log.String("termPolicy", string(e.config.TermPolicy)),
		log.Bool("strictFreeze", e.config.StrictFreeze),
		log.Stringer("defaultRate", e.config.DefaultRate),
		log.Bool("treasury", e.config.HasTreasury()),
	)
	return e, nil
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() config.Config {
	return e.config
}

// Receipt is the outcome of a committed operation.
type Receipt struct {
	TxID  ids.ID `json:"txID"`
	Event Event  `json:"event"`
}

// Issue applies one operation.
func (e *Engine) Issue(unsigned txs.UnsignedTx) (Receipt, error) {
	if unsigned == nil {
		return Receipt{}, txs.ErrNilTx
	}
	if err := unsigned.SyntacticVerify(); err != nil {
		e.reject(unsigned, ids.Empty, err)
		return Receipt{}, err
	}
	tx, err := txs.NewTx(unsigned)
	if err != nil {
		return Receipt{}, err
	}
	return e.execute(tx)
}

// ApplyBatch applies encoded txs in order, each as its own transition. A
// failing tx does not stop the batch; its error is reported at its index.
func (e *Engine) ApplyBatch(txBytes [][]byte) []error {
	errs := make([]error, len(txBytes))
	for i, bytes := range txBytes {
		tx, err := txs.Parse(bytes)
		if err != nil {
			errs[i] = err
			continue
		}
		if err := tx.SyntacticVerify(); err != nil {
			e.reject(tx.Unsigned, tx.ID(), err)
			errs[i] = err
			continue
		}
		_, errs[i] = e.execute(tx)
	}
	return errs
}

func (e *Engine) execute(tx *txs.Tx) (Receipt, error) {
	vdb := versiondb.New(e.db)
	txExecutor := executor.StandardTxExecutor{
		Backend: e.executorBackend,
		State:   state.New(vdb),
	}
	if err := tx.Unsigned.Visit(&txExecutor); err != nil {
		vdb.Abort()
		e.reject(tx.Unsigned, tx.ID(), err)
		return Receipt{}, err
	}
	if err := vdb.Commit(); err != nil {
		vdb.Abort()
		return Receipt{}, fmt.Errorf("failed to commit tx %s: %w", tx.ID(), err)
	}

	event := Event{
		Seq:      e.nextSeq,
		TxID:     tx.ID(),
		Kind:     txs.KindOf(tx.Unsigned),
		Interest: json.Uint64(txExecutor.Interest),
		Rate:     txExecutor.Rate,
		Time:     json.Uint64(e.clock.Unix()),

		InterestCapped: txExecutor.InterestCapped,
	}
	if err := tx.Unsigned.Visit(eventBuilder{event: &event}); err != nil {
		return Receipt{}, err
	}
	e.nextSeq++
	e.events.Put(event.Seq, event)
	e.sink.Record(event)

	if err := e.metrics.MarkAccepted(tx.Unsigned); err != nil {
		e.log.Warn("failed to record accepted tx", log.Err(err))
	}
	if event.Asset != ids.Empty {
		if pool, err := e.state.GetPool(event.Asset); err == nil {
			e.metrics.SetPool(event.Asset, pool)
		}
	}

	e.log.Debug("accepted tx",
		log.Stringer("txID", tx.ID()),
		log.String("kind", string(event.Kind)),
		log.Uint64("seq", event.Seq),
	)
	return Receipt{TxID: tx.ID(), Event: event}, nil
}

func (e *Engine) reject(unsigned txs.UnsignedTx, txID ids.ID, err error) {
	e.metrics.MarkRejected(unsigned, err)
	e.log.Debug("rejected tx",
		log.Stringer("txID", txID),
		log.Err(err),
	)
}

// Event returns a recently committed event by sequence number.
func (e *Engine) Event(seq uint64) (Event, bool) {
	return e.events.Get(seq)
}

// NextSeq returns the sequence number the next event will carry.
func (e *Engine) NextSeq() uint64 {
	return e.nextSeq
}

// CalculateInterest returns floor(principal * rate * duration).
func (*Engine) CalculateInterest(principal uint64, rate interest.Rate, duration uint64) (uint64, error) {
	return interest.Accrue(principal, rate, duration)
}

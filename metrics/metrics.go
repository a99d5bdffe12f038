// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs"
	"github.com/luxfi/ledger/txs/executor"
	"github.com/luxfi/ledger/utils/wrappers"

	safemath "github.com/luxfi/ledger/utils/math"
	utilmetric "github.com/luxfi/ledger/utils/metric"
)

const (
	reasonLabel = "reason"
	assetLabel  = "asset"

	otherReason = "other"
)

var (
	_ Metrics = (*metricsImpl)(nil)

	// reasons maps every domain failure onto a bounded label value.
	reasons = []struct {
		err   error
		label string
	}{
		{state.ErrInsufficientBalance, "insufficient_balance"},
		{state.ErrInsufficientLoan, "insufficient_loan"},
		{state.ErrNoSuchLoan, "no_such_loan"},
		{executor.ErrInsufficientLiquidity, "insufficient_liquidity"},
		{executor.ErrAssetFrozen, "asset_frozen"},
		{executor.ErrAssetUnknown, "asset_unknown"},
		{executor.ErrTermMismatch, "term_mismatch"},
		{interest.ErrInvalidRate, "invalid_rate"},
		{safemath.ErrOverflow, "overflow"},
	}
)

type Metrics interface {
	utilmetric.APIInterceptor

	// MarkAccepted counts a committed tx.
	MarkAccepted(tx txs.UnsignedTx) error
	// MarkRejected counts a tx that failed with err.
	MarkRejected(tx txs.UnsignedTx, err error)
	// SetPool reports the totals of asset after a commit.
	SetPool(asset ids.ID, pool state.Pool)
}

type metricsImpl struct {
	txMetrics *txMetrics

	numRejected                   *prometheus.CounterVec
	totalDeposited, totalBorrowed *prometheus.GaugeVec

	utilmetric.APIInterceptor
}

func New(namespace string, registerer prometheus.Registerer) (Metrics, error) {
	txMetrics, err := newTxMetrics(namespace, registerer)
	errs := wrappers.Errs{Err: err}

	m := &metricsImpl{
		txMetrics: txMetrics,
		numRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_rejected",
				Help:      "number of transactions rejected",
			},
			[]string{txLabel, reasonLabel},
		),
		totalDeposited: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_deposited",
				Help:      "total deposits of an asset",
			},
			[]string{assetLabel},
		),
		totalBorrowed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_borrowed",
				Help:      "total outstanding principal of an asset",
			},
			[]string{assetLabel},
		),
	}

	apiRequestMetric, err := utilmetric.NewAPIInterceptor(namespace, registerer)
	m.APIInterceptor = apiRequestMetric
	errs.Add(
		err,
		registerer.Register(m.numRejected),
		registerer.Register(m.totalDeposited),
		registerer.Register(m.totalBorrowed),
	)
	return m, errs.Err
}

func (m *metricsImpl) MarkAccepted(tx txs.UnsignedTx) error {
	return tx.Visit(m.txMetrics)
}

func (m *metricsImpl) MarkRejected(tx txs.UnsignedTx, err error) {
	m.numRejected.With(prometheus.Labels{
		txLabel:     string(txs.KindOf(tx)),
		reasonLabel: Reason(err),
	}).Inc()
}

func (m *metricsImpl) SetPool(asset ids.ID, pool state.Pool) {
	labels := prometheus.Labels{assetLabel: asset.String()}
	m.totalDeposited.With(labels).Set(float64(pool.TotalDeposited))
	m.totalBorrowed.With(labels).Set(float64(pool.TotalBorrowed))
}

// Reason returns the label value describing err.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return otherReason
}

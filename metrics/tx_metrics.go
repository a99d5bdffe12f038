// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ledger/txs"
)

const txLabel = "tx"

var (
	_ txs.Visitor = (*txMetrics)(nil)

	txLabels = []string{txLabel}
)

type txMetrics struct {
	numTxs *prometheus.CounterVec
}

func newTxMetrics(namespace string, registerer prometheus.Registerer) (*txMetrics, error) {
	m := &txMetrics{
		numTxs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_accepted",
				Help:      "number of transactions accepted",
			},
			txLabels,
		),
	}
	return m, registerer.Register(m.numTxs)
}

func (m *txMetrics) inc(kind txs.Kind) {
	m.numTxs.With(prometheus.Labels{
		txLabel: string(kind),
	}).Inc()
}

func (m *txMetrics) DepositTx(*txs.DepositTx) error {
	m.inc(txs.DepositKind)
	return nil
}

func (m *txMetrics) WithdrawTx(*txs.WithdrawTx) error {
	m.inc(txs.WithdrawKind)
	return nil
}

func (m *txMetrics) TransferTx(*txs.TransferTx) error {
	m.inc(txs.TransferKind)
	return nil
}

func (m *txMetrics) BorrowTx(*txs.BorrowTx) error {
	m.inc(txs.BorrowKind)
	return nil
}

func (m *txMetrics) RepayTx(*txs.RepayTx) error {
	m.inc(txs.RepayKind)
	return nil
}

func (m *txMetrics) FreezeTx(*txs.FreezeTx) error {
	m.inc(txs.FreezeKind)
	return nil
}

func (m *txMetrics) UnfreezeTx(*txs.UnfreezeTx) error {
	m.inc(txs.UnfreezeKind)
	return nil
}

func (m *txMetrics) UpdateRateTx(*txs.UpdateRateTx) error {
	m.inc(txs.UpdateRateKind)
	return nil
}

func (m *txMetrics) UpdateAssetRateTx(*txs.UpdateAssetRateTx) error {
	m.inc(txs.UpdateAssetRateKind)
	return nil
}

func (m *txMetrics) ExtendTermTx(*txs.ExtendTermTx) error {
	m.inc(txs.ExtendTermKind)
	return nil
}

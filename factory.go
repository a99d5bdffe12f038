// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger builds multi-asset deposit and loan ledgers.
package ledger

import (
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/lending"
	"github.com/luxfi/ledger/metrics"
)

const MetricsNamespace = "ledger"

// Factory creates ledger engines. A nil DB selects an in-memory database.
// Metrics, when nil, are registered with Registerer, or left unexported if
// that is nil too.
type Factory struct {
	config.Config
	DB         database.Database
	Metrics    metrics.Metrics
	Registerer prometheus.Registerer
	Sink       lending.EventSink
}

func (f *Factory) New(logger log.Logger) (interface{}, error) {
	return f.NewEngine(logger)
}

func (f *Factory) NewEngine(logger log.Logger) (*lending.Engine, error) {
	db := f.DB
	if db == nil {
		db = memdb.New()
	}
	m := f.Metrics
	if m == nil {
		registerer := f.Registerer
		if registerer == nil {
			registerer = prometheus.NewRegistry()
		}
		var err error
		m, err = metrics.New(MetricsNamespace, registerer)
		if err != nil {
			return nil, err
		}
	}
	return lending.New(lending.Backend{
		Config:  f.Config,
		DB:      db,
		Log:     logger,
		Metrics: m,
		Sink:    f.Sink,
	})
}

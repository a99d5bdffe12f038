// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledger/config"
	"github.com/luxfi/ledger/lending"
)

func TestFactory(t *testing.T) {
	require := require.New(t)

	registry := prometheus.NewRegistry()
	f := &Factory{
		Config:     config.DefaultConfig(),
		Registerer: registry,
	}
	intf, err := f.New(log.NoLog{})
	require.NoError(err)
	engine, ok := intf.(*lending.Engine)
	require.True(ok)

	asset := ids.GenerateTestID()
	require.NoError(engine.Deposit(asset, ids.GenerateTestShortID(), 10))

	count, err := testutil.GatherAndCount(registry, MetricsNamespace+"_txs_accepted")
	require.NoError(err)
	require.Equal(1, count)

	// Registering the same metrics twice fails.
	_, err = f.NewEngine(log.NoLog{})
	require.Error(err)
}

func TestFactoryInvalidConfig(t *testing.T) {
	f := &Factory{Config: config.DefaultConfig()}
	f.TermPolicy = "sometimes"
	_, err := f.NewEngine(log.NoLog{})
	require.ErrorIs(t, err, config.ErrUnknownTermPolicy)
}

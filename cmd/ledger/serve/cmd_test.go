// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"net"
	"net/http"
	"testing"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewServerClosesListenerOnRouteError(t *testing.T) {
	require := require.New(t)

	config, err := parse(t)
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	handler := http.NotFoundHandler()
	_, err = newServer(log.NoLog{}, listener, config, prometheus.NewRegistry(),
		route{base: "ledger", handler: handler},
		route{base: "ledger", handler: handler},
	)
	require.Error(err)

	_, err = listener.Accept()
	require.ErrorIs(err, net.ErrClosed)
}

func TestNewServerRoutes(t *testing.T) {
	require := require.New(t)

	config, err := parse(t)
	require.NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	srv, err := newServer(log.NoLog{}, listener, config, prometheus.NewRegistry(),
		route{base: "ledger", handler: http.NotFoundHandler()},
		route{base: metricsEndpoint, handler: http.NotFoundHandler()},
	)
	require.NoError(err)
	require.NoError(listener.Close())
	require.NoError(srv.Shutdown())
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/luxfi/ledger"
	"github.com/luxfi/ledger/api"
	"github.com/luxfi/ledger/api/server"
	"github.com/luxfi/ledger/lending"
	"github.com/luxfi/ledger/metrics"
)

const metricsEndpoint = "metrics"

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves a ledger over JSON-RPC",
		RunE:  serveFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	logger := log.NewLogger("ledger")

	db, err := openDB(config.DBDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", log.Err(err))
		}
	}()

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	m, err := metrics.New(ledger.MetricsNamespace, registry)
	if err != nil {
		return err
	}

	factory := &ledger.Factory{
		Config:  config.Ledger,
		DB:      db,
		Metrics: m,
		Sink:    lending.NewLogSink(logger),
	}
	engine, err := factory.NewEngine(logger)
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(api.NewService(engine, logger), m)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(config.HTTPHost, strconv.Itoa(int(config.HTTPPort))))
	if err != nil {
		return err
	}

	srv, err := newServer(logger, listener, config, registry,
		route{base: api.ServiceName, handler: handler},
		route{base: metricsEndpoint, handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})},
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatchErr := make(chan error, 1)
	go func() {
		dispatchErr <- srv.Dispatch()
	}()

	logger.Info("serving ledger",
		log.Stringer("address", listener.Addr()),
		log.String("dbDir", config.DBDir),
	)

	select {
	case err := <-dispatchErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownErr := srv.Shutdown()
	if err := <-dispatchErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}

type route struct {
	base    string
	handler http.Handler
}

// newServer serves routes on listener. The listener is closed if the server
// cannot be set up.
func newServer(
	logger log.Logger,
	listener net.Listener,
	config *Config,
	registerer prometheus.Registerer,
	routes ...route,
) (server.Server, error) {
	srv, err := server.New(
		logger,
		listener,
		config.HTTPAllowedOrigins,
		config.HTTPShutdownTimeout,
		registerer,
		server.HTTPConfig{
			ReadTimeout:       config.HTTPReadTimeout,
			ReadHeaderTimeout: config.HTTPReadTimeout,
			WriteTimeout:      config.HTTPWriteTimeout,
		},
		config.HTTPAllowedHosts,
	)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	for _, r := range routes {
		if err := srv.AddRoute(r.handler, r.base, ""); err != nil {
			_ = listener.Close()
			return nil, err
		}
	}
	return srv, nil
}

func openDB(dir string) (database.Database, error) {
	if dir == "" {
		return memdb.New(), nil
	}
	return badgerdb.New(
		dir,
		nil, // configBytes - use default
		"",  // namespace
		nil, // metrics
	)
}

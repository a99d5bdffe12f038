// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64
	wildcardHost         = "*"
)

var (
	_ Server = (*server)(nil)

	errAlreadyReserved = errors.New("route is either already aliased or already maps to a handler")
)

type PathAdder interface {
	// AddRoute registers a route to a handler.
	AddRoute(handler http.Handler, base, endpoint string) error

	// AddAliases registers aliases to the server
	AddAliases(endpoint string, aliases ...string) error
}

// Server maintains the HTTP router
type Server interface {
	PathAdder
	// Dispatch starts the API server
	Dispatch() error
	// Shutdown this server
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

type server struct {
	// log this server writes to
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	// lock guards the router and the reserved routes. Requests hold it for
	// reading.
	lock     sync.RWMutex
	router   *mux.Router
	reserved set.Set[string]
	handlers map[string]http.Handler

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	log log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer prometheus.Registerer,
	httpConfig HTTPConfig,
	allowedHosts []string,
) (Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	s := &server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          mux.NewRouter(),
		reserved:        set.NewSet[string](4),
		handlers:        make(map[string]http.Handler),
		listener:        listener,
	}

	handler := wrapHandler(http.HandlerFunc(s.serveHTTP), allowedOrigins, allowedHosts)
	s.srv = &http.Server{
		Handler: h2c.NewHandler(
			handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	log.Info("API created with allowed origins: " + strings.Join(allowedOrigins, ","))
	return s, nil
}

func (s *server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	s.router.ServeHTTP(w, r)
}

func (s *server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	url := fmt.Sprintf("%s/%s", baseURL, base)
	s.log.Info("adding route",
		log.String("url", url),
		log.String("endpoint", endpoint),
	)
	return s.addRoute(url+endpoint, s.metrics.wrapHandler(base, handler))
}

func (s *server) addRoute(route string, handler http.Handler) error {
	if s.reserved.Contains(route) {
		return fmt.Errorf("%w: %s", errAlreadyReserved, route)
	}
	s.reserved.Add(route)
	s.handlers[route] = handler
	s.router.Handle(route, handler)
	return nil
}

// AddAliases serves every route registered under endpoint at each alias as
// well.
func (s *server) AddAliases(endpoint string, aliases ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	prefix := fmt.Sprintf("%s/%s", baseURL, endpoint)
	for _, alias := range aliases {
		aliasPrefix := fmt.Sprintf("%s/%s", baseURL, alias)
		if s.reserved.Contains(aliasPrefix) {
			return fmt.Errorf("%w: %s", errAlreadyReserved, aliasPrefix)
		}
	}

	matched := make(map[string]http.Handler)
	for route, handler := range s.handlers {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			matched[strings.TrimPrefix(route, prefix)] = handler
		}
	}
	for suffix, handler := range matched {
		for _, alias := range aliases {
			if err := s.addRoute(fmt.Sprintf("%s/%s%s", baseURL, alias, suffix), handler); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(
	handler http.Handler,
	allowedOrigins []string,
	allowedHosts []string,
) http.Handler {
	h := filterInvalidHosts(handler, allowedHosts)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}

// filterInvalidHosts rejects requests whose Host header is not allowed. An
// empty list or a "*" entry allows every host.
func filterInvalidHosts(handler http.Handler, allowedHosts []string) http.Handler {
	if len(allowedHosts) == 0 {
		return handler
	}
	allowed := set.NewSet[string](len(allowedHosts))
	for _, host := range allowedHosts {
		if host == wildcardHost {
			return handler
		}
		allowed.Add(strings.ToLower(host))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !allowed.Contains(strings.ToLower(host)) {
			http.Error(w, "invalid host specified", http.StatusForbidden)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

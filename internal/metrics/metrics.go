// Package metrics exposes a node's Prometheus registry over HTTP: a
// chi-routed /metrics endpoint wrapped in an access-log middleware, the
// same shape the rest of this codebase's HTTP surfaces use.
package metrics

import (
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/xerrors"

	"github.com/drand/bftseq/log"
)

// NewRegistry returns a fresh registry pre-populated with the standard Go
// runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Serve starts an HTTP server on bindAddr exposing /metrics for registry
// and returns its listener, so the caller can close it on shutdown. It is
// a no-op (nil, nil) when bindAddr is empty, since metrics are optional.
func Serve(bindAddr string, registry *prometheus.Registry, logger log.Logger) (net.Listener, error) {
	if bindAddr == "" {
		return nil, nil
	}

	mux := chi.NewMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	lis, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, xerrors.Errorf("metrics: listen on %s: %w", bindAddr, err)
	}

	logged := handlers.LoggingHandler(os.Stderr, mux)
	server := &http.Server{Handler: logged}
	go func() {
		if err := server.Serve(lis); err != nil && err != http.ErrServerClosed {
			logger.Named("metrics").Warn("msg=", "metrics server stopped", "err=", err)
		}
	}()
	return lis, nil
}

// Observability middleware and the HTTP side server for metrics, probes and profiling
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/nainya/copyforge/internal/logger"
	"github.com/nainya/copyforge/internal/metrics"
)

// GrpcMetricsInterceptor records every unary call in metrics and logs it on a
// per-method logger
func GrpcMetricsInterceptor(m *metrics.Metrics, log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		m.GrpcRequestsInFlight.Inc()
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		m.GrpcRequestsInFlight.Dec()

		code := status.Code(err).String()
		m.RecordGrpcRequest(info.FullMethod, code, elapsed)
		log.GrpcLogger(info.FullMethod).LogGrpcRequest(code, elapsed, err)
		return resp, err
	}
}

// Check probes one dependency the service needs to answer requests
type Check func(ctx context.Context) error

const checkTimeout = 2 * time.Second

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ObservabilityHandler serves /metrics from the private registry, /health
// (process liveness), /ready (every check passes) and pprof.
func ObservabilityHandler(m *metrics.Metrics, checks map[string]Check) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, http.StatusOK, probeReport{Status: "alive"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		rep := probeReport{Status: "ready", Checks: map[string]string{}}
		code := http.StatusOK
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				rep.Checks[name] = err.Error()
				rep.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			rep.Checks[name] = "ok"
		}
		writeProbe(w, code, rep)
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func writeProbe(w http.ResponseWriter, code int, rep probeReport) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(rep)
}

// ObservabilityServer runs ObservabilityHandler on its own port
type ObservabilityServer struct {
	srv *http.Server
	log *logger.Logger
}

// NewObservabilityServer creates the side server. Nothing listens until Start.
func NewObservabilityServer(port int, m *metrics.Metrics, checks map[string]Check, log *logger.Logger) *ObservabilityServer {
	return &ObservabilityServer{
		srv: &http.Server{
			Addr:              net.JoinHostPort("", fmt.Sprint(port)),
			Handler:           ObservabilityHandler(m, checks),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		log: log,
	}
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (o *ObservabilityServer) Start() error {
	o.log.Info("observability listening").Str("addr", o.srv.Addr).Send()
	err := o.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("observability server: %w", err)
}

// Shutdown drains the side server
func (o *ObservabilityServer) Shutdown(ctx context.Context) error {
	return o.srv.Shutdown(ctx)
}

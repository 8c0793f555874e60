package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nainya/copyforge/internal/config"
	"github.com/nainya/copyforge/internal/logger"
	"github.com/nainya/copyforge/internal/metrics"
	"github.com/nainya/copyforge/internal/server"
	"github.com/nainya/copyforge/internal/storage"
	"github.com/nainya/copyforge/internal/studio"
	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/export"
	"github.com/nainya/copyforge/pkg/generator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the studio gRPC service and the observability endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Server.GrpcPort = servePort
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "gRPC port (overrides server.grpc_port)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.GetGlobalLogger()
	m := metrics.NewMetrics()

	log.LogServerStart(cfg.Server.GrpcPort, cfg.Storage.Path)

	var store *storage.Store
	if cfg.Storage.Path != "" {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		store, err = storage.New(db, log.DbLogger("store"), m)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	gen, err := newGenerator(ctx, cfg.Generator)
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, cfg.Export)
	if err != nil {
		return err
	}
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}

	var studios []*studio.Studio
	for _, kind := range content.Tools() {
		st, err := studio.New(kind, studio.Options{
			Generator: gen,
			Store:     store,
			Fetcher:   export.NewHTTPFetcher(cfg.Export.FetchTimeout),
			Sink:      sink,
			Export:    export.Config{Width: cfg.Export.Width, StepDelay: cfg.Export.StepDelay},
			Logger:    log,
			Metrics:   m,
		})
		if err != nil {
			return err
		}
		if err := st.Restore(ctx); err != nil {
			return err
		}
		studios = append(studios, st)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GrpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.GrpcMetricsInterceptor(m, log)),
		grpc.MaxRecvMsgSize(16*1024*1024),
		grpc.MaxSendMsgSize(16*1024*1024),
	)
	server.Register(grpcServer, server.NewServer(studios...))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	checks := map[string]server.Check{}
	if store != nil {
		checks["storage"] = store.Ping
	}
	obs := server.NewObservabilityServer(cfg.Server.MetricsPort, m, checks, log)
	go func() {
		if err := obs.Start(); err != nil {
			log.Error("Observability server stopped").Err(err).Send()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.LogServerShutdown()
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
	}()

	log.LogServerReady(cfg.Server.GrpcPort)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func newGenerator(ctx context.Context, cfg config.GeneratorConfig) (generator.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return generator.NewGemini(ctx, cfg.APIKey, cfg.Model)
	case "static", "":
		return generator.Template{}, nil
	}
	return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
}

func newSink(ctx context.Context, cfg config.ExportConfig) (export.Sink, error) {
	if cfg.Bucket != "" {
		return export.NewGCSSink(ctx, cfg.Bucket, cfg.Prefix)
	}
	return export.DirSink{Dir: cfg.OutputDir}, nil
}

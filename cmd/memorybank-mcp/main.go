// Memorybank-mcp serves a memory bank to MCP clients over stdio.
//
// Usage:
//
//	memorybank-mcp --root ./memory-bank
//
//	# Expose Prometheus metrics alongside the stdio transport
//	memorybank-mcp --metrics-addr :9464
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	mcpadapter "memorybank/internal/adapters/mcp"
	"memorybank/internal/adapters/metrics"
	"memorybank/internal/bootstrap"
	"memorybank/internal/config"
	"memorybank/internal/logging"
)

// Set via ldflags during build
var version = "dev"

func main() {
	rootFlag := flag.String("root", "", "memory bank root (default $MEMORYBANK_ROOT or "+config.DefaultRoot+")")
	configFlag := flag.String("config", "", "YAML config file")
	metricsFlag := flag.String("metrics-addr", "", "address for the Prometheus /metrics endpoint")
	watchFlag := flag.Bool("watch", true, "invalidate cached content when files change on disk")
	flag.Parse()

	if err := run(*configFlag, *rootFlag, *metricsFlag, *watchFlag); err != nil {
		fmt.Fprintf(os.Stderr, "memorybank-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, root, metricsAddr string, watch bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if root != "" {
		cfg.Root = config.ExpandHome(root)
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	// stdout carries the protocol, so logs always go to stderr
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	created, err := rt.Orchestrator.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load memory bank: %w", err)
	}
	logger.Info("memory bank loaded",
		zap.String("root", rt.Orchestrator.Root()),
		zap.Int("created", len(created)),
	)

	if err := rt.Start(ctx, watch); err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		stop, err := serveMetrics(rt, cfg.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	s := mcpadapter.NewServer("memorybank-mcp", version, rt.Orchestrator, mcpadapter.Stats{
		Cache:  rt.Cache,
		Reader: rt.Reader,
	})
	return server.ServeStdio(s)
}

func serveMetrics(rt *bootstrap.Runtime, addr string, logger *zap.Logger) (func(), error) {
	handler, err := metrics.Handler(metrics.NewCollector(rt.Cache, rt.Reader, rt.Orchestrator))
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

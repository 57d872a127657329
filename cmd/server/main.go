package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codex-ledger/internal/app"
	"codex-ledger/internal/config"
	"codex-ledger/internal/logger"
	"codex-ledger/pkg/tracing"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "codex-ledger/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	initLoggerFunc         = logger.Init
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	buildAppFunc           = app.Build
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           Codex Ledger API
// @version         1.0
// @description     Solana market oracle messages committed to a hash-verified ledger.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	if err := initLoggerFunc(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		exitFunc(1)
		return
	}
	defer logger.Sync()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{Enabled: cfg.TracingEnabled, Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		logger.Error("failed to initialize tracer", zap.Error(err))
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	a, err := buildAppFunc(ctx, cfg, tracer)
	if err != nil {
		logger.Error("failed to build app", zap.Error(err))
		exitFunc(1)
		return
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("codex ledger listening", zap.String("addr", srv.Addr), zap.String("ledger", cfg.LedgerBackend), zap.String("cache", cfg.CacheBackend))
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", zap.Error(err))
			exitFunc(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exiting")
}

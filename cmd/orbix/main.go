package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orbix_wallet/internal/app/bootstrap"
	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/infrastructure/configloader"
	"orbix_wallet/internal/infrastructure/restapi"
	"orbix_wallet/internal/pkg/logger"
	"orbix_wallet/internal/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Fatal("Orbix exited with error", "error", err)
	}
}

func run() error {
	cfgPath := configloader.Path()
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logger.Sync()
	logger.Info("Configuration loaded", "path", cfgPath)

	metrics.MustRegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise services: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close application resources", "error", err)
		}
	}()

	if conn, err := app.Wallet.RestoreSession(ctx); err != nil {
		logger.Warn("Failed to restore wallet session", "error", err)
	} else if conn != nil {
		logger.Info("Wallet session restored", "address", conn.Address)
	}

	refresher := service.NewBalanceRefresher(app.Wallet, logger.Named("BalanceRefresher"), cfg.BalanceRefresh.Schedule)
	if err := refresher.Start(); err != nil {
		return err
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewHandler(app.Wallet, app.Payments, app.Bulk, app.Refunds, app.Fees, app.Business,
		cfg.ReceiptService.MaxFileSizeBytes)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		AllowOrigins: cfg.Server.AllowOrigins,
		Logger:       zapLogger.Named("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		refresher.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zapLogger.Info("Server exiting")
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/config"
	"github.com/gatewarden-labs/gatewarden/internal/db"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/clock"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/keys"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/qrtoken"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/service"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store/sqlite"
	"github.com/gatewarden-labs/gatewarden/internal/httpapi"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.NewJSON(os.Stdout)
	ctx := context.Background()

	if cfg.MasterKeyHex == "" {
		logger.Error(ctx, "GATEWARDEN_MASTER_KEY is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error(ctx, "GATEWARDEN_JWT_SECRET is required")
		os.Exit(1)
	}

	provider, err := keys.NewProvider(cfg.MasterKeyHex)
	if err != nil {
		logger.Error(ctx, "bad master key", "err", err)
		os.Exit(1)
	}
	cipher, err := qrtoken.NewCipher(provider.QRKey())
	if err != nil {
		logger.Error(ctx, "qr cipher init failed", "err", err)
		os.Exit(1)
	}

	// Storage
	sqlDB, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Error(ctx, "open db failed", "err", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, sqlDB, db.SeedDevOptions{Devices: cfg.KnownDevices}); err != nil {
			logger.Error(ctx, "seed failed", "err", err)
			os.Exit(1)
		}
	}

	writer := db.NewWriter(sqlDB)
	defer writer.Close()

	creds := sqlite.NewCredentialStore(sqlDB, writer)
	devices := sqlite.NewDeviceStore(sqlDB, writer)
	events := sqlite.NewAccessEventStore(sqlDB, writer)

	// Services
	clk := clock.System{}
	registry := service.NewDeviceRegistry(devices)
	issuer := service.NewPasscodeIssuer(creds, cipher, clk)
	validator := service.NewAccessValidator(service.ValidatorConfig{
		Credentials:   creds,
		Nonces:        creds,
		Registry:      registry,
		Events:        events,
		Cipher:        cipher,
		Clock:         clk,
		WindowSecret:  provider.WindowSecret,
		WindowMinutes: cfg.WindowMinutes,
		Logger:        logger,
	})

	pruner := service.NewNoncePruner(creds, service.NoncePrunerConfig{
		RetentionDays: cfg.NonceRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      logger,
		Addr:        cfg.HTTPAddr,
		Validator:   validator,
		Issuer:      issuer,
		Credentials: creds,
		Clock:       clk,
		JWTSecret:   []byte(cfg.JWTSecret),
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pruner.Start(runCtx)
	defer pruner.Stop()

	go func() {
		logger.Info(runCtx, "listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.Start(); err != nil {
			logger.Error(runCtx, "server error", "err", err)
			stop()
		}
	}()

	<-runCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

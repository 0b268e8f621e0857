package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/auth"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	apphttp "finanzas/internal/http"
	"finanzas/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Change notifications are optional; without a broker the worker
	// falls back to sweeping unexported rows.
	var publisher ledger.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var (
		identity auth.Identity
		gate     *auth.SupabaseGate
	)
	switch cfg.AuthMode {
	case config.AuthSupabase:
		var err error
		gate, err = auth.NewSupabaseGate(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Error("Failed to initialize Supabase auth", "error", err)
			os.Exit(1)
		}
		identity = gate
		logger.Info("Supabase auth initialized", "url", cfg.SupabaseURL)
	default:
		identity = auth.NewStaticGate(cfg.StaticUserID)
		logger.Info("Static auth initialized", "user_id", cfg.StaticUserID)
	}

	svc := ledger.NewService(repo, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, svc, identity, gate)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting finanzas server", "port", cfg.Port, "auth_mode", cfg.AuthMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	slog.Info("Server stopped gracefully")
}

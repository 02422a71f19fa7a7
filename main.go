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

	"go.uber.org/zap"

	"pharmacy/m/internal/alerts"
	"pharmacy/m/internal/api"
	"pharmacy/m/internal/billing"
	"pharmacy/m/internal/config"
	"pharmacy/m/internal/database"
	"pharmacy/m/internal/inventory"
	"pharmacy/m/internal/logger"
	"pharmacy/m/internal/metrics"
	"pharmacy/m/internal/migrations"
	"pharmacy/m/internal/notify"
	"pharmacy/m/internal/purchasing"
	"pharmacy/m/internal/seed"
	"pharmacy/m/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return err
	}
	log.Info("Database ready", zap.String("driver", cfg.DatabaseDriver))

	s := store.New(db)
	if _, err := seed.EnsureAdmin(ctx, s, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		return err
	}
	if _, err := seed.LoadMedicinesFile(ctx, s, cfg.SeedCSV, log); err != nil {
		log.Warn("Medicine seed skipped", zap.Error(err))
	}

	m := metrics.New()

	var sender notify.Sender = notify.LogSender{Log: log}
	var recipients []string
	if cfg.MailEnabled() {
		sender = notify.NewSMTPSender(cfg.Mail)
		recipients = []string{cfg.Mail.AlertTo}
	} else {
		log.Warn("SMTP not configured, alert mails will only be logged")
	}
	mailer := notify.NewMailer(sender, cfg.Mail.From, recipients...)
	dispatcher := notify.NewDispatcher(mailer, notify.Options{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		MaxAttempts: cfg.Notify.MaxAttempts,
		RetryDelay:  cfg.Notify.RetryDelay,
	}, m, log)
	dispatcher.Start()

	stock := inventory.NewStock(dispatcher, m, log)
	alertService := alerts.NewService(s, dispatcher, mailer, log)

	digest, err := alertService.Schedule(cfg.Notify.DigestSchedule)
	if err != nil {
		return err
	}
	digest.Start()
	log.Info("Alert digest scheduled", zap.String("schedule", cfg.Notify.DigestSchedule))

	handler := api.New(api.Deps{
		Store:          s,
		Engine:         billing.NewEngine(s, stock, m, log),
		Stock:          stock,
		Purchasing:     purchasing.NewService(s, stock, log),
		Alerts:         alertService,
		Metrics:        m,
		Log:            log,
		Secret:         cfg.Secret,
		TokenTTL:       cfg.TokenTTL,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Pharmacy server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-digest.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn("Notification queue not drained", zap.Error(err))
	}
	log.Info("Server stopped cleanly")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/api"
	"github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/mail"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/report"
	"github.com/thinkbeforeclick/platform/internal/reports"
	"github.com/thinkbeforeclick/platform/internal/simulation"
	"github.com/thinkbeforeclick/platform/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		logger.Error("initializing store", "error", err)
		os.Exit(1)
	}

	idp, err := identity.NewCognitoProvider(ctx, cfg.Identity)
	if err != nil {
		logger.Error("initializing identity provider", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.NewSESSender(ctx, cfg.Mail)
	if err != nil {
		logger.Error("initializing mail sender", "error", err)
		os.Exit(1)
	}

	artifacts, err := reports.NewS3Store(ctx, cfg.Reports)
	if err != nil {
		logger.Error("initializing report store", "error", err)
		os.Exit(1)
	}

	accounts := account.NewService(st, idp)
	sim := simulation.NewService(st, mailer, cfg.Tracking)
	rep := report.NewService(st)

	handlers := api.NewHandlers(accounts, sim, rep, artifacts)
	router := api.SetupRoutes(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

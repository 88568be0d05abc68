package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/mail"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/simulation"
	"github.com/thinkbeforeclick/platform/internal/store"
	"github.com/thinkbeforeclick/platform/internal/tracking"
)

// The tracking edge runs separately from the API server so the delivery
// domain can stay tiny and public while the API sits behind the gateway.
func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	port := os.Getenv("TRACKING_PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		logger.Error("initializing store", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.NewSESSender(ctx, cfg.Mail)
	if err != nil {
		logger.Error("initializing mail sender", "error", err)
		os.Exit(1)
	}

	svc := simulation.NewService(st, mailer, cfg.Tracking)
	handler := tracking.NewHandler(svc)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("tracking edge listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down tracking edge")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

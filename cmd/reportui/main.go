package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reports-ui/internal/backend"
	"reports-ui/internal/config"
	"reports-ui/internal/logger"
)

func main() {
	cfg := config.MustConfig()

	log := logger.Setup(cfg.Env, os.Stdout, "errors.log")

	client := backend.New(cfg.BaseURL, cfg.Backend.Timeout)

	log.Info("server started",
		slog.String("address", cfg.Address),
		slog.String("backend", client.BaseURL()),
	)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, client),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.Backend.Timeout + cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

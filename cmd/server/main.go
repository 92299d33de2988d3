// Package main is the entry point for the shopledger API server.
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

	"github.com/joho/godotenv"

	"shopledger/internal/app"
	"shopledger/internal/config"
	v1 "shopledger/internal/infrastructure/http/v1"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting shopledger server", "storage", cfg.Storage, "timezone", cfg.ShopTimezone)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to start", "error", err)
	}
	defer rt.Close()

	checks := make(map[string]handlers.Pinger, len(rt.Checks))
	for name, p := range rt.Checks {
		checks[name] = p
	}

	routerCfg := v1.RouterConfig{
		Services: rt.Services,
		Logger:   log,
		Checks:   checks,
		Debug:    cfg.IsDevelopment(),
	}
	if rt.Media != nil {
		routerCfg.MediaDir = rt.Media.Root()
		routerCfg.MediaURL = cfg.MediaBaseURL
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      v1.NewHandler(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

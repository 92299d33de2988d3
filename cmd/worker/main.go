// Package main is the entry point for the shopledger background worker.
// It relays failed rollup jobs, marks overdue debts and refreshes today's
// dashboard snapshot for every owner.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"shopledger/internal/app"
	"shopledger/internal/config"
	"shopledger/pkg/logger"
)

func main() {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting shopledger worker")

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to start", "error", err)
	}
	defer rt.Close()

	worker := NewWorker(WorkerDeps{
		Services: rt.Services,
		Queue:    rt.Backend.Queue,
		Purge:    rt.PurgePublished,
	}, cfg.Worker, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

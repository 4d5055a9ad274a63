package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldtrak/timesheet-agent/internal/config"
	"fieldtrak/timesheet-agent/internal/database"
	"fieldtrak/timesheet-agent/internal/handler"
	"fieldtrak/timesheet-agent/internal/logger"
	"fieldtrak/timesheet-agent/internal/position"
	"fieldtrak/timesheet-agent/internal/repository"
	"fieldtrak/timesheet-agent/internal/router"
	"fieldtrak/timesheet-agent/internal/server"
	"fieldtrak/timesheet-agent/internal/service"
	"fieldtrak/timesheet-agent/internal/session"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting timesheet agent",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
		zap.String("worker_id", cfg.Worker.ID),
	)

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Initialize stores
	timesheetRepo := repository.NewTimesheetRepository(db.DB)
	breadcrumbRepo := repository.NewBreadcrumbRepository(db.DB)
	sessionCache := session.NewCache(db.DB, log.Logger)

	// Initialize position bridge; the companion client pushes fixes into it
	positionSource := position.NewBridgeSource(cfg.Position.FixTTL, log.Logger)
	positionServer := server.NewPositionServer(positionSource, log.Logger)

	// Initialize shift controller for the configured worker
	shiftService := service.NewShiftService(
		timesheetRepo,
		breadcrumbRepo,
		sessionCache,
		positionSource,
		cfg.Worker.ID,
		cfg.Worker.TeamID,
		time.Duration(cfg.Shift.TickInterval)*time.Second,
		time.Duration(cfg.Shift.BreadcrumbInterval)*time.Second,
		nil, // Display reads the status endpoint; no tick callback needed
		log.Logger,
	)

	// Initialize review controller
	reviewService := service.NewReviewService(timesheetRepo, cfg.Worker.TeamID, log.Logger)

	// Reconcile any shift left active by a previous run. The session cache
	// only hints; the store decides.
	if err := shiftService.Resume(); err != nil {
		log.Fatal("Failed to reconcile shift state", zap.Error(err))
	}

	// Initialize HTTP surface
	var httpServer *http.Server
	if cfg.Server.Enabled {
		shiftHandler := handler.NewShiftHandler(shiftService, log.Logger)
		reviewHandler := handler.NewReviewHandler(reviewService, log.Logger)

		addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
		httpServer = &http.Server{
			Addr:         addr,
			Handler:      router.New(shiftHandler, reviewHandler, positionServer, log.Logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info("Starting HTTP server", zap.String("address", addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error", zap.Error(err))
			}
		}()
	} else {
		log.Info("HTTP server disabled in configuration")
	}

	log.Info("Timesheet agent started successfully",
		zap.String("worker_id", cfg.Worker.ID),
		zap.Int("breadcrumb_interval_seconds", cfg.Shift.BreadcrumbInterval),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	log.Info("Shutting down timesheet agent...")

	// Stop HTTP server first so no new actions arrive mid-teardown
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warn("HTTP server shutdown error", zap.Error(err))
		} else {
			log.Info("HTTP server stopped")
		}
	}

	// Stop the shift controller. An active shift stays active at the store;
	// the next run's reconciliation picks it up.
	done := make(chan struct{})
	go func() {
		shiftService.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Shift controller stopped successfully")
	case <-time.After(3 * time.Second):
		log.Warn("Shutdown timeout reached, forcing immediate exit")
		os.Exit(1)
	}

	log.Info("Timesheet agent stopped")
}

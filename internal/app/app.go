package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mail-extractor-go/internal/config"
	"mail-extractor-go/internal/db"
	"mail-extractor-go/internal/fetcher"
	"mail-extractor-go/internal/handlers"
	"mail-extractor-go/internal/metrics"
	"mail-extractor-go/internal/replier"
	"mail-extractor-go/internal/scheduler"
	"mail-extractor-go/internal/server"
	"mail-extractor-go/internal/store"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Mail Extractor Bot")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()

	var f fetcher.EmailFetcher
	if cfg.Gmail.UseIMAP {
		f, err = fetcher.NewIMAPFetcher(&cfg.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create IMAP fetcher: %w", err)
		}
		logrus.Info("Using IMAP for email fetching")
	} else {
		f, err = fetcher.NewGmailAPIFetcher(&cfg.Gmail)
		if err != nil {
			return fmt.Errorf("failed to create Gmail API fetcher: %w", err)
		}
		logrus.Info("Using Gmail API for email fetching")
	}

	st := store.NewStore(dbConn)

	rep, err := replier.NewReplier(&cfg.Gmail, &cfg.Reply, cfg.Scheduler.MaxRetries)
	if err != nil {
		return fmt.Errorf("failed to create replier: %w", err)
	}

	sched := scheduler.NewScheduler(&cfg.Scheduler, f, st, rep, m)

	h := handlers.NewHandlers(dbConn, st, sched, m)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := f.Close(); err != nil {
		logrus.Errorf("Failed to close fetcher: %v", err)
	}

	if err := rep.Close(); err != nil {
		logrus.Errorf("Failed to close replier: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/api"
	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/ops"
	"github.com/pdfmaster/backend/internal/store"
	"github.com/pdfmaster/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Advanced.LogLevel)

	// Session file store: one root per process, removed again on exit.
	fileStore, err := store.Open(cfg.Storage.SessionParent, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize session store")
		os.Exit(1)
	}

	opsMgr := ops.NewManager()

	// Background sweep of aged outputs and operation records.
	if cfg.Cleanup.Enabled {
		go func() {
			ticker := time.NewTicker(cfg.Cleanup.Interval)
			defer ticker.Stop()
			for range ticker.C {
				removed, freed := fileStore.Sweep(cfg.Cleanup.MaxAge)
				opsMgr.CleanupOld(cfg.Cleanup.MaxAge)
				if removed > 0 {
					logger.WithFields(logrus.Fields{
						"removed":     removed,
						"freed_bytes": freed,
					}).Info("swept aged outputs")
				}
			}
		}()
	}

	embeddedMode := web.HasEmbeddedFiles()

	e := echo.New()
	api.SetupMiddleware(e, cfg, logger)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:   fileStore,
		Ops:     opsMgr,
		Config:  cfg,
		Logger:  logger,
		Version: Version,
	}))

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.WithError(err).Warn("failed to register static routes")
		} else {
			logger.Info("serving embedded frontend from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg, fileStore, embeddedMode)

	// Run the server in the background so signals can be handled here.
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Advanced.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("shutdown error")
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server error")
			fileStore.Teardown()
			os.Exit(1)
		}
	}

	// Remove the session root; never fails the exit path.
	fileStore.Teardown()
	logger.Info("shutdown complete")
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func printBanner(cfg *config.AppConfig, fileStore *store.Store, embeddedMode bool) {
	mode := "API only"
	if embeddedMode {
		mode = "Embedded frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║                 PDFMaster Backend                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:     %-44s║\n", Version)
	fmt.Printf("║  Build Time:  %-44s║\n", BuildTime)
	fmt.Printf("║  Mode:        %-44s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Listen:      http://%-37s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Session dir: %-44s║\n", fileStore.Root())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docread/internal/api"
	"github.com/dgallion1/docread/internal/automation"
	"github.com/dgallion1/docread/internal/config"
	"github.com/dgallion1/docread/internal/extractor"
	"github.com/dgallion1/docread/internal/parser"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize backends.
	office := automation.NewOfficeBackend(cfg.OfficeBinary, automation.ExecRunner{Log: log}, log)
	office.Timeout = cfg.HostTimeout
	ex := extractor.New(office, &parser.Backend{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		extractor.WithOutputDir(cfg.OutputDir),
		extractor.WithLogger(log),
		extractor.WithStats(extractor.NewStats(time.Hour)),
	)
	caps := ex.Capabilities()
	log.Info("backends probed",
		"primary", ex.PrimaryName(), "primary_available", caps.Primary,
		"fallback", ex.FallbackName(), "fallback_available", caps.Fallback,
	)

	srv := api.NewServer(ex, log, cfg, "")

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docread server", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

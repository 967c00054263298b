package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vgmedical/surgiverify/internal/api"
	"github.com/vgmedical/surgiverify/internal/cases"
	"github.com/vgmedical/surgiverify/internal/config"
	"github.com/vgmedical/surgiverify/internal/equivalence"
	"github.com/vgmedical/surgiverify/internal/storage"
	"github.com/vgmedical/surgiverify/internal/textract"
	"github.com/vgmedical/surgiverify/internal/verify"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	var store storage.Storage
	if cfg.DatabaseURL != "" {
		pg, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		log.Info("using postgres storage")
	} else {
		store = storage.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Initialize the verification pipeline.
	engine := verify.NewEngine(store, log)
	processor := cases.NewProcessor(store, engine, textract.Options{
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)
	equivalences := equivalence.NewManager(store)

	// Initialize HTTP server.
	srv := api.NewServer(processor, engine, equivalences, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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

	log.Info("starting surgiverify", "port", cfg.Port, "env", cfg.Env)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FSlyne/gnote/internal/api"
	"github.com/FSlyne/gnote/internal/config"
	"github.com/FSlyne/gnote/internal/parser"
	"github.com/FSlyne/gnote/internal/pathstore"
	"github.com/FSlyne/gnote/internal/pipeline"
	"github.com/FSlyne/gnote/internal/session"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := source.NewDir(cfg.DocsRoot, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		log.Error("open sink", "sink", cfg.Sink, "error", err)
		os.Exit(1)
	}
	latency := stats.NewRecorder(cfg.StatsWindow)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, src, sink, latency, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Session:      session.New(src, sink, latency, log),
		Orchestrator: orch,
		Source:       src,
		Sink:         sink,
		Latency:      latency,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting gnote", "port", cfg.Port, "docs_root", cfg.DocsRoot, "sink", cfg.Sink)
	err = serve(httpServer, sigCh, func() {
		orch.Stop()
		closeSink()
	}, log)
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs httpServer until stop fires, then shuts it down and runs
// cleanup. It returns only after cleanup has finished.
func serve(httpServer *http.Server, stop <-chan os.Signal, cleanup func(), log *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		cleanup()
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func openSink(ctx context.Context, cfg config.Config) (store.Sink, func(), error) {
	switch cfg.Sink {
	case config.SinkSQLite:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case config.SinkPathstore:
		ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		return pathstore.NewSink(ps), ps.Close, nil
	case config.SinkMemory:
		return store.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

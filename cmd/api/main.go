package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/handlers"
	internalhttp "uct-dashboard/backend-go/internal/http"
	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/metrics"
	"uct-dashboard/backend-go/internal/services"
)

func main() {
	_ = godotenv.Load(
		".env",
		".env.local",
		"backend-go/.env",
		"backend-go/.env.local",
	)
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFile, cfg.LogMaxSizeMB)
	entry := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	cache := services.NewMemoryCache().WithMetrics(m)

	instruments, err := config.LoadInstruments(cfg.InstrumentsFile)
	if err != nil {
		entry.WithError(err).Warn("using default instruments")
	}

	hc := &http.Client{Timeout: cfg.RequestTimeout}
	durable := services.NewPayloadStore(ctx, cfg, log)
	wire := services.NewWireLoader(cache, durable, services.NewFileStore(cfg.WireDataDevPath), log)
	state := services.NewStateReader(cfg.StateFile)
	massive := services.NewMassiveProvider(cfg, hc)
	yahoo := services.NewYahooClient(cfg, hc)

	var live services.LiveFeed
	if fh, err := services.NewFinnhubClient(cfg, hc); err != nil {
		entry.WithError(err).Warn("live news and earnings disabled")
	} else {
		live = fh
	}

	engine := services.NewEngineService(cache, wire, state, live, log)
	movers := services.NewMoversService(cache, wire, massive, yahoo, cfg.AvgDvolWorkers, m, log)
	snapshot := services.NewSnapshotService(cache, massive, yahoo, instruments, cfg.AvgDvolWorkers, m, log)

	api := handlers.New(handlers.Deps{
		Engine:     engine,
		Movers:     movers,
		Snapshot:   snapshot,
		Wire:       wire,
		Trades:     services.NewTradeJournal(cfg.TradesFile),
		Traders:    instruments.Traders,
		PushSecret: cfg.PushSecret,
		StaticDir:  cfg.StaticDir,
		Timeout:    cfg.RequestTimeout + 5*time.Second,
	}, log)
	h := internalhttp.NewRouter(cfg, api, m, log)

	if cfg.WarmInterval > 0 {
		warmer := services.NewWarmer(snapshot, movers, cfg.RequestTimeout*2, log)
		if err := warmer.Start(cfg.WarmInterval); err != nil {
			entry.WithError(err).Warn("cache warmer not started")
		} else {
			defer warmer.Stop()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Error("shutdown failed")
		}
	}()

	entry.WithField("addr", srv.Addr).Info("uct dashboard backend listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		entry.WithError(err).Fatal("server stopped")
	}
	entry.Info("server stopped")
}

package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/metrics"
	"uct-dashboard/backend-go/internal/models"
	"uct-dashboard/backend-go/internal/normalize"
)

const SnapshotTTL = 15 * time.Second

type SnapshotService struct {
	cache       Cache
	massive     *MassiveProvider
	history     HistoryAPI
	instruments config.Instruments
	workers     int
	metrics     *metrics.Metrics
	log         *logrus.Entry
}

func NewSnapshotService(cache Cache, massive *MassiveProvider, history HistoryAPI, instruments config.Instruments, workers int, m *metrics.Metrics, log *logger.Log) *SnapshotService {
	if workers <= 0 {
		workers = 8
	}
	return &SnapshotService{
		cache:       cache,
		massive:     massive,
		history:     history,
		instruments: instruments,
		workers:     workers,
		metrics:     m,
		log:         log.WithComponent("snapshot"),
	}
}

// Get returns the futures and ETF strip. It fails only when the Massive
// client cannot be configured; single instruments that fail show a
// placeholder.
func (s *SnapshotService) Get(ctx context.Context) (models.Snapshot, error) {
	if v, ok := cacheGet[models.Snapshot](ctx, s.cache, KeySnapshot); ok {
		return v, nil
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the strip, bypassing the cached copy.
func (s *SnapshotService) Refresh(ctx context.Context) (models.Snapshot, error) {
	client, err := s.massive.Client()
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Futures: make(map[string]models.QuoteEntry, len(s.instruments.Futures)),
		ETFs:    make(map[string]models.QuoteEntry, len(s.instruments.ETFs)),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, sym := range s.instruments.ETFs {
		g.Go(func() error {
			entry := normalize.Placeholder
			q, err := client.TickerSnapshot(gctx, sym)
			if err != nil {
				s.instrumentFailed(sourceMassive, sym, err)
			} else {
				entry = quoteEntry(q)
			}
			mu.Lock()
			snap.ETFs[sym] = entry
			mu.Unlock()
			return nil
		})
	}
	for _, fut := range s.instruments.Futures {
		g.Go(func() error {
			entry := normalize.Placeholder
			if s.history != nil {
				q, err := s.history.Quote(gctx, fut.Symbol)
				if err != nil {
					s.instrumentFailed(sourceYahoo, fut.Symbol, err)
				}
				if q != (InstrumentQuote{}) {
					entry = quoteEntry(q)
				}
			}
			mu.Lock()
			snap.Futures[fut.Label] = entry
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	cacheSet(ctx, s.cache, KeySnapshot, snap, SnapshotTTL)
	return snap, nil
}

// Ticker returns one symbol's figures from Massive, falling back to Yahoo.
// When neither source knows the symbol every figure is null.
func (s *SnapshotService) Ticker(ctx context.Context, sym string) models.TickerSnapshot {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	key := tickerSnapshotKey(sym)
	if v, ok := cacheGet[models.TickerSnapshot](ctx, s.cache, key); ok {
		return v
	}

	q, src, err := firstOK(ctx,
		from(sourceMassive, func(ctx context.Context) (InstrumentQuote, error) {
			client, err := s.massive.Client()
			if err != nil {
				return InstrumentQuote{}, errMiss
			}
			return client.TickerSnapshot(ctx, sym)
		}),
		from(sourceYahoo, func(ctx context.Context) (InstrumentQuote, error) {
			if s.history == nil {
				return InstrumentQuote{}, errMiss
			}
			return s.history.Quote(ctx, sym)
		}),
	)
	if err != nil {
		s.log.WithError(err).WithField("ticker", sym).Debug("ticker snapshot unavailable")
		return models.TickerSnapshot{Ticker: sym}
	}
	out := models.TickerSnapshot{
		Ticker:    sym,
		Close:     &q.Close,
		VWAP:      &q.VWAP,
		ChangePct: &q.ChangePct,
		Change:    &q.Change,
	}
	s.log.WithFields(logrus.Fields{"ticker": sym, "source": src}).Debug("ticker snapshot built")
	cacheSet(ctx, s.cache, key, out, SnapshotTTL)
	return out
}

func (s *SnapshotService) instrumentFailed(source, sym string, err error) {
	s.metrics.UpstreamError(source)
	s.log.WithError(err).WithFields(logrus.Fields{"source": source, "symbol": sym}).Warn("instrument quote failed")
}

// quoteEntry prices an instrument at its close, else its VWAP, else 0.
func quoteEntry(q InstrumentQuote) models.QuoteEntry {
	price := q.Close
	if price == 0 {
		price = q.VWAP
	}
	return normalize.QuoteEntry(price, q.ChangePct)
}

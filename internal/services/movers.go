package services

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/metrics"
	"uct-dashboard/backend-go/internal/models"
	"uct-dashboard/backend-go/internal/normalize"
)

// Liquidity filter thresholds, applied in this order.
const (
	MinGapPct          = 3.0
	MinPrice           = 2.0 // exclusive
	MinSessionVolume   = 50_000
	MinAvgDollarVolume = 10_000_000.0

	TopMoversLimit = 20

	WireMoversTTL = 300 * time.Second
	LiveMoversTTL = 30 * time.Second
)

type MoversService struct {
	cache   Cache
	wire    *WireLoader
	massive *MassiveProvider
	history HistoryAPI
	workers int
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewMoversService(cache Cache, wire *WireLoader, massive *MassiveProvider, history HistoryAPI, workers int, m *metrics.Metrics, log *logger.Log) *MoversService {
	if workers <= 0 {
		workers = 8
	}
	return &MoversService{
		cache:   cache,
		wire:    wire,
		massive: massive,
		history: history,
		workers: workers,
		metrics: m,
		log:     log.WithComponent("movers"),
	}
}

func EmptyMovers() models.Movers {
	return models.Movers{Ripping: []models.Mover{}, Drilling: []models.Mover{}}
}

// Get returns the movers view as JSON. It never fails: with neither wire
// movers nor a live source it returns two empty lists.
func (s *MoversService) Get(ctx context.Context) json.RawMessage {
	if b, ok := s.cache.Get(ctx, KeyMovers); ok {
		return b
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the movers view, bypassing the cached copy. Wire movers
// are served byte for byte as the engine pushed them.
func (s *MoversService) Refresh(ctx context.Context) json.RawMessage {
	if raw, ok := s.fromWire(ctx); ok {
		_ = s.cache.Set(ctx, KeyMovers, raw, WireMoversTTL)
		return raw
	}
	v, ok := s.live(ctx)
	if !ok {
		v = EmptyMovers()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"ripping":[],"drilling":[]}`)
	}
	if ok {
		_ = s.cache.Set(ctx, KeyMovers, b, LiveMoversTTL)
	}
	return b
}

// fromWire accepts any non-empty JSON object under the payload's movers key
// without looking at its rows.
func (s *MoversService) fromWire(ctx context.Context) (json.RawMessage, bool) {
	p, ok := s.wire.Load(ctx)
	if !ok || !normalize.Present(p.Movers) {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(p.Movers, &m); err != nil || m == nil {
		s.log.Debug("wire movers is not an object")
		return nil, false
	}
	return p.Movers, true
}

func (s *MoversService) live(ctx context.Context) (models.Movers, bool) {
	client, err := s.massive.Client()
	if err != nil {
		s.log.WithError(err).Warn("massive client unavailable")
		return models.Movers{}, false
	}

	gainers, gErr := client.TopMovers(ctx, DirectionGainers, TopMoversLimit)
	losers, lErr := client.TopMovers(ctx, DirectionLosers, TopMoversLimit)
	if gErr != nil {
		s.upstreamFailed("gainers", gErr)
	}
	if lErr != nil {
		s.upstreamFailed("losers", lErr)
	}
	if gErr != nil && lErr != nil {
		return models.Movers{}, false
	}

	gainers = s.quickFilter(gainers)
	losers = s.quickFilter(losers)
	avg := s.avgDollarVolumes(ctx, uniqueTickers(gainers, losers))

	return models.Movers{
		Ripping:  s.liquid(gainers, avg),
		Drilling: s.liquid(losers, avg),
	}, true
}

func (s *MoversService) upstreamFailed(direction string, err error) {
	s.metrics.UpstreamError(sourceMassive)
	s.log.WithError(err).WithField("direction", direction).Warn("top movers failed")
}

// quickFilter applies the filters that need only the row itself.
func (s *MoversService) quickFilter(rows []models.MoverRow) []models.MoverRow {
	out := make([]models.MoverRow, 0, len(rows))
	for _, r := range rows {
		switch {
		case math.Abs(r.ChangePct) < MinGapPct:
			s.metrics.MoverDropped("gap")
		case r.Close <= MinPrice:
			s.metrics.MoverDropped("price")
		case r.Volume < MinSessionVolume:
			s.metrics.MoverDropped("volume")
		default:
			out = append(out, r)
		}
	}
	return out
}

func (s *MoversService) liquid(rows []models.MoverRow, avg map[string]float64) []models.Mover {
	out := make([]models.Mover, 0, len(rows))
	for _, r := range rows {
		v, ok := avg[r.Ticker]
		if ok && v < MinAvgDollarVolume {
			s.metrics.MoverDropped("dollar_volume")
			continue
		}
		out = append(out, models.Mover{Sym: r.Ticker, Pct: normalize.SignedPct(r.ChangePct, 2)})
	}
	return out
}

// avgDollarVolumes looks up every ticker concurrently. A ticker whose history
// cannot be fetched maps to +Inf so it is never filtered out.
func (s *MoversService) avgDollarVolumes(ctx context.Context, tickers []string) map[string]float64 {
	out := make(map[string]float64, len(tickers))
	if len(tickers) == 0 {
		return out
	}
	if s.history == nil {
		for _, t := range tickers {
			out[t] = math.Inf(1)
		}
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.workers, len(tickers)))
	for _, t := range tickers {
		g.Go(func() error {
			v, err := s.history.AvgDollarVolume(gctx, t)
			if err != nil {
				s.metrics.UpstreamError(sourceYahoo)
				s.log.WithError(err).WithField("ticker", t).Debug("avg dollar volume unavailable")
				v = math.Inf(1)
			}
			mu.Lock()
			out[t] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func uniqueTickers(lists ...[]models.MoverRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rows := range lists {
		for _, r := range rows {
			if !seen[r.Ticker] {
				seen[r.Ticker] = true
				out = append(out, r.Ticker)
			}
		}
	}
	return out
}

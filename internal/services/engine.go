package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/models"
	"uct-dashboard/backend-go/internal/normalize"
)

const (
	BreadthTTL    = 3600 * time.Second
	ThemesTTL     = 3600 * time.Second
	LeadershipTTL = 3600 * time.Second
	RundownTTL    = 3600 * time.Second
	EarningsTTL   = 1800 * time.Second
	NewsTTL       = 300 * time.Second
	ScreenerTTL   = 900 * time.Second

	NewsLimit = 20

	RundownPostMarket = "post_market"
)

// EngineService serves the morning wire engine's outputs. Each accessor
// tries its cached view, then the wire payload, then the engine state file,
// then a live source where one exists, and finally a default-shaped value.
// Accessors never fail.
type EngineService struct {
	cache Cache
	wire  *WireLoader
	state *StateReader
	live  LiveFeed
	log   *logrus.Entry
	now   func() time.Time
}

// NewEngineService accepts a nil live feed; the live tiers then miss.
func NewEngineService(cache Cache, wire *WireLoader, state *StateReader, live LiveFeed, log *logger.Log) *EngineService {
	return &EngineService{
		cache: cache,
		wire:  wire,
		state: state,
		live:  live,
		log:   log.WithComponent("engine"),
		now:   time.Now,
	}
}

// wireSection returns the section picked from the current wire payload, or
// errMiss when there is no payload or the section is empty.
func (e *EngineService) wireSection(ctx context.Context, pick func(models.WirePayload) json.RawMessage) (json.RawMessage, error) {
	p, ok := e.wire.Load(ctx)
	if !ok {
		return nil, errMiss
	}
	raw := pick(p)
	if !normalize.Present(raw) {
		return nil, errMiss
	}
	return raw, nil
}

func stateSection(st EngineState, key string) (json.RawMessage, error) {
	raw := st.Field(key)
	if !normalize.Present(raw) {
		return nil, errMiss
	}
	return raw, nil
}

func (e *EngineService) Breadth(ctx context.Context) models.Breadth {
	if v, ok := cacheGet[models.Breadth](ctx, e.cache, KeyBreadth); ok {
		return v
	}
	st := e.state.Load()
	market := st.Market()
	build := func(raw json.RawMessage) models.Breadth {
		return normalize.Breadth(normalize.DecodeBreadth(raw), market)
	}

	v, src, err := firstOK(ctx,
		from("wire", func(ctx context.Context) (models.Breadth, error) {
			raw, err := e.wireSection(ctx, func(p models.WirePayload) json.RawMessage { return p.Breadth })
			if err != nil {
				return models.Breadth{}, err
			}
			return build(raw), nil
		}),
		from("state", func(context.Context) (models.Breadth, error) {
			raw, err := stateSection(st, "breadth_data")
			if err != nil {
				return models.Breadth{}, err
			}
			return build(raw), nil
		}),
	)
	if err != nil {
		v = normalize.EmptyBreadth(market, e.unavailable("breadth", err))
	}
	e.trace("breadth", src)
	cacheSet(ctx, e.cache, KeyBreadth, v, BreadthTTL)
	return v
}

func (e *EngineService) Themes(ctx context.Context, period string) models.Themes {
	period = normalize.ValidPeriod(period)
	key := themesKey(period)
	if v, ok := cacheGet[models.Themes](ctx, e.cache, key); ok {
		return v
	}
	build := func(raw json.RawMessage) models.Themes {
		return normalize.Themes(normalize.DecodeThemes(raw), period)
	}

	v, src, err := firstOK(ctx,
		from("wire", func(ctx context.Context) (models.Themes, error) {
			raw, err := e.wireSection(ctx, func(p models.WirePayload) json.RawMessage { return p.Themes })
			if err != nil {
				return models.Themes{}, err
			}
			return build(raw), nil
		}),
		from("state", func(context.Context) (models.Themes, error) {
			raw, err := stateSection(e.state.Load(), "themes_data")
			if err != nil {
				return models.Themes{}, err
			}
			return build(raw), nil
		}),
	)
	if err != nil {
		v = models.Themes{
			Leaders:  []models.Theme{},
			Laggards: []models.Theme{},
			Period:   period,
			Error:    e.unavailable("themes", err),
		}
	}
	e.trace(key, src)
	cacheSet(ctx, e.cache, key, v, ThemesTTL)
	return v
}

func (e *EngineService) Leadership(ctx context.Context) []models.LeadershipRow {
	if v, ok := cacheGet[[]models.LeadershipRow](ctx, e.cache, KeyLeadership); ok && v != nil {
		return v
	}
	v, src, err := firstOK(ctx,
		from("wire", func(ctx context.Context) ([]models.LeadershipRow, error) {
			raw, err := e.wireSection(ctx, func(p models.WirePayload) json.RawMessage { return p.Leadership })
			if err != nil {
				return nil, err
			}
			return normalize.Leadership(raw), nil
		}),
		from("state", func(context.Context) ([]models.LeadershipRow, error) {
			raw, err := stateSection(e.state.Load(), "leadership_data")
			if err != nil {
				return nil, err
			}
			return normalize.Leadership(raw), nil
		}),
	)
	if err != nil {
		v = []models.LeadershipRow{}
	}
	e.trace("leadership", src)
	cacheSet(ctx, e.cache, KeyLeadership, v, LeadershipTTL)
	return v
}

// Rundown serves the morning rundown, or the post-market recap when kind is
// "post_market".
func (e *EngineService) Rundown(ctx context.Context, kind string) models.Rundown {
	key, stateKey := KeyRundown, "rundown_data"
	html := func(p models.WirePayload) string { return p.RundownHTML }
	if kind == RundownPostMarket {
		key, stateKey = KeyRundownPostMarket, "post_market_data"
		html = func(p models.WirePayload) string { return p.PostMarketHTML }
	}
	if v, ok := cacheGet[models.Rundown](ctx, e.cache, key); ok {
		return v
	}

	v, src, err := firstOK(ctx,
		from("wire", func(ctx context.Context) (models.Rundown, error) {
			p, ok := e.wire.Load(ctx)
			if !ok || html(p) == "" {
				return models.Rundown{}, errMiss
			}
			return normalize.Rundown(html(p), p.Date), nil
		}),
		from("state", func(context.Context) (models.Rundown, error) {
			raw, err := stateSection(e.state.Load(), stateKey)
			if err != nil {
				return models.Rundown{}, err
			}
			return normalize.RundownFromState(raw), nil
		}),
	)
	if err != nil {
		v = models.Rundown{}
	}
	e.trace(key, src)
	cacheSet(ctx, e.cache, key, v, RundownTTL)
	return v
}

func (e *EngineService) Earnings(ctx context.Context) models.Earnings {
	if v, ok := cacheGet[models.Earnings](ctx, e.cache, KeyEarnings); ok {
		return v
	}
	v, src, err := firstOK(ctx,
		from("wire", func(ctx context.Context) (models.Earnings, error) {
			raw, err := e.wireSection(ctx, func(p models.WirePayload) json.RawMessage { return p.Earnings })
			if err != nil {
				return models.Earnings{}, err
			}
			return normalize.Earnings(normalize.DecodeEarningBuckets(raw)), nil
		}),
		from("state", func(context.Context) (models.Earnings, error) {
			raw, err := stateSection(e.state.Load(), "earnings_data")
			if err != nil {
				return models.Earnings{}, err
			}
			if v, ok := normalize.EarningsView(raw); ok {
				return v, nil
			}
			return normalize.Earnings(normalize.DecodeEarningRows(raw)), nil
		}),
		from("live", func(ctx context.Context) (models.Earnings, error) {
			if e.live == nil {
				return models.Earnings{}, errMiss
			}
			rows, err := e.live.EarningsOn(ctx, e.now())
			if err != nil {
				return models.Earnings{}, err
			}
			return normalize.Earnings(rows), nil
		}),
	)
	if err != nil {
		v = models.Earnings{
			BMO:   []models.EarningsEntry{},
			AMC:   []models.EarningsEntry{},
			Error: e.unavailable("earnings", err),
		}
	}
	e.trace("earnings", src)
	cacheSet(ctx, e.cache, KeyEarnings, v, EarningsTTL)
	return v
}

func (e *EngineService) News(ctx context.Context) []models.NewsItem {
	if v, ok := cacheGet[[]models.NewsItem](ctx, e.cache, KeyNews); ok && v != nil {
		return v
	}
	var v []models.NewsItem
	if e.live == nil {
		v = normalize.NewsUnavailable("no live news source configured")
	} else if articles, err := e.live.MarketNews(ctx, NewsLimit); err != nil {
		e.log.WithError(err).Warn("live news failed")
		v = normalize.NewsUnavailable(err.Error())
	} else {
		v = normalize.News(articles)
	}
	cacheSet(ctx, e.cache, KeyNews, v, NewsTTL)
	return v
}

// Screener reshapes the leadership rows into screener columns.
func (e *EngineService) Screener(ctx context.Context) []models.ScreenerRow {
	if v, ok := cacheGet[[]models.ScreenerRow](ctx, e.cache, KeyScreener); ok && v != nil {
		return v
	}
	v := normalize.Screener(e.Leadership(ctx))
	cacheSet(ctx, e.cache, KeyScreener, v, ScreenerTTL)
	return v
}

func (e *EngineService) unavailable(what string, err error) string {
	if errors.Is(err, errMiss) {
		return "no " + what + " data available"
	}
	e.log.WithError(err).WithField("view", what).Warn("all sources failed")
	return err.Error()
}

func (e *EngineService) trace(view, src string) {
	if src == "" {
		src = "default"
	}
	e.log.WithFields(logrus.Fields{"view": view, "source": src}).Debug("view rebuilt")
}

package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/models"
)

const (
	DirectionGainers = "gainers"
	DirectionLosers  = "losers"

	sourceMassive = "massive"
)

// InstrumentQuote is one instrument's latest session figures.
type InstrumentQuote struct {
	Close     float64
	VWAP      float64
	ChangePct float64
	Change    float64
}

// MassiveAPI is the subset of the Massive REST API the dashboard uses.
type MassiveAPI interface {
	TopMovers(ctx context.Context, direction string, limit int) ([]models.MoverRow, error)
	TickerSnapshot(ctx context.Context, sym string) (InstrumentQuote, error)
}

type MassiveClient struct {
	apiKey  string
	baseURL string
	hc      *http.Client
	cb      *circuitBreaker
}

// NewMassiveClient fails with ErrMissingAPIKey when no key is configured.
func NewMassiveClient(cfg config.Config, hc *http.Client) (*MassiveClient, error) {
	if strings.TrimSpace(cfg.MassiveAPIKey) == "" {
		return nil, fmt.Errorf("massive: MASSIVE_API_KEY: %w", ErrMissingAPIKey)
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &MassiveClient{
		apiKey:  cfg.MassiveAPIKey,
		baseURL: strings.TrimRight(cfg.MassiveBaseURL, "/"),
		hc:      hc,
		cb:      newCircuitBreaker(cfg.CircuitFailLimit, cfg.CircuitCooldown),
	}, nil
}

type massiveTicker struct {
	Ticker           string  `json:"ticker"`
	TodaysChangePerc float64 `json:"todaysChangePerc"`
	TodaysChange     float64 `json:"todaysChange"`
	Day              struct {
		C  float64 `json:"c"`
		V  float64 `json:"v"`
		VW float64 `json:"vw"`
	} `json:"day"`
}

type massiveMoversResponse struct {
	Status  string          `json:"status"`
	Tickers []massiveTicker `json:"tickers"`
}

type massiveTickerResponse struct {
	Status string         `json:"status"`
	Ticker *massiveTicker `json:"ticker"`
}

func (c *MassiveClient) endpoint(path string) string {
	return c.baseURL + path
}

// auth carries the key in a header so it never appears in a request URL.
func (c *MassiveClient) auth() http.Header {
	return http.Header{"Authorization": {"Bearer " + c.apiKey}}
}

// TopMovers returns up to limit of the session's top gainers or losers.
func (c *MassiveClient) TopMovers(ctx context.Context, direction string, limit int) ([]models.MoverRow, error) {
	if direction != DirectionGainers && direction != DirectionLosers {
		return nil, fmt.Errorf("massive: unknown direction %q", direction)
	}
	var res massiveMoversResponse
	path := "/v2/snapshot/locale/us/markets/stocks/" + direction
	if err := getJSON(ctx, c.hc, c.cb, sourceMassive, c.endpoint(path), c.auth(), &res); err != nil {
		return nil, err
	}
	tickers := res.Tickers
	if limit > 0 && len(tickers) > limit {
		tickers = tickers[:limit]
	}
	out := make([]models.MoverRow, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, models.MoverRow{
			Ticker:    t.Ticker,
			ChangePct: roundTo(t.TodaysChangePerc, 2),
			Change:    roundTo(t.TodaysChange, 4),
			Close:     t.Day.C,
			Volume:    int64(t.Day.V),
		})
	}
	return out, nil
}

// TickerSnapshot returns ErrNotFound unless the reply status is OK or
// DELAYED and carries a ticker object.
func (c *MassiveClient) TickerSnapshot(ctx context.Context, sym string) (InstrumentQuote, error) {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	var res massiveTickerResponse
	path := "/v2/snapshot/locale/us/markets/stocks/tickers/" + url.PathEscape(sym)
	if err := getJSON(ctx, c.hc, c.cb, sourceMassive, c.endpoint(path), c.auth(), &res); err != nil {
		return InstrumentQuote{}, err
	}
	if (res.Status != "OK" && res.Status != "DELAYED") || res.Ticker == nil {
		return InstrumentQuote{}, fmt.Errorf("massive %s: %w", sym, ErrNotFound)
	}
	t := res.Ticker
	return InstrumentQuote{
		Close:     t.Day.C,
		VWAP:      t.Day.VW,
		ChangePct: roundTo(t.TodaysChangePerc, 4),
		Change:    roundTo(t.TodaysChange, 4),
	}, nil
}

// MassiveProvider builds the client on first use and remembers the outcome,
// so a missing key is reported on every call without retrying construction.
type MassiveProvider struct {
	once   sync.Once
	build  func() (MassiveAPI, error)
	client MassiveAPI
	err    error
}

func NewMassiveProvider(cfg config.Config, hc *http.Client) *MassiveProvider {
	return NewMassiveProviderFunc(func() (MassiveAPI, error) {
		c, err := NewMassiveClient(cfg, hc)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

func NewMassiveProviderFunc(build func() (MassiveAPI, error)) *MassiveProvider {
	return &MassiveProvider{build: build}
}

func (p *MassiveProvider) Client() (MassiveAPI, error) {
	p.once.Do(func() {
		p.client, p.err = p.build()
	})
	return p.client, p.err
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

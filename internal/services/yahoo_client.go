package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"uct-dashboard/backend-go/internal/config"
)

const (
	sourceYahoo    = "yahoo"
	yahooUserAgent = "Mozilla/5.0 (compatible; uct-dashboard/1.0)"

	avgDollarVolumeDays = 5
)

// Bar is one daily bar with a usable close.
type Bar struct {
	Close  float64
	Volume float64
}

// HistoryAPI serves daily history and derived quotes for symbols outside the
// Massive equities feed (futures, crypto) and for liquidity checks.
type HistoryAPI interface {
	DailyBars(ctx context.Context, sym, rng string) ([]Bar, error)
	AvgDollarVolume(ctx context.Context, sym string) (float64, error)
	Quote(ctx context.Context, sym string) (InstrumentQuote, error)
}

type YahooClient struct {
	baseURL string
	hc      *http.Client
	cb      *circuitBreaker

	mu   sync.Mutex
	last map[string]InstrumentQuote
}

func NewYahooClient(cfg config.Config, hc *http.Client) *YahooClient {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &YahooClient{
		baseURL: strings.TrimRight(cfg.YahooBaseURL, "/"),
		hc:      hc,
		cb:      newCircuitBreaker(cfg.CircuitFailLimit, cfg.CircuitCooldown),
		last:    make(map[string]InstrumentQuote),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars returns the daily bars for rng (e.g. "10d"), oldest first.
// Bars without a close are skipped; a missing volume counts as zero.
func (c *YahooClient) DailyBars(ctx context.Context, sym, rng string) ([]Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(sym), url.QueryEscape(rng))
	header := http.Header{"User-Agent": []string{yahooUserAgent}}

	var res yahooChartResponse
	if err := getJSON(ctx, c.hc, c.cb, sourceYahoo, u, header, &res); err != nil {
		return nil, err
	}
	if e := res.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", sym, e.Code, e.Description)
	}
	if len(res.Chart.Result) == 0 || len(res.Chart.Result[0].Indicators.Quote) == 0 {
		return []Bar{}, nil
	}
	q := res.Chart.Result[0].Indicators.Quote[0]
	bars := make([]Bar, 0, len(q.Close))
	for i, cl := range q.Close {
		if cl == nil {
			continue
		}
		b := Bar{Close: *cl}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// AvgDollarVolume is the mean of close*volume over the last five sessions of
// a ten-day history. An empty history yields 0.
func (c *YahooClient) AvgDollarVolume(ctx context.Context, sym string) (float64, error) {
	bars, err := c.DailyBars(ctx, sym, "10d")
	if err != nil {
		return 0, err
	}
	return avgDollarVolume(bars, avgDollarVolumeDays), nil
}

func avgDollarVolume(bars []Bar, days int) float64 {
	if len(bars) == 0 {
		return 0
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	var sum float64
	for _, b := range bars {
		sum += b.Close * b.Volume
	}
	return sum / float64(len(bars))
}

// Quote derives the latest close and the change against the prior close.
// On failure the last good quote for sym is returned alongside the error.
func (c *YahooClient) Quote(ctx context.Context, sym string) (InstrumentQuote, error) {
	bars, err := c.DailyBars(ctx, sym, "5d")
	if err != nil {
		return c.staleOrError(sym, err)
	}
	if len(bars) == 0 {
		return InstrumentQuote{}, fmt.Errorf("yahoo %s: %w", sym, ErrNotFound)
	}
	closePx := bars[len(bars)-1].Close
	prev := closePx
	if len(bars) >= 2 {
		prev = bars[len(bars)-2].Close
	}
	var chgPct float64
	if prev != 0 {
		chgPct = (closePx - prev) / prev * 100
	}
	q := InstrumentQuote{
		Close:     closePx,
		VWAP:      closePx,
		ChangePct: roundTo(chgPct, 4),
		Change:    roundTo(closePx-prev, 4),
	}
	c.mu.Lock()
	c.last[sym] = q
	c.mu.Unlock()
	return q, nil
}

func (c *YahooClient) staleOrError(sym string, err error) (InstrumentQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[sym], err
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/normalize"
)

const sourceFinnhub = "finnhub"

// LiveFeed is the live fallback for news and the earnings calendar.
type LiveFeed interface {
	MarketNews(ctx context.Context, limit int) ([]normalize.RawArticle, error)
	EarningsOn(ctx context.Context, day time.Time) ([]normalize.RawEarning, error)
}

type FinnhubClient struct {
	api *finnhub.DefaultApiService
}

func NewFinnhubClient(cfg config.Config, hc *http.Client) (*FinnhubClient, error) {
	if strings.TrimSpace(cfg.FinnhubAPIKey) == "" {
		return nil, fmt.Errorf("finnhub: FINNHUB_API_KEY: %w", ErrMissingAPIKey)
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	fc := finnhub.NewConfiguration()
	fc.AddDefaultHeader("X-Finnhub-Token", cfg.FinnhubAPIKey)
	fc.HTTPClient = hc
	return &FinnhubClient{api: finnhub.NewAPIClient(fc).DefaultApi}, nil
}

func (c *FinnhubClient) MarketNews(ctx context.Context, limit int) ([]normalize.RawArticle, error) {
	res, _, err := c.api.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub news: %w", err)
	}
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	out := make([]normalize.RawArticle, 0, len(res))
	for _, n := range res {
		a := normalize.RawArticle{
			Headline: n.GetHeadline(),
			Source:   n.GetSource(),
			URL:      n.GetUrl(),
			Category: n.GetCategory(),
		}
		if ts := n.GetDatetime(); ts > 0 {
			a.Published = time.Unix(ts, 0).UTC()
		}
		out = append(out, a)
	}
	return out, nil
}

// EarningsOn returns the calendar rows for one day. Finnhub reports hour as
// bmo, amc or dmh; anything but bmo lands in the after-close bucket.
func (c *FinnhubClient) EarningsOn(ctx context.Context, day time.Time) ([]normalize.RawEarning, error) {
	d := day.Format("2006-01-02")
	res, _, err := c.api.EarningsCalendar(ctx).From(d).To(d).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub earnings: %w", err)
	}
	rows := res.GetEarningsCalendar()
	out := make([]normalize.RawEarning, 0, len(rows))
	for _, r := range rows {
		e := normalize.RawEarning{Symbol: r.GetSymbol(), Hour: r.GetHour()}
		if r.HasEpsActual() {
			v := float64(r.GetEpsActual())
			e.EPSActual = &v
		}
		if r.HasEpsEstimate() {
			v := float64(r.GetEpsEstimate())
			e.EPSEstimate = &v
		}
		if r.HasRevenueActual() {
			v := float64(r.GetRevenueActual())
			e.RevActual = &v
		}
		if r.HasRevenueEstimate() {
			v := float64(r.GetRevenueEstimate())
			e.RevEstimate = &v
		}
		out = append(out, e)
	}
	return out, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"uct-dashboard/backend-go/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		MassiveAPIKey:    "test-key",
		FinnhubAPIKey:    "fh-key",
		RequestTimeout:   5 * time.Second,
		CircuitFailLimit: 5,
		CircuitCooldown:  20 * time.Second,
	}
}

func TestNewMassiveClientRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.MassiveAPIKey = "  "
	if _, err := NewMassiveClient(cfg, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestMassiveProviderMemoizesFailure(t *testing.T) {
	builds := 0
	p := NewMassiveProviderFunc(func() (MassiveAPI, error) {
		builds++
		return nil, ErrMissingAPIKey
	})
	for i := 0; i < 3; i++ {
		if _, err := p.Client(); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("call %d: expected ErrMissingAPIKey, got %v", i, err)
		}
	}
	if builds != 1 {
		t.Fatalf("expected one construction attempt, got %d", builds)
	}
}

func TestMassiveTopMovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/snapshot/locale/us/markets/stocks/gainers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" || r.URL.RawQuery != "" {
			t.Errorf("api key must travel in the Authorization header, got %q query=%q", r.Header.Get("Authorization"), r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","tickers":[
			{"ticker":"AAA","todaysChangePerc":12.3456,"todaysChange":1.23456,"day":{"c":11.5,"v":1250000.0}},
			{"ticker":"BBB","todaysChangePerc":5.0,"todaysChange":0.5,"day":{"c":10.5,"v":60000}},
			{"ticker":"CCC","todaysChangePerc":4.0,"todaysChange":0.4,"day":{"c":10.4,"v":70000}}
		]}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MassiveBaseURL = srv.URL
	c, err := NewMassiveClient(cfg, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	rows, err := c.TopMovers(context.Background(), DirectionGainers, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected limit 2, got %d", len(rows))
	}
	if rows[0].Ticker != "AAA" || rows[0].ChangePct != 12.35 || rows[0].Volume != 1250000 || rows[0].Close != 11.5 {
		t.Fatalf("unexpected row %+v", rows[0])
	}

	if _, err := c.TopMovers(context.Background(), "sideways", 1); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestMassiveTransportErrorHidesKey(t *testing.T) {
	cfg := testConfig()
	cfg.MassiveAPIKey = "SEKRET123"
	cfg.MassiveBaseURL = "http://127.0.0.1:1"
	c, err := NewMassiveClient(cfg, &http.Client{Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.TopMovers(context.Background(), DirectionGainers, 5)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "SEKRET123") {
		t.Fatalf("error leaks the api key: %v", err)
	}
}

func TestGetJSONRedactsQueryInTransportErrors(t *testing.T) {
	var out map[string]any
	err := getJSON(context.Background(), &http.Client{Timeout: time.Second}, nil, "test",
		"http://127.0.0.1:1/v1/thing?apiKey=SEKRET123&x=1", nil, &out)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "SEKRET123") || !strings.Contains(err.Error(), "/v1/thing") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestMassiveTickerSnapshotStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/QQQ"):
			w.Write([]byte(`{"status":"DELAYED","ticker":{"ticker":"QQQ","todaysChangePerc":0.54321,"todaysChange":2.7,"day":{"c":495.12,"vw":494.9}}}`))
		case strings.HasSuffix(r.URL.Path, "/ZZZ"):
			w.Write([]byte(`{"status":"NOT_FOUND"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MassiveBaseURL = srv.URL
	c, _ := NewMassiveClient(cfg, srv.Client())

	q, err := c.TickerSnapshot(context.Background(), "qqq")
	if err != nil {
		t.Fatal(err)
	}
	if q.Close != 495.12 || q.VWAP != 494.9 || q.ChangePct != 0.5432 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if _, err := c.TickerSnapshot(context.Background(), "ZZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = c.TickerSnapshot(context.Background(), "ERR")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusInternalServerError || ue.Source != sourceMassive {
		t.Fatalf("expected upstream 500, got %v", err)
	}
}

const yahooChart = `{"chart":{"result":[{"meta":{"symbol":"NQ=F"},"timestamp":[1,2,3,4,5,6,7],
  "indicators":{"quote":[{
    "close":[10,null,20,30,40,50,60],
    "volume":[1000,5,2000,3000,null,5000,6000]
  }]}}],"error":null}}`

func newYahoo(t *testing.T, body string, status int) *YahooClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	cfg := testConfig()
	cfg.YahooBaseURL = srv.URL
	return NewYahooClient(cfg, srv.Client())
}

func TestYahooDailyBarsSkipsNullCloses(t *testing.T) {
	y := newYahoo(t, yahooChart, http.StatusOK)
	bars, err := y.DailyBars(context.Background(), "NQ=F", "10d")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 6 {
		t.Fatalf("expected 6 bars, got %d", len(bars))
	}
	if bars[3].Close != 40 || bars[3].Volume != 0 {
		t.Fatalf("null volume should read as zero, got %+v", bars[3])
	}
}

func TestYahooAvgDollarVolumeUsesLastFiveSessions(t *testing.T) {
	y := newYahoo(t, yahooChart, http.StatusOK)
	got, err := y.AvgDollarVolume(context.Background(), "X")
	if err != nil {
		t.Fatal(err)
	}
	// last five bars: 20*2000, 30*3000, 40*0, 50*5000, 60*6000
	want := (40000.0 + 90000 + 0 + 250000 + 360000) / 5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestYahooAvgDollarVolumeEmptyHistory(t *testing.T) {
	y := newYahoo(t, `{"chart":{"result":[],"error":null}}`, http.StatusOK)
	got, err := y.AvgDollarVolume(context.Background(), "X")
	if err != nil || got != 0 {
		t.Fatalf("expected 0 for empty history, got %v err=%v", got, err)
	}
}

func TestYahooQuote(t *testing.T) {
	y := newYahoo(t, yahooChart, http.StatusOK)
	q, err := y.Quote(context.Background(), "NQ=F")
	if err != nil {
		t.Fatal(err)
	}
	if q.Close != 60 || q.VWAP != 60 || q.ChangePct != 20 || q.Change != 10 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestFinnhubNewsAndEarnings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Finnhub-Token") != "fh-key" {
			t.Errorf("missing finnhub token")
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/news"):
			items := []map[string]any{}
			for i := 0; i < 25; i++ {
				items = append(items, map[string]any{
					"category": "top news", "datetime": 1771767000, "headline": "Fed holds",
					"id": i, "source": "Reuters", "url": "https://example.com/a", "related": "",
				})
			}
			json.NewEncoder(w).Encode(items)
		case strings.HasSuffix(r.URL.Path, "/calendar/earnings"):
			if r.URL.Query().Get("from") != "2026-02-23" {
				t.Errorf("unexpected from %q", r.URL.Query().Get("from"))
			}
			w.Write([]byte(`{"earningsCalendar":[
				{"symbol":"AAPL","date":"2026-02-23","hour":"bmo","epsActual":1.5,"epsEstimate":1.25,"revenueActual":1000,"revenueEstimate":900,"quarter":1,"year":2026},
				{"symbol":"NVDA","date":"2026-02-23","hour":"amc","epsEstimate":0.8,"quarter":1,"year":2026}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	hc := &http.Client{Transport: &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}}
	c, err := NewFinnhubClient(testConfig(), hc)
	if err != nil {
		t.Fatal(err)
	}

	news, err := c.MarketNews(context.Background(), NewsLimit)
	if err != nil {
		t.Fatal(err)
	}
	if len(news) != NewsLimit {
		t.Fatalf("expected %d articles, got %d", NewsLimit, len(news))
	}
	if news[0].Headline != "Fed holds" || news[0].Source != "Reuters" || news[0].Published.IsZero() {
		t.Fatalf("unexpected article %+v", news[0])
	}

	rows, err := c.EarningsOn(context.Background(), time.Date(2026, 2, 23, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Symbol != "AAPL" || rows[0].Hour != "bmo" || rows[0].EPSActual == nil || *rows[0].EPSActual != 1.5 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[1].EPSActual != nil || rows[1].EPSEstimate == nil {
		t.Fatalf("missing actual should stay nil, got %+v", rows[1])
	}
}

func TestNewFinnhubClientRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.FinnhubAPIKey = ""
	if _, err := NewFinnhubClient(cfg, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

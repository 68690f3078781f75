package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/models"
)

// Engine serves the views derived from the morning wire payload and the
// engine state file.
type Engine interface {
	Breadth(ctx context.Context) models.Breadth
	Themes(ctx context.Context, period string) models.Themes
	Leadership(ctx context.Context) []models.LeadershipRow
	Rundown(ctx context.Context, kind string) models.Rundown
	Earnings(ctx context.Context) models.Earnings
	News(ctx context.Context) []models.NewsItem
	Screener(ctx context.Context) []models.ScreenerRow
}

// MoversReader returns the movers view already encoded as JSON.
type MoversReader interface {
	Get(ctx context.Context) json.RawMessage
}

type SnapshotReader interface {
	Get(ctx context.Context) (models.Snapshot, error)
	Ticker(ctx context.Context, sym string) models.TickerSnapshot
}

type WireReceiver interface {
	Accept(ctx context.Context, body []byte) (models.WirePayload, error)
}

type TradeStore interface {
	List(ctx context.Context) ([]models.Trade, error)
	Add(ctx context.Context, in models.TradeInput) (models.Trade, error)
}

// Deps groups what the API reads from. Nil readers answer 503.
type Deps struct {
	Engine     Engine
	Movers     MoversReader
	Snapshot   SnapshotReader
	Wire       WireReceiver
	Trades     TradeStore
	Traders    []models.Trader
	PushSecret string
	StaticDir  string
	Timeout    time.Duration
}

type API struct {
	engine     Engine
	movers     MoversReader
	snapshot   SnapshotReader
	wire       WireReceiver
	trades     TradeStore
	traders    []models.Trader
	pushSecret string
	staticDir  string
	timeout    time.Duration
	log        *logger.Log
}

func New(d Deps, log *logger.Log) *API {
	if d.Timeout <= 0 {
		d.Timeout = 20 * time.Second
	}
	traders := d.Traders
	if traders == nil {
		traders = []models.Trader{}
	}
	return &API{
		engine:     d.Engine,
		movers:     d.Movers,
		snapshot:   d.Snapshot,
		wire:       d.Wire,
		trades:     d.Trades,
		traders:    traders,
		pushSecret: d.PushSecret,
		staticDir:  d.StaticDir,
		timeout:    d.Timeout,
		log:        log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw sends b unchanged.
func writeRaw(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, models.ErrorResponse{Detail: detail})
}

func timeboxed(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

package http

import (
	"net/http"
	"path/filepath"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/handlers"
	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/metrics"
)

func NewRouter(cfg config.Config, api *handlers.API, m *metrics.Metrics, log *logger.Log) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", api.Health)
	mux.HandleFunc("GET /api/snapshot", api.Snapshot)
	mux.HandleFunc("GET /api/snapshot/{ticker}", api.SnapshotTicker)
	mux.HandleFunc("GET /api/movers", api.Movers)
	mux.HandleFunc("GET /api/breadth", api.Breadth)
	mux.HandleFunc("GET /api/themes", api.Themes)
	mux.HandleFunc("GET /api/leadership", api.Leadership)
	mux.HandleFunc("GET /api/rundown", api.Rundown)
	mux.HandleFunc("GET /api/earnings", api.Earnings)
	mux.HandleFunc("GET /api/news", api.News)
	mux.HandleFunc("GET /api/screener", api.Screener)
	mux.HandleFunc("GET /api/traders", api.Traders)
	mux.HandleFunc("GET /api/trades", api.ListTrades)
	mux.HandleFunc("POST /api/trades", api.AddTrade)
	mux.HandleFunc("POST /api/push", api.Push)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "assets")))))
	mux.HandleFunc("/", api.SPA)

	h := http.Handler(mux)
	h = withRecovery(log)(h)
	h = withLogging(log, m)(h)
	h = withRateLimit(cfg.RateLimitPerMin)(h)
	h = withCORS(h)
	return h
}

package models

import "encoding/json"

// WirePayload is the daily bundle pushed by the morning wire engine. Sections
// are kept as raw JSON and decoded by their normalizer, so one malformed
// section does not invalidate the rest of the payload.
type WirePayload struct {
	Date           string          `json:"date"`
	RundownHTML    string          `json:"rundown_html"`
	PostMarketHTML string          `json:"post_market_html,omitempty"`
	Breadth        json.RawMessage `json:"breadth,omitempty"`
	Leadership     json.RawMessage `json:"leadership,omitempty"`
	Themes         json.RawMessage `json:"themes,omitempty"`
	Earnings       json.RawMessage `json:"earnings,omitempty"`
	Movers         json.RawMessage `json:"movers,omitempty"`
}

type Breadth struct {
	PctAbove50MA     float64 `json:"pct_above_50ma"`
	PctAbove200MA    float64 `json:"pct_above_200ma"`
	Advancing        int     `json:"advancing"`
	Declining        int     `json:"declining"`
	BreadthScore     float64 `json:"breadth_score"`
	DistributionDays int     `json:"distribution_days"`
	MarketPhase      string  `json:"market_phase"`
	Error            string  `json:"error,omitempty"`
}

type Theme struct {
	Name      string   `json:"name"`
	Ticker    string   `json:"ticker"`
	ETFName   string   `json:"etf_name"`
	Pct       string   `json:"pct"`
	PctVal    float64  `json:"pct_val"`
	Bar       int      `json:"bar"`
	Holdings  []string `json:"holdings"`
	IntlCount int      `json:"intl_count"`
}

type Themes struct {
	Leaders  []Theme `json:"leaders"`
	Laggards []Theme `json:"laggards"`
	Period   string  `json:"period"`
	Error    string  `json:"error,omitempty"`
}

// LeadershipRow is passed through to the dashboard untouched; the engine
// decides which fields a row carries (sym, thesis, score, ...).
type LeadershipRow map[string]json.RawMessage

type Rundown struct {
	HTML string `json:"html"`
	Date string `json:"date"`
}

type EarningsEntry struct {
	Sym            string   `json:"sym"`
	ReportedEPS    *float64 `json:"reported_eps"`
	EPSEstimate    *float64 `json:"eps_estimate"`
	SurprisePct    *string  `json:"surprise_pct"`
	RevEstimate    *float64 `json:"rev_estimate"`
	RevActual      *float64 `json:"rev_actual"`
	RevSurprisePct *string  `json:"rev_surprise_pct"`
	Verdict        string   `json:"verdict"`
}

type Earnings struct {
	BMO   []EarningsEntry `json:"bmo"`
	AMC   []EarningsEntry `json:"amc"`
	Error string          `json:"error,omitempty"`
}

type NewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Time     string `json:"time"`
	Category string `json:"category"`
	Error    string `json:"error,omitempty"`
}

type ScreenerRow struct {
	Ticker   string  `json:"ticker"`
	RSScore  float64 `json:"rs_score"`
	VolRatio float64 `json:"vol_ratio"`
	Momentum float64 `json:"momentum"`
	CapTier  string  `json:"cap_tier"`
	Thesis   string  `json:"thesis"`
}

// MoverRow is a raw top-movers row from the primary quote source.
type MoverRow struct {
	Ticker    string  `json:"ticker"`
	ChangePct float64 `json:"change_pct"`
	Change    float64 `json:"change"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

type Mover struct {
	Sym string `json:"sym"`
	Pct string `json:"pct"`
}

type Movers struct {
	Ripping  []Mover `json:"ripping"`
	Drilling []Mover `json:"drilling"`
}

type QuoteEntry struct {
	Price string `json:"price"`
	Chg   string `json:"chg"`
	CSS   string `json:"css"`
}

type Snapshot struct {
	Futures map[string]QuoteEntry `json:"futures"`
	ETFs    map[string]QuoteEntry `json:"etfs"`
}

type TickerSnapshot struct {
	Ticker    string   `json:"ticker"`
	Close     *float64 `json:"close"`
	VWAP      *float64 `json:"vwap"`
	ChangePct *float64 `json:"change_pct"`
	Change    *float64 `json:"change"`
}

type Trader struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Color   string   `json:"color" yaml:"color"`
	Tickers []string `json:"tickers" yaml:"tickers"`
}

type TradeInput struct {
	Sym     *string  `json:"sym"`
	Entry   *float64 `json:"entry"`
	Stop    *float64 `json:"stop"`
	Target  *float64 `json:"target"`
	SizePct *float64 `json:"size_pct"`
	Notes   *string  `json:"notes"`
}

type Trade struct {
	Sym     string  `json:"sym"`
	Entry   float64 `json:"entry"`
	Stop    float64 `json:"stop"`
	Target  float64 `json:"target"`
	SizePct float64 `json:"size_pct"`
	Notes   string  `json:"notes"`
	ID      string  `json:"id"`
	Status  string  `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PushResponse struct {
	OK   bool   `json:"ok"`
	Date string `json:"date"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

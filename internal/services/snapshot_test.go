package services

import (
	"context"
	"errors"
	"testing"

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/models"
)

func newSnapshot(massive *MassiveProvider, hist HistoryAPI) (*SnapshotService, *MemoryCache) {
	c := NewMemoryCache()
	return NewSnapshotService(c, massive, hist, config.DefaultInstruments(), 4, nil, logger.Discard()), c
}

func TestSnapshotEntriesAndPlaceholders(t *testing.T) {
	api := &fakeMassive{quotes: map[string]InstrumentQuote{
		"QQQ": {Close: 495.12, ChangePct: 0.54},
		"SPY": {Close: 0, VWAP: 601.5, ChangePct: -0.2},
		"VIX": {ChangePct: 3.3},
	}}
	hist := &fakeHistory{quotes: map[string]InstrumentQuote{
		"NQ=F":    {Close: 21543.25, VWAP: 21543.25, ChangePct: 0.31},
		"BTC-USD": {Close: 67105, VWAP: 67105, ChangePct: -3.3},
	}}
	s, _ := newSnapshot(staticMassive(api), hist)

	snap, err := s.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]models.QuoteEntry{
		"QQQ": {Price: "495.12", Chg: "+0.54%", CSS: "pos"},
		"SPY": {Price: "601.50", Chg: "-0.20%", CSS: "neg"},
		"VIX": {Price: "0.00", Chg: "+3.30%", CSS: "pos"},
		"IWM": {Price: "—", Chg: "—", CSS: ""},
		"DIA": {Price: "—", Chg: "—", CSS: ""},
	}
	for sym, want := range checks {
		if got := snap.ETFs[sym]; got != want {
			t.Fatalf("%s = %+v, want %+v", sym, got, want)
		}
	}
	if got := snap.Futures["NQ"]; got.Price != "21,543.25" || got.Chg != "+0.31%" {
		t.Fatalf("unexpected NQ entry %+v", got)
	}
	if got := snap.Futures["BTC"]; got.Price != "67,105.00" || got.CSS != "neg" {
		t.Fatalf("unexpected BTC entry %+v", got)
	}
	if got := snap.Futures["ES"]; got.Price != "—" {
		t.Fatalf("missing future should be a placeholder, got %+v", got)
	}
	if len(snap.Futures) != 4 || len(snap.ETFs) != 5 {
		t.Fatalf("unexpected sizes futures=%d etfs=%d", len(snap.Futures), len(snap.ETFs))
	}
}

func TestSnapshotCached(t *testing.T) {
	api := &fakeMassive{quotes: map[string]InstrumentQuote{"QQQ": {Close: 1}}}
	s, _ := newSnapshot(staticMassive(api), &fakeHistory{})
	ctx := context.Background()
	if _, err := s.Get(ctx); err != nil {
		t.Fatal(err)
	}
	calls := api.calls
	if _, err := s.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if api.calls != calls {
		t.Fatal("second snapshot should come from cache")
	}
}

func TestSnapshotMissingKeyFails(t *testing.T) {
	s, c := newSnapshot(brokenMassive(), &fakeHistory{})
	if _, err := s.Get(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, ok := c.Get(context.Background(), KeySnapshot); ok {
		t.Fatal("failure must not be cached")
	}
}

func TestTickerSnapshotFallback(t *testing.T) {
	api := &fakeMassive{quotes: map[string]InstrumentQuote{"NVDA": {Close: 130.5, VWAP: 129.9, ChangePct: 2.1, Change: 2.7}}}
	hist := &fakeHistory{quotes: map[string]InstrumentQuote{"ES=F": {Close: 6000, VWAP: 6000, ChangePct: 0.1}}}
	s, c := newSnapshot(staticMassive(api), hist)
	ctx := context.Background()

	got := s.Ticker(ctx, "nvda")
	if got.Ticker != "NVDA" || got.Close == nil || *got.Close != 130.5 || *got.VWAP != 129.9 {
		t.Fatalf("unexpected massive ticker %+v", got)
	}
	if _, ok := c.Get(ctx, "snapshot:NVDA"); !ok {
		t.Fatal("ticker snapshot should be cached per symbol")
	}

	if got := s.Ticker(ctx, "ES=F"); got.Close == nil || *got.Close != 6000 {
		t.Fatalf("expected yahoo fallback, got %+v", got)
	}

	unknown := s.Ticker(ctx, "ZZZZ")
	if unknown.Ticker != "ZZZZ" || unknown.Close != nil || unknown.ChangePct != nil {
		t.Fatalf("unknown symbol should have null figures, got %+v", unknown)
	}

	s2, _ := newSnapshot(brokenMassive(), hist)
	if got := s2.Ticker(ctx, "ES=F"); got.Close == nil {
		t.Fatal("missing massive key should fall through to yahoo")
	}
}

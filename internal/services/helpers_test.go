package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"uct-dashboard/backend-go/internal/models"
)

// rewriteTransport sends every request to base, keeping path and query.
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(t.base)
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.URL.Scheme = u.Scheme
	r.URL.Host = u.Host
	r.Host = u.Host
	return t.inner.RoundTrip(r)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 2, 23, 14, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeMassive struct {
	mu        sync.Mutex
	gainers   []models.MoverRow
	losers    []models.MoverRow
	gainerErr error
	loserErr  error
	quotes    map[string]InstrumentQuote
	calls     int
}

func (f *fakeMassive) TopMovers(_ context.Context, direction string, limit int) ([]models.MoverRow, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	rows, err := f.gainers, f.gainerErr
	if direction == DirectionLosers {
		rows, err = f.losers, f.loserErr
	}
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeMassive) TickerSnapshot(_ context.Context, sym string) (InstrumentQuote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	q, ok := f.quotes[sym]
	if !ok {
		return InstrumentQuote{}, ErrNotFound
	}
	return q, nil
}

func staticMassive(api MassiveAPI) *MassiveProvider {
	return NewMassiveProviderFunc(func() (MassiveAPI, error) { return api, nil })
}

func brokenMassive() *MassiveProvider {
	return NewMassiveProviderFunc(func() (MassiveAPI, error) { return nil, ErrMissingAPIKey })
}

type fakeHistory struct {
	mu     sync.Mutex
	avg    map[string]float64
	avgErr map[string]error
	quotes map[string]InstrumentQuote
	asked  []string
}

func (f *fakeHistory) DailyBars(context.Context, string, string) ([]Bar, error) {
	return nil, errors.New("not used")
}

func (f *fakeHistory) AvgDollarVolume(_ context.Context, sym string) (float64, error) {
	f.mu.Lock()
	f.asked = append(f.asked, sym)
	f.mu.Unlock()
	if err := f.avgErr[sym]; err != nil {
		return 0, err
	}
	return f.avg[sym], nil
}

func (f *fakeHistory) Quote(_ context.Context, sym string) (InstrumentQuote, error) {
	q, ok := f.quotes[sym]
	if !ok {
		return InstrumentQuote{}, ErrNotFound
	}
	return q, nil
}

// memStore is an in-memory PayloadStore.
type memStore struct {
	mu      sync.Mutex
	name    string
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Name() string { return m.name }

func (m *memStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return m.data, nil
}

func (m *memStore) Save(_ context.Context, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), b...)
	return nil
}

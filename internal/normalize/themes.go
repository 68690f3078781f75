package normalize

import (
	"encoding/json"
	"math"
	"sort"

	"uct-dashboard/backend-go/internal/models"
)

const DefaultPeriod = "1W"

var Periods = []string{"1W", "1M", "3M"}

// ValidPeriod returns p when it is a known period, else the default.
func ValidPeriod(p string) string {
	for _, known := range Periods {
		if p == known {
			return p
		}
	}
	return DefaultPeriod
}

// PeriodValue is a theme's performance for one period. The engine normally
// sends numbers; anything else is rendered verbatim.
type PeriodValue struct {
	Num     float64
	Text    string
	Numeric bool
}

type RawTheme struct {
	Name      string
	ETFName   string
	Periods   map[string]PeriodValue
	Holdings  []string
	IntlCount int
}

// DecodeThemes reads the engine's theme map keyed by ETF ticker. Entries
// that are not objects are dropped.
func DecodeThemes(raw json.RawMessage) map[string]RawTheme {
	m, ok := object(raw)
	if !ok {
		return nil
	}
	out := make(map[string]RawTheme, len(m))
	for ticker, v := range m {
		fields, ok := object(v)
		if !ok {
			continue
		}
		name, ok := stringField(fields, "name")
		if !ok {
			name = ticker
		}
		etfName, _ := stringField(fields, "etf_name")
		t := RawTheme{
			Name:    name,
			ETFName: etfName,
			Periods: make(map[string]PeriodValue, len(Periods)),
		}
		for _, p := range Periods {
			t.Periods[p] = decodePeriodValue(fields[p])
		}
		t.Holdings = holdingSymbols(fields["holdings"])
		if intl, ok := list(fields["intl_holdings"]); ok {
			t.IntlCount = len(intl)
		}
		out[ticker] = t
	}
	return out
}

func decodePeriodValue(raw json.RawMessage) PeriodValue {
	if f, ok := number(raw); ok {
		return PeriodValue{Num: f, Numeric: true}
	}
	if s, ok := str(raw); ok && s != "" {
		return PeriodValue{Text: s}
	}
	return PeriodValue{Numeric: true}
}

func holdingSymbols(raw json.RawMessage) []string {
	out := []string{}
	items, ok := list(raw)
	if !ok {
		return out
	}
	for _, it := range items {
		rec, ok := object(it)
		if !ok {
			continue
		}
		if sym, ok := stringField(rec, "sym"); ok && sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

// Themes ranks every theme by its performance over period. Leaders are the
// non-negative themes, best first. Laggards are the negative ones taken from
// the bottom of the same ranking, so the weakest theme comes first.
func Themes(raw map[string]RawTheme, period string) models.Themes {
	period = ValidPeriod(period)
	out := models.Themes{Leaders: []models.Theme{}, Laggards: []models.Theme{}, Period: period}
	if len(raw) == 0 {
		return out
	}

	tickers := make([]string, 0, len(raw))
	for t := range raw {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	items := make([]models.Theme, 0, len(raw))
	for _, ticker := range tickers {
		items = append(items, themeView(ticker, raw[ticker], period))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].PctVal > items[j].PctVal })

	for _, it := range items {
		if it.PctVal >= 0 {
			out.Leaders = append(out.Leaders, it)
		}
	}
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].PctVal < 0 {
			out.Laggards = append(out.Laggards, items[i])
		}
	}
	return out
}

func themeView(ticker string, t RawTheme, period string) models.Theme {
	v := t.Periods[period]
	view := models.Theme{
		Name:      t.Name,
		Ticker:    ticker,
		ETFName:   t.ETFName,
		Holdings:  t.Holdings,
		IntlCount: t.IntlCount,
	}
	if view.Holdings == nil {
		view.Holdings = []string{}
	}
	if !v.Numeric {
		view.Pct = v.Text
		view.Bar = 50
		return view
	}
	view.PctVal = v.Num
	view.Pct = SignedPct(v.Num, 2)
	view.Bar = int(math.RoundToEven(math.Min(100, math.Max(0, math.Abs(v.Num)*8))))
	return view
}

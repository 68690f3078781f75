package normalize

import (
	"bytes"
	"encoding/json"
	"time"

	"uct-dashboard/backend-go/internal/models"
)

// Leadership keeps the engine's rows as-is. A value that is not a list
// yields no rows; list elements that are not objects are skipped.
func Leadership(raw json.RawMessage) []models.LeadershipRow {
	out := []models.LeadershipRow{}
	items, ok := list(raw)
	if !ok {
		return out
	}
	for _, it := range items {
		m, ok := object(it)
		if !ok {
			continue
		}
		out = append(out, models.LeadershipRow(m))
	}
	return out
}

func Rundown(html, date string) models.Rundown {
	return models.Rundown{HTML: html, Date: date}
}

// RundownFromState reads a stored rundown. Objects supply html/date; any
// other value becomes the html text.
func RundownFromState(raw json.RawMessage) models.Rundown {
	if m, ok := object(raw); ok {
		html, _ := stringField(m, "html")
		date, _ := stringField(m, "date")
		return models.Rundown{HTML: html, Date: date}
	}
	if s, ok := str(raw); ok {
		return models.Rundown{HTML: s}
	}
	return models.Rundown{HTML: string(bytes.TrimSpace(raw))}
}

// RawArticle is a news article as returned by a live news source.
type RawArticle struct {
	Headline  string
	Source    string
	URL       string
	Category  string
	Published time.Time
}

func News(articles []RawArticle) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(articles))
	for _, a := range articles {
		item := models.NewsItem{
			Headline: a.Headline,
			Source:   a.Source,
			URL:      a.URL,
			Category: a.Category,
		}
		if !a.Published.IsZero() {
			item.Time = a.Published.UTC().Format(time.RFC3339)
		}
		out = append(out, item)
	}
	return out
}

// NewsUnavailable is the single-row feed shown when the live source fails.
func NewsUnavailable(reason string) []models.NewsItem {
	return []models.NewsItem{{Headline: "News unavailable", Error: reason}}
}

// Screener derives screener rows from leadership rows. Each column accepts
// the aliases the engine has used over time, checked in order.
func Screener(rows []models.LeadershipRow) []models.ScreenerRow {
	out := make([]models.ScreenerRow, 0, len(rows))
	for _, r := range rows {
		m := map[string]json.RawMessage(r)
		capTier, ok := stringField(m, "cap_tier")
		if !ok {
			capTier = Dash
		}
		thesis, _ := stringField(m, "thesis")
		out = append(out, models.ScreenerRow{
			Ticker:   firstString(m, "ticker", "sym", "symbol"),
			RSScore:  firstNumber(m, 0, "score", "rs_score"),
			VolRatio: firstNumber(m, 1.0, "vol_ratio"),
			Momentum: firstNumber(m, 0.0, "momentum", "mom"),
			CapTier:  capTier,
			Thesis:   thesis,
		})
	}
	return out
}

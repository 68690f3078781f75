package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"uct-dashboard/backend-go/internal/models"
)

const TradeStatusOpen = "open"

// ValidationError reports a rejected trade input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TradeJournal keeps trades as a JSON array in one file.
type TradeJournal struct {
	path  string
	mu    sync.Mutex
	newID func() string
}

func NewTradeJournal(path string) *TradeJournal {
	return &TradeJournal{
		path:  path,
		newID: func() string { return uuid.NewString()[:8] },
	}
}

func (j *TradeJournal) List(_ context.Context) ([]models.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.load()
}

// Add validates in, assigns an id and the open status, and appends it.
func (j *TradeJournal) Add(_ context.Context, in models.TradeInput) (models.Trade, error) {
	t, err := newTrade(in)
	if err != nil {
		return models.Trade{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	trades, err := j.load()
	if err != nil {
		return models.Trade{}, err
	}
	t.ID = j.newID()
	t.Status = TradeStatusOpen
	trades = append(trades, t)

	b, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return models.Trade{}, err
	}
	if err := writeFileAtomic(j.path, b); err != nil {
		return models.Trade{}, fmt.Errorf("save trades: %w", err)
	}
	return t, nil
}

func (j *TradeJournal) load() ([]models.Trade, error) {
	b, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Trade{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}
	var trades []models.Trade
	if err := json.Unmarshal(b, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}

func newTrade(in models.TradeInput) (models.Trade, error) {
	if in.Sym == nil || strings.TrimSpace(*in.Sym) == "" {
		return models.Trade{}, &ValidationError{Field: "sym", Reason: "required"}
	}
	nums := []struct {
		name string
		v    *float64
	}{
		{"entry", in.Entry},
		{"stop", in.Stop},
		{"target", in.Target},
		{"size_pct", in.SizePct},
	}
	for _, n := range nums {
		if n.v == nil {
			return models.Trade{}, &ValidationError{Field: n.name, Reason: "required"}
		}
	}
	t := models.Trade{
		Sym:     *in.Sym,
		Entry:   *in.Entry,
		Stop:    *in.Stop,
		Target:  *in.Target,
		SizePct: *in.SizePct,
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}
	return t, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"uct-dashboard/backend-go/internal/logger"
	"uct-dashboard/backend-go/internal/models"
)

const WireTTL = 82800 * time.Second

var ErrInvalidPayload = errors.New("payload must be a JSON object")

// DerivedKeys are the cached views built from the wire payload. A push
// drops all of them before storing the new payload.
var DerivedKeys = []string{
	KeyWireData,
	KeyBreadth,
	themesKey("1W"),
	themesKey("1M"),
	themesKey("3M"),
	KeyLeadership,
	KeyRundown,
	KeyRundownPostMarket,
	KeyEarnings,
	KeyScreener,
	KeyMovers,
}

// DecodeWirePayload accepts any JSON object. Sections are kept raw; the
// string fields fall back to "" when they hold another type.
func DecodeWirePayload(b []byte) (models.WirePayload, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return models.WirePayload{}, ErrInvalidPayload
	}
	return models.WirePayload{
		Date:           rawString(m["date"]),
		RundownHTML:    rawString(m["rundown_html"]),
		PostMarketHTML: rawString(m["post_market_html"]),
		Breadth:        m["breadth"],
		Leadership:     m["leadership"],
		Themes:         m["themes"],
		Earnings:       m["earnings"],
		Movers:         m["movers"],
	}, nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

type WireLoader struct {
	cache   Cache
	durable PayloadStore
	dev     PayloadStore
	log     *logrus.Entry
}

func NewWireLoader(cache Cache, durable, dev PayloadStore, log *logger.Log) *WireLoader {
	return &WireLoader{cache: cache, durable: durable, dev: dev, log: log.WithComponent("wire")}
}

// Load returns the current wire payload from the cache, the durable store or
// the development file, in that order. A tier that errors or holds anything
// but a JSON object is skipped. A hit below the cache reseeds it.
func (w *WireLoader) Load(ctx context.Context) (models.WirePayload, bool) {
	if b, ok := w.cache.Get(ctx, KeyWireData); ok {
		if p, err := DecodeWirePayload(b); err == nil {
			return p, true
		}
		w.log.Debug("cached wire payload unreadable")
	}
	for _, store := range []PayloadStore{w.durable, w.dev} {
		if store == nil {
			continue
		}
		b, err := store.Load(ctx)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				w.log.WithError(err).WithField("tier", store.Name()).Debug("wire tier skipped")
			}
			continue
		}
		p, err := DecodeWirePayload(b)
		if err != nil {
			w.log.WithError(err).WithField("tier", store.Name()).Debug("wire tier skipped")
			continue
		}
		_ = w.cache.Set(ctx, KeyWireData, b, WireTTL)
		return p, true
	}
	return models.WirePayload{}, false
}

// Accept installs a pushed payload: derived views are dropped, the payload
// becomes the cached wire data, and it is persisted on a best-effort basis.
func (w *WireLoader) Accept(ctx context.Context, body []byte) (models.WirePayload, error) {
	p, err := DecodeWirePayload(body)
	if err != nil {
		return p, err
	}
	for _, key := range DerivedKeys {
		w.cache.Invalidate(ctx, key)
	}
	if err := w.cache.Set(ctx, KeyWireData, body, WireTTL); err != nil {
		return p, fmt.Errorf("cache wire payload: %w", err)
	}
	if w.durable != nil {
		if err := w.durable.Save(ctx, body); err != nil {
			w.log.WithError(err).WithField("store", w.durable.Name()).Warn("persist wire payload failed")
		}
	}
	w.log.WithFields(logrus.Fields{"date": p.Date, "bytes": len(body)}).Info("wire payload accepted")
	return p, nil
}

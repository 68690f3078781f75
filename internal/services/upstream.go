package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("api key not set")
	ErrNotFound      = errors.New("not found")
	ErrCircuitOpen   = errors.New("circuit breaker open")
)

// UpstreamError is a non-2xx reply from a data provider.
type UpstreamError struct {
	Source string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Source, e.Status)
}

type circuitBreaker struct {
	mu        sync.Mutex
	failures  int
	threshold int
	openedAt  time.Time
	cooldown  time.Duration
	now       func() time.Time
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	return &circuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (c *circuitBreaker) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures < c.threshold {
		return true
	}
	if c.now().Sub(c.openedAt) > c.cooldown {
		c.failures = 0
		c.openedAt = time.Time{}
		return true
	}
	return false
}

func (c *circuitBreaker) success() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.openedAt = time.Time{}
}

func (c *circuitBreaker) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= c.threshold {
		c.openedAt = c.now()
	}
}

// getJSON issues a GET and decodes a 2xx body into out. 404 maps to
// ErrNotFound; other non-2xx replies become *UpstreamError. Transport and
// 5xx failures count against the breaker.
func getJSON(ctx context.Context, hc *http.Client, cb *circuitBreaker, source, url string, header http.Header, out any) error {
	if cb != nil && !cb.allow() {
		return fmt.Errorf("%s: %w", source, ErrCircuitOpen)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	res, err := hc.Do(req)
	if err != nil {
		if cb != nil {
			cb.fail()
		}
		return fmt.Errorf("%s: %w", source, redactURL(err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		if cb != nil {
			cb.success()
		}
		return fmt.Errorf("%s: %w", source, ErrNotFound)
	}
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		if cb != nil {
			if res.StatusCode >= 500 {
				cb.fail()
			} else {
				cb.success()
			}
		}
		return &UpstreamError{Source: source, Status: res.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if cb != nil {
			cb.fail()
		}
		return fmt.Errorf("%s: decode: %w", source, err)
	}
	if cb != nil {
		cb.success()
	}
	return nil
}

// redactURL drops the query string from a transport error's URL so
// credentials passed as parameters do not reach logs.
func redactURL(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
		ue.URL = ue.URL[:i] + "?REDACTED"
	}
	return err
}

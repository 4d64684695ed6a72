package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Upstream wraps HTTP calls to one service behind a circuit breaker.
type Upstream struct {
	base    string
	path    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics
	name    string
}

func NewUpstream(name, base, path string, timeout time.Duration, failures int, openFor time.Duration, m *Metrics) *Upstream {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if failures < 1 {
		failures = 3
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
	})
	return &Upstream{
		base:    base,
		path:    path,
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
		metrics: m,
		name:    name,
	}
}

// GetJSON executes the GET through the breaker and decodes JSON into out.
func (u *Upstream) GetJSON(ctx context.Context, out any) error {
	if u == nil || u.base == "" {
		// optional upstream not configured: not an error, out stays as-is
		return nil
	}

	_, err := u.breaker.Execute(func() (any, error) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.base+u.path, nil)
		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request error: %w", u.name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s upstream status %d", u.name, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%s decode error: %w", u.name, err)
		}
		return nil, nil
	})

	if err != nil && u.metrics != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			u.metrics.BreakerOpen.WithLabelValues(u.name).Inc()
		} else {
			u.metrics.UpstreamFailures.WithLabelValues(u.name).Inc()
		}
	}
	return err
}

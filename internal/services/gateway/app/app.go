package app

import (
	"log"
	"sync"
	"time"
)

type Config struct {
	ActuatorBaseURL string
	EventsBaseURL   string
	ActuatorPath    string
	EventsPath      string
	HTTPTimeout     time.Duration

	BreakerFailures int
	BreakerOpenFor  time.Duration

	Logger *log.Logger
}

// Gateway aggregates the actuator and event-service upstreams into a single
// dashboard payload.
type Gateway struct {
	cfg      Config
	actuator *Upstream
	events   *Upstream
	metrics  *Metrics

	// last successful events payload, served while the breaker is open;
	// written and read by concurrent dashboard requests
	lastGoodMu     sync.Mutex
	lastGoodEvents []PumpEvent
}

// rememberEvents stores a copy of the latest good events payload.
func (g *Gateway) rememberEvents(pumps []PumpEvent) {
	cp := append([]PumpEvent(nil), pumps...)
	g.lastGoodMu.Lock()
	g.lastGoodEvents = cp
	g.lastGoodMu.Unlock()
}

// recallEvents returns a copy of the last known-good events payload.
func (g *Gateway) recallEvents() []PumpEvent {
	g.lastGoodMu.Lock()
	defer g.lastGoodMu.Unlock()
	return append([]PumpEvent(nil), g.lastGoodEvents...)
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	m := NewMetrics()

	// one breaker per upstream
	a := NewUpstream("actuator", cfg.ActuatorBaseURL, cfg.ActuatorPath, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor, m)
	e := NewUpstream("events", cfg.EventsBaseURL, cfg.EventsPath, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor, m)

	return &Gateway{cfg: cfg, actuator: a, events: e, metrics: m}
}

package app

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"
)

func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	g.metrics.DashboardRequests.Inc()

	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	type res struct {
		key string
		val any
	}
	ch := make(chan res, 2)

	// fetch in parallel
	go func() {
		stations := map[string]string{}
		_ = g.actuator.GetJSON(ctx, &stations)
		ch <- res{"stations", stations}
	}()
	go func() {
		var pumps []PumpEvent
		if err := g.events.GetJSON(ctx, &pumps); err == nil && len(pumps) > 0 {
			g.rememberEvents(pumps)
		} else {
			// serve the last known-good payload while events are unavailable
			pumps = g.recallEvents()
		}
		ch <- res{"pumps", pumps}
	}()

	data := DashboardData{
		Stations: map[string]string{},
		Pumps:    []PumpEvent{},
		Stats:    map[string]float64{},
	}

	for i := 0; i < 2; i++ {
		rv := <-ch
		switch rv.key {
		case "stations":
			if s, ok := rv.val.(map[string]string); ok {
				data.Stations = s
			}
		case "pumps":
			if p, ok := rv.val.([]PumpEvent); ok && p != nil {
				data.Pumps = p
			}
		}
	}

	// stable ordering and flow statistics for the UI
	sort.Slice(data.Pumps, func(i, j int) bool { return data.Pumps[i].Time > data.Pumps[j].Time })
	if n := len(data.Pumps); n > 0 {
		var sum, minv, maxv float64
		minv = math.MaxFloat64
		for _, p := range data.Pumps {
			v := p.FlowLpm
			sum += v
			if v < minv {
				minv = v
			}
			if v > maxv {
				maxv = v
			}
		}
		data.Stats["mean"] = math.Round(sum/float64(n)*10) / 10
		data.Stats["min"] = minv
		data.Stats["max"] = maxv
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)

	g.metrics.DashboardLatency.Observe(time.Since(start).Seconds())
}

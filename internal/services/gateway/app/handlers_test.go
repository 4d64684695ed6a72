package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHandleDashboardConcurrentRequests(t *testing.T) {
	var down atomic.Bool
	events := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"station_id":"station1","flow_lpm":21.0,"time":"2026-02-01T12:00:00Z"}]`))
	}))
	defer events.Close()

	gw := NewGateway(Config{
		EventsBaseURL:   events.URL,
		EventsPath:      "/events/pump/latest",
		HTTPTimeout:     2 * time.Second,
		BreakerFailures: 100, // keep the breaker out of this test
		BreakerOpenFor:  time.Second,
	})

	fire := func(n int) {
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				gw.HandleDashboard(rec, httptest.NewRequest("GET", "/dashboard/data", nil))
				if rec.Code != http.StatusOK {
					t.Errorf("status %d", rec.Code)
				}
			}()
		}
		wg.Wait()
	}

	// concurrent requests while the upstream is healthy: every request
	// refreshes the last known-good payload
	fire(8)

	// upstream down: concurrent requests must all fall back to the cached
	// payload
	down.Store(true)
	fire(8)

	rec := httptest.NewRecorder()
	gw.HandleDashboard(rec, httptest.NewRequest("GET", "/dashboard/data", nil))
	var data DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode dashboard payload: %v", err)
	}
	if len(data.Pumps) != 1 || data.Pumps[0].StationID != "station1" {
		t.Fatalf("cached events not served while upstream down: %+v", data.Pumps)
	}
	if data.Stats["mean"] != 21.0 {
		t.Fatalf("stats not computed from cached events: %+v", data.Stats)
	}
}

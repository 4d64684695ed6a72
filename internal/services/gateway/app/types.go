package app

import (
	"encoding/json"
	"strconv"
)

// ---------- Upstream payloads ----------

// PumpEvent is the event-service payload. Upstream encoders have drifted
// over time, so decoding is tolerant: flow may arrive as number or string,
// the timestamp under "time" or "timestamp".
type PumpEvent struct {
	StationID string  `json:"station_id"`
	FlowLpm   float64 `json:"flow_lpm"`
	Time      string  `json:"time"` // RFC3339
}

func (p *PumpEvent) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if v, ok := m["station_id"].(string); ok {
		p.StationID = v
	}
	if t, ok := m["time"].(string); ok && t != "" {
		p.Time = t
	} else if t, ok := m["timestamp"].(string); ok && t != "" {
		p.Time = t
	}

	getNum := func(key string) (float64, bool) {
		if mv, ok := m[key]; ok {
			switch x := mv.(type) {
			case float64:
				return x, true
			case string:
				if f, err := strconv.ParseFloat(x, 64); err == nil {
					return f, true
				}
			}
		}
		return 0, false
	}

	if n, ok := getNum("flow_lpm"); ok {
		p.FlowLpm = n
	} else if n, ok := getNum("flow"); ok {
		p.FlowLpm = n
	}
	return nil
}

// DashboardData is the aggregate payload served to the dashboard.
type DashboardData struct {
	Stations map[string]string  `json:"stations"` // station id -> pump state
	Pumps    []PumpEvent        `json:"pumps"`
	Stats    map[string]float64 `json:"stats"`
}

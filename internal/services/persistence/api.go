package persistence

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arcticworks/icepump/internal/model"
)

func NewHTTPMux(svc *Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	// GET /data/latest
	// Query params:
	//   source=auto|influx|cache   (default auto: try Influx, fall back to cache)
	//   minutes=<int>              (Influx lookback window, default 1440 = 24h)
	mux.HandleFunc("/data/latest", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		source := strings.ToLower(q.Get("source"))
		if source == "" {
			source = "auto"
		}
		minutes := 60 * 24
		if s := q.Get("minutes"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				minutes = n
			}
		}

		var list []model.StateReading
		var used string

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if source == "influx" || source == "auto" {
			if fromDB, err := svc.QueryLatestFromInflux(ctx, minutes); err == nil && len(fromDB) > 0 {
				list, used = fromDB, "influx"
			}
		}
		if used == "" { // cache path
			list = svc.LatestCache()
			used = "cache"
		}

		type outT struct {
			StationID      string  `json:"station_id"`
			AirTempC       float64 `json:"air_temp_c"`
			WindSpeedMs    float64 `json:"wind_speed_ms"`
			SalinityPSU    float64 `json:"water_salinity_psu"`
			SolarWm2       float64 `json:"solar_radiation_wm2"`
			IceThicknessCm float64 `json:"ice_thickness_cm"`
			Timestamp      string  `json:"timestamp"`
		}
		out := make([]outT, 0, len(list))
		for _, v := range list {
			out = append(out, outT{
				StationID:      v.StationID,
				AirTempC:       v.AirTempC,
				WindSpeedMs:    v.WindSpeedMs,
				SalinityPSU:    v.SalinityPSU,
				SolarWm2:       v.SolarWm2,
				IceThicknessCm: v.IceThicknessCm,
				Timestamp:      v.Timestamp.UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Data-Source", used)
		_ = json.NewEncoder(w).Encode(out)
	})

	return mux
}

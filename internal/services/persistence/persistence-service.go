package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/arcticworks/icepump/internal/model"
	"github.com/arcticworks/icepump/pkg/mqttbus"
)

type InfluxConfig struct {
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
	Measurement  string // e.g. "station_reading"
}

// Service consumes station readings off the bus, persists them to InfluxDB
// and keeps the latest reading per station in memory so /data/latest can
// answer even while Influx is unreachable.
type Service struct {
	consumer    mqttbus.IConsumer[model.StateReading]
	writeAPI    api.WriteAPIBlocking
	queryAPI    api.QueryAPI
	bucket      string
	measurement string

	mu     sync.RWMutex
	latest map[string]model.StateReading // station id -> last seen reading
}

func NewService(consumer mqttbus.IConsumer[model.StateReading], client influxdb2.Client, cfg InfluxConfig) (*Service, error) {
	if cfg.InfluxURL == "" || cfg.InfluxToken == "" || cfg.InfluxOrg == "" || cfg.InfluxBucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}
	measurement := sanitizeMeasurement(cfg.Measurement)
	if measurement == "" {
		measurement = "station_reading"
	}
	return &Service{
		consumer:    consumer,
		writeAPI:    client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		queryAPI:    client.QueryAPI(cfg.InfluxOrg),
		bucket:      cfg.InfluxBucket,
		measurement: measurement,
		latest:      make(map[string]model.StateReading),
	}, nil
}

// Start blocks consuming readings until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(func(topic string, msg mqtt.Message) error {
		var r model.StateReading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("persistence: invalid JSON on %s: %v", topic, err)
			return nil // keep the stream going
		}
		if r.StationID == "" {
			log.Printf("persistence: reading without station_id on %s, dropped", topic)
			return nil
		}

		t := r.Timestamp
		if t.IsZero() {
			t = time.Now()
		}

		s.mu.Lock()
		s.latest[r.StationID] = r
		s.mu.Unlock()

		tags := map[string]string{
			"station_id": r.StationID,
		}
		fields := map[string]interface{}{
			"air_temp_c":          r.AirTempC,
			"wind_speed_ms":       r.WindSpeedMs,
			"water_salinity_psu":  r.SalinityPSU,
			"solar_radiation_wm2": r.SolarWm2,
			"ice_thickness_cm":    r.IceThicknessCm,
		}

		point := influxdb2.NewPoint(s.measurement, tags, fields, t)
		if err := s.writeAPI.WritePoint(ctx, point); err != nil {
			log.Printf("persistence: write error: %v", err)
			return err
		}
		log.Printf("persistence: wrote %s station=%s temp=%.2f ice=%.2f",
			s.measurement, r.StationID, r.AirTempC, r.IceThicknessCm)
		return nil
	})

	s.consumer.ConsumeMessage(ctx)
}

// LatestCache returns the in-memory latest reading per station, sorted by
// station id.
func (s *Service) LatestCache() []model.StateReading {
	s.mu.RLock()
	out := make([]model.StateReading, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}

// QueryLatestFromInflux returns the most recent reading per station within
// the given window.
func (s *Service) QueryLatestFromInflux(ctx context.Context, minutes int) ([]model.StateReading, error) {
	if minutes <= 0 {
		minutes = 60 * 24
	}
	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> group(columns: ["station_id"])
  |> sort(columns: ["_time"])
  |> last(column: "_time")
`, s.bucket, minutes, s.measurement)

	res, err := s.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	var out []model.StateReading
	for res.Next() {
		rec := res.Record()
		station, _ := rec.ValueByKey("station_id").(string)
		if station == "" {
			continue
		}
		out = append(out, model.StateReading{
			StationID:      station,
			AirTempC:       f64(rec.ValueByKey("air_temp_c")),
			WindSpeedMs:    f64(rec.ValueByKey("wind_speed_ms")),
			SalinityPSU:    f64(rec.ValueByKey("water_salinity_psu")),
			SolarWm2:       f64(rec.ValueByKey("solar_radiation_wm2")),
			IceThicknessCm: f64(rec.ValueByKey("ice_thickness_cm")),
			Timestamp:      rec.Time(),
		})
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out, nil
}

func f64(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

func sanitizeMeasurement(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == ':', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

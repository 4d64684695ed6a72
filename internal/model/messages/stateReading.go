package messages

import "time"

// StateReading is one synthetic environmental sample from a station. Fields
// are sampled independently per cycle; no invariant ties them together.
type StateReading struct {
	StationID      string    `json:"station_id"`
	AirTempC       float64   `json:"air_temp_c"`
	WindSpeedMs    float64   `json:"wind_speed_ms"`
	SalinityPSU    float64   `json:"water_salinity_psu"`
	SolarWm2       float64   `json:"solar_radiation_wm2"`
	IceThicknessCm float64   `json:"ice_thickness_cm"`
	Timestamp      time.Time `json:"timestamp"`
}

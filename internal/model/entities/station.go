package entities

// PumpState indicates whether a station's brine pump is running.
type PumpState string

const (
	StateOff PumpState = "off"
	StateOn  PumpState = "on"
)

// Station represents a single ice-thickening pump installation on the pack ice.
type Station struct {
	ID         string    `json:"id"` // unique station identifier
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	State      PumpState `json:"state"`                  // pump on/off
	MaxFlowLpm float64   `json:"max_flow_lpm,omitempty"` // hardware ceiling [liters/min]
	MinFlowLpm float64   `json:"min_flow_lpm,omitempty"` // minimum viable pump rate [liters/min]
}

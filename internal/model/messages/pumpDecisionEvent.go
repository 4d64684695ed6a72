package messages

import "time"

// PumpAction is the outcome of one decision cycle.
type PumpAction string

const (
	ActionStop  PumpAction = "STOP"
	ActionSleep PumpAction = "SLEEP"
	ActionPump  PumpAction = "PUMP"
)

// PumpDecision is produced fresh each cycle from a StateReading, immutable
// once created. FlowLpm is 0 unless Action is PUMP.
type PumpDecision struct {
	Action  PumpAction `json:"action"`
	FlowLpm float64    `json:"flow_lpm"`
	Reason  string     `json:"reason"`
}

// PumpDecisionEvent is published by the controller to record WHY/WHAT was commanded.
type PumpDecisionEvent struct {
	StationID string     `json:"station_id"`
	Action    PumpAction `json:"action"`
	FlowLpm   float64    `json:"flow_lpm"`
	Reason    string     `json:"reason"`
	AirTempC  float64    `json:"air_temp_c"`
	SolarWm2  float64    `json:"solar_radiation_wm2"`
	Timestamp time.Time  `json:"timestamp"`
}
